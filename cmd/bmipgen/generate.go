package main

import (
	"fmt"

	"github.com/ntlab/bmipgen/internal/generate"
	"github.com/ntlab/bmipgen/internal/problem"
	"github.com/ntlab/bmipgen/internal/solver"
	"github.com/ntlab/bmipgen/internal/spec"
	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	var (
		count         int
		attemptFactor int
		outDir        string
		solverName    string
		specFile      string
		seed          int64
		noUI          bool
	)
	cmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate non-trivial BMIP instances",
		Long:         "Generate random BMIP instances, discard the trivial ones and keep collecting until the target count is reached or the attempt budget runs out.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("count") {
				count = cfg.Generation.Count
			}
			if !cmd.Flags().Changed("attempt-factor") {
				attemptFactor = cfg.Generation.AttemptFactor
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Generation.OutDir
			}
			if !cmd.Flags().Changed("solver") {
				solverName = cfg.Generation.Solver
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Generation.Seed
			}

			problemSpec := cfg.Spec
			if specFile != "" {
				problemSpec, err = spec.LoadFile(specFile)
				if err != nil {
					return err
				}
			}

			oracle, err := solver.New(solverName)
			if err != nil {
				return err
			}

			catalogDB, stateDir, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			lock, err := generate.AcquireRunLock(stateDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			gen := generate.NewGenerator(oracle, problem.NewDirWriter())
			gen.SetCatalog(generate.NewStore(catalogDB))

			opts := generate.Options{
				Target:        count,
				AttemptFactor: attemptFactor,
				OutDir:        outDir,
				Seed:          seed,
				SolverName:    solverName,
			}
			res, err := runWithProgress(cmd, gen, noUI, func() (generate.Result, error) {
				return gen.Generate(cmd.Context(), problemSpec, opts)
			})
			if err != nil {
				return err
			}

			fmt.Printf("collected %d/%d non-trivial instances in %d attempts (trivial fraction %.2f)\n",
				res.Collected, count, res.Attempts, res.TrivialFraction())
			return nil
		},
	}
	defaults := defaultGeneration()
	cmd.Flags().IntVar(&count, "count", defaults.Count, "number of non-trivial instances to collect")
	cmd.Flags().IntVar(&attemptFactor, "attempt-factor", defaults.AttemptFactor, "attempt budget multiplier (max attempts = factor * count)")
	cmd.Flags().StringVar(&outDir, "out", defaults.OutDir, "destination directory for accepted instances")
	cmd.Flags().StringVar(&solverName, "solver", defaults.Solver, "solver oracle to evaluate instances with")
	cmd.Flags().StringVar(&specFile, "spec-file", "", "instance spec file (json or yaml), overrides the config spec")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "disable the progress display")
	return cmd
}
