package main

import (
	"fmt"

	"github.com/ntlab/bmipgen/internal/generate"
	"github.com/ntlab/bmipgen/internal/problem"
	"github.com/ntlab/bmipgen/internal/solver"
	"github.com/ntlab/bmipgen/internal/spec"
	"github.com/spf13/cobra"
)

func surveyCmd() *cobra.Command {
	var (
		evals      int
		outDir     string
		solverName string
		specFile   string
		seed       int64
		noUI       bool
	)
	cmd := &cobra.Command{
		Use:          "survey",
		Short:        "Measure the trivial fraction of a spec",
		Long:         "Generate a fixed number of instances for the spec and report how many are trivial. Non-trivial instances are kept.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
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

			opts := generate.Options{OutDir: outDir, Seed: seed, SolverName: solverName}
			res, err := runWithProgress(cmd, gen, noUI, func() (generate.SurveyResult, error) {
				return gen.Survey(cmd.Context(), problemSpec, evals, opts)
			})
			if err != nil {
				return err
			}

			fmt.Printf("evaluated %d instances: trivial fraction %.2f (%d kept, %d oracle errors)\n",
				res.Evaluated, res.TrivialFraction(), res.Kept, res.ErrorSkips)
			return nil
		},
	}
	defaults := defaultGeneration()
	cmd.Flags().IntVar(&evals, "evals", 30, "number of instances to evaluate")
	cmd.Flags().StringVar(&outDir, "out", defaults.OutDir, "destination directory for kept instances")
	cmd.Flags().StringVar(&solverName, "solver", defaults.Solver, "solver oracle to evaluate instances with")
	cmd.Flags().StringVar(&specFile, "spec-file", "", "instance spec file (json or yaml), overrides the config spec")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "disable the progress display")
	return cmd
}
