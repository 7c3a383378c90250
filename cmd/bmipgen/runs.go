package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/ntlab/bmipgen/internal/generate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage generation runs",
	}
	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsPruneCmd())
	return cmd
}

var runsHeaderStyle = lipgloss.NewStyle().Bold(true)

func runsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List recorded runs, newest first",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogDB, _, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			store := generate.NewStore(catalogDB)
			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			fmt.Println(runsHeaderStyle.Render(fmt.Sprintf("%-36s  %-20s  %-8s  %-9s  %8s  %8s  %7s  %s",
				"RUN", "CREATED", "KIND", "STATUS", "ATTEMPTS", "TRIVIAL", "KEPT", "SOLVER")))
			for _, rec := range runs {
				fmt.Printf("%-36s  %-20s  %-8s  %-9s  %8d  %8d  %7d  %s\n",
					rec.RunID, rec.CreatedAt, rec.Kind, rec.Status, rec.Attempts, rec.TrivialCount, rec.Collected, rec.Solver)
			}
			return nil
		},
	}
}

func runsPruneCmd() *cobra.Command {
	var keepLast int
	var keepDays int
	var dryRun bool
	cmd := &cobra.Command{
		Use:          "prune",
		Short:        "Prune old runs from disk and database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogDB, stateDir, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			policy := generate.RetentionPolicy{KeepLast: keepLast, KeepDays: keepDays}
			if policy.KeepLast <= 0 && policy.KeepDays <= 0 {
				policy = generate.RetentionPolicy{
					KeepLast: cfg.Retention.KeepLast,
					KeepDays: cfg.Retention.KeepDays,
				}
			}
			if policy.KeepLast <= 0 && policy.KeepDays <= 0 {
				return fmt.Errorf("set --keep-last or --keep-days (or configure retention in .bmipgen/config.json)")
			}

			lock, err := generate.AcquireRunLock(stateDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			store := generate.NewStore(catalogDB)
			res, err := store.PruneRuns(context.Background(), policy, dryRun)
			if err != nil {
				return err
			}
			mode := "deleted"
			if dryRun {
				mode = "would delete"
			}
			log.Info().Msgf("%s %d runs (kept %d, skipped %d)", mode, res.Deleted, res.Kept, res.Skipped)
			return nil
		},
	}
	cmd.Flags().IntVar(&keepLast, "keep-last", 0, "keep the newest N runs")
	cmd.Flags().IntVar(&keepDays, "keep-days", 0, "keep runs newer than N days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be pruned without deleting")
	return cmd
}
