package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bmipgen configuration",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "init",
		Short:        "Initialize the bmipgen state directory",
		Long:         "Create the .bmipgen directory and install a default config.json when none exists.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}

			stateDir := filepath.Join(workDir, ".bmipgen")
			log.Info().Str("dir", stateDir).Msg("creating state directory")
			if err := os.MkdirAll(filepath.Join(stateDir, "locks"), 0o755); err != nil {
				return fmt.Errorf("create locks dir: %w", err)
			}

			configPath := filepath.Join(stateDir, "config.json")
			if _, err := os.Stat(configPath); err == nil {
				log.Info().Msg("config.json already exists, skipping")
			} else {
				log.Info().Str("path", configPath).Msg("installing default config")
				defaultConfig := map[string]any{
					"spec": map[string]any{
						"x_ud": 2, "y_ud": 2, "x_uc": 2, "y_uc": 2,
						"x_ld": 2, "y_ld": 2, "x_lc": 2, "y_lc": 2,
						"G_ud": 2, "g_ld": 2, "G_uc": 2, "g_lc": 2, "g_g": 2,
					},
					"generation": map[string]any{
						"count":          10,
						"attempt_factor": 3,
						"out_dir":        "problems_folder",
						"solver":         "gurobi",
					},
					"retention": map[string]any{
						"keep_last": 50,
						"keep_days": 30,
					},
				}
				data, err := json.MarshalIndent(defaultConfig, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal default config: %w", err)
				}
				if err := os.WriteFile(configPath, data, 0o644); err != nil {
					return fmt.Errorf("write default config: %w", err)
				}
			}

			fmt.Println("bmipgen initialized successfully")
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show",
		Short:        "Print the effective configuration",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
