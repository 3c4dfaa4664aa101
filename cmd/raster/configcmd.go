package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/raster/internal/config"
	"github.com/taigrr/raster/internal/logger"
)

func newConfigCmd(a *app) *cobra.Command {
	var write string
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or write the effective configuration",
		Long: "config prints the configuration after applying the config file and flags.\n" +
			"With --write or --save it stores the YAML instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer logger.Sync()
			switch {
			case write != "":
				if err := a.cfg.SaveTo(write); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				logger.Info("config written", zap.String("path", write))
				fmt.Fprintln(cmd.OutOrStdout(), write)
			case save:
				if err := a.cfg.Save(); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				logger.Info("config written", zap.String("path", config.ConfigDir()))
				fmt.Fprintln(cmd.OutOrStdout(), config.ConfigDir())
			default:
				data, err := a.cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&write, "write", "w", "", "write the YAML to this path")
	cmd.Flags().BoolVar(&save, "save", false, "write the YAML to the user config directory")
	return cmd
}
