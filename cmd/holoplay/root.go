// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/holoplay"
	"github.com/gogpu/holoplay/settings"
)

// app holds what every subcommand shares.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.Default()}

	root := &cobra.Command{
		Use:   "holoplay",
		Short: "Render and present lenticular quilts",
		Long: `holoplay renders a scene from an array of cameras, packs the views into
a quilt and interleaves the quilt for a lenticular display.

Settings are read from a YAML file and saved back when a command changes
them. Every flag can also be set with a HOLOPLAY_ environment variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().String("config", defaultConfigPath(), "settings file")
	root.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	_ = a.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = a.v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	a.v.SetEnvPrefix("holoplay")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newRunCmd(a),
		newRenderCmd(a),
		newExecCmd(a),
		newShaderCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	holoplay.SetLogger(a.logger)
	return nil
}

// openSettings opens the settings file named by --config.
func (a *app) openSettings() (*settings.FileStore, error) {
	path := a.v.GetString("config")
	store, err := settings.Open(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("settings loaded", "path", path)
	return store, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "holoplay.yaml"
	}
	return filepath.Join(dir, "holoplay", "settings.yaml")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "holoplay", holoplay.Version)
		},
	}
}
