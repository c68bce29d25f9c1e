// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/holoplay"
)

func newExecCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec COMMAND [ARGS...]",
		Short: "Apply a HoloPlay command to the settings file",
		Long: `exec runs one HoloPlay console command against the settings file and
saves the result, as if it had been typed into the running player.

Examples:
  holoplay exec HoloPlay.Tiling FourK
  holoplay exec "HoloPlay.Shader Pitch 52.3"
  holoplay exec --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openSettings()
			if err != nil {
				return err
			}
			p, err := holoplay.New(store, holoplay.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer p.Close()

			if list, _ := cmd.Flags().GetBool("list"); list {
				for _, name := range p.Router().Names() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", name, p.Router().Help(name))
				}
				return nil
			}
			if len(args) == 0 {
				return cmd.Help()
			}

			line := strings.Join(args, " ")
			if !p.HandleCommand(line) {
				return fmt.Errorf("command not handled: %q", line)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok, saved %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().Bool("list", false, "list the available commands")
	return cmd
}
