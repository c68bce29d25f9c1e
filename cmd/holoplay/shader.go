// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/holoplay/lenticular"
)

func newShaderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shader",
		Short: "Compile the lenticular shader to SPIR-V",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if wgsl, _ := cmd.Flags().GetBool("wgsl"); wgsl {
				_, err := fmt.Fprint(cmd.OutOrStdout(), lenticular.ShaderSource())
				return err
			}

			words, err := lenticular.CompileShader()
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("output")
			data := make([]byte, 4*len(words))
			for i, w := range words {
				binary.LittleEndian.PutUint32(data[4*i:], w)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("shader compiled", "output", out, "words", len(words))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "lenticular.spv", "SPIR-V output file")
	cmd.Flags().Bool("wgsl", false, "print the WGSL source instead")
	return cmd
}
