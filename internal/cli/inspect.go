// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"coldstart.sh/initramfs"
)

func newInspectCmd() *cobra.Command {
	var archFlag string

	cmd := &cobra.Command{
		Use:   "inspect <IMAGE>",
		Short: "Print the resolved manifest's digest, layer count and size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image := args[0]

			platform, err := parsePlatform(archFlag)
			if err != nil {
				return err
			}

			client, err := newClient(image)
			if err != nil {
				return err
			}

			ctx, cancel := timeoutContext(cmd)
			defer cancel()

			summary, err := initramfs.Inspect(ctx, client, image, platform)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reference:      %s\n", summary.Reference)
			fmt.Fprintf(out, "platform:       %s/%s\n", summary.Platform.OS, summary.Platform.Architecture)
			fmt.Fprintf(out, "manifest digest: %s\n", summary.Digest)
			fmt.Fprintf(out, "config digest:   %s\n", summary.ConfigDigest)
			fmt.Fprintf(out, "layers:          %d\n", len(summary.Layers))
			fmt.Fprintf(out, "total size:      %d bytes\n", summary.TotalLayerSize)
			return nil
		},
	}

	cmd.Flags().StringVar(&archFlag, "platform-arch", "amd64", "target architecture: amd64 or arm64")

	return cmd
}
