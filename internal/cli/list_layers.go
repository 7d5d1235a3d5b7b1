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

func newListLayersCmd() *cobra.Command {
	var archFlag string

	cmd := &cobra.Command{
		Use:   "list-layers <IMAGE>",
		Short: "Print each layer's index, digest and size",
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
			for i, l := range summary.Layers {
				fmt.Fprintf(out, "%3d  %-10s %12d bytes  %s\n", i, l.MediaType, l.Size, l.Digest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&archFlag, "platform-arch", "amd64", "target architecture: amd64 or arm64")

	return cmd
}
