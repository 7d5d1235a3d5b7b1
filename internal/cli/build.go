// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coldstart.sh/initramfs"
	"coldstart.sh/internal/clierr"
)

func newBuildCmd() *cobra.Command {
	var (
		output      string
		injectSpecs []string
		initScript  string
		excludes    []string
		archFlag    string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "build <IMAGE>",
		Short: "Convert an OCI image into a compressed CPIO initramfs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image := args[0]

			platform, err := parsePlatform(archFlag)
			if err != nil {
				return err
			}
			codec, err := parseCompression(compression)
			if err != nil {
				return err
			}
			injections, err := parseInjections(injectSpecs)
			if err != nil {
				return err
			}

			var initBytes []byte
			if initScript != "" {
				initBytes, err = os.ReadFile(initScript)
				if err != nil {
					return fmt.Errorf("%w: reading init script: %v", clierr.ErrIO, err)
				}
			}

			if !cmd.Flags().Changed("output") {
				output = "initramfs" + codec.DefaultExtension()
			}

			client, err := newClient(image)
			if err != nil {
				return err
			}

			ctx, cancel := timeoutContext(cmd)
			defer cancel()

			return initramfs.Build(ctx, client, initramfs.BuildOptions{
				Image:       image,
				Output:      output,
				Platform:    platform,
				Compression: codec,
				Injections:  injections,
				InitScript:  initBytes,
				Excludes:    excludes,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "initramfs.cpio.gz", "output archive path")
	cmd.Flags().StringArrayVar(&injectSpecs, "inject", nil, "host-path:guest-path file to inject (repeatable)")
	cmd.Flags().StringVar(&initScript, "init", "", "script to install as /init")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "glob pattern to exclude from the assembled tree (repeatable)")
	cmd.Flags().StringVar(&archFlag, "platform-arch", "amd64", "target architecture: amd64 or arm64")
	cmd.Flags().StringVarP(&compression, "compression", "c", "gzip", "output compression: gzip, zstd, or none")

	return cmd
}
