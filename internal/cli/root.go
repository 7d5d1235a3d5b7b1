// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package cli builds the cobra command tree for the coldstart binary:
// build, inspect, and list-layers, scaled down from kraftkit's reflection-
// based cmdfactory builder (suited to a multi-hundred-subcommand CLI) to
// plain cobra.Command construction, the same style kraftkit itself uses
// for small leaf commands such as internal/cmd/version.
package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"coldstart.sh/log"
)

// NewRootCmd builds the "coldstart" root command with its three
// subcommands attached.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "coldstart",
		Short:         "Convert an OCI container image into a microVM initramfs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
			cmd.SetContext(log.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().Duration("timeout", 0, "abort the whole invocation after this long (0 disables)")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newListLayersCmd())

	return root
}

// timeoutContext derives a context from cmd bounded by the --timeout flag,
// feeding the cancellation path spec.md §5 requires: in-flight network and
// file operations abort and the output file is never left partially
// written.
func timeoutContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	d, _ := cmd.Flags().GetDuration("timeout")
	if d <= 0 {
		return cmd.Context(), func() {}
	}
	return context.WithTimeout(cmd.Context(), d)
}
