// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Command coldstart converts an OCI/Docker container image into a
// compressed CPIO newc archive usable as a microVM initramfs.
package main

import (
	"context"
	"fmt"
	"os"

	"coldstart.sh/internal/cli"
	"coldstart.sh/internal/clierr"
)

func main() {
	root := cli.NewRootCmd()

	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "coldstart:", err)
	}
	os.Exit(clierr.ExitCode(err))
}
