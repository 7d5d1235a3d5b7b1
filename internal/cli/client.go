// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package cli

import (
	"fmt"

	"coldstart.sh/internal/auth"
	"coldstart.sh/internal/clierr"
	"coldstart.sh/registry"
)

// newClient resolves credentials for image's registry host and builds a
// registry.Client against them. Credential resolution happens per-command
// rather than once at the root, since the registry host is only known
// after the image argument is parsed.
func newClient(image string) (*registry.Client, error) {
	ref, err := registry.ParseReference(image)
	if err != nil {
		return nil, err
	}

	authenticator, err := auth.Resolve(ref.Registry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clierr.ErrAuth, err)
	}

	return registry.NewClient(registry.WithAuthenticator(authenticator)), nil
}
