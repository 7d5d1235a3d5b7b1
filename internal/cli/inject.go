// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package cli

import (
	"fmt"
	"strings"

	"coldstart.sh/internal/clierr"
	"coldstart.sh/rootfs"
)

// parseInjection splits a "host-path:guest-path" spec per spec.md §6: both
// paths non-empty, guest-path absolute, a missing separator is a usage
// error. The host path may itself contain ':' (e.g. a Windows drive
// letter), so the split is on the *last* colon, mirroring how Docker's own
// `-v host:container` volume spec is parsed.
func parseInjection(spec string) (rootfs.Injection, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return rootfs.Injection{}, fmt.Errorf("%w: --inject %q: want SRC:DEST", clierr.ErrUsage, spec)
	}

	host, guest := spec[:idx], spec[idx+1:]
	if !strings.HasPrefix(guest, "/") {
		return rootfs.Injection{}, fmt.Errorf("%w: --inject %q: guest path must be absolute", clierr.ErrUsage, spec)
	}

	return rootfs.Injection{HostPath: host, GuestPath: guest}, nil
}

func parseInjections(specs []string) ([]rootfs.Injection, error) {
	injections := make([]rootfs.Injection, 0, len(specs))
	for _, s := range specs {
		inj, err := parseInjection(s)
		if err != nil {
			return nil, err
		}
		injections = append(injections, inj)
	}
	return injections, nil
}
