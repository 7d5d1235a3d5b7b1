// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package cli

import (
	"fmt"

	"coldstart.sh/compress"
	"coldstart.sh/internal/clierr"
	"coldstart.sh/registry"
)

// parsePlatform validates --platform-arch and pairs it with the only OS
// this system ever targets.
func parsePlatform(arch string) (registry.Platform, error) {
	switch arch {
	case "amd64", "arm64":
		return registry.Platform{OS: "linux", Architecture: arch}, nil
	default:
		return registry.Platform{}, fmt.Errorf("%w: --platform-arch %q: want amd64 or arm64", clierr.ErrUsage, arch)
	}
}

// parseCompression validates -c/--compression against the three supported
// codec names.
func parseCompression(name string) (compress.Codec, error) {
	switch name {
	case "gzip", "zstd", "none":
		return compress.Codec(name), nil
	default:
		return "", fmt.Errorf("%w: --compression %q: want gzip, zstd or none", clierr.ErrUsage, name)
	}
}
