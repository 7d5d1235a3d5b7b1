// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

import v1 "github.com/google/go-containerregistry/pkg/v1"

// Platform selects one manifest from a multi-platform index. OS is always
// "linux" in this system; Architecture is "amd64" or "arm64".
type Platform struct {
	OS           string
	Architecture string
}

func (p Platform) toV1() v1.Platform {
	return v1.Platform{OS: p.OS, Architecture: p.Architecture}
}

func (p Platform) matches(other *v1.Platform) bool {
	if other == nil {
		return false
	}
	return other.OS == p.OS && other.Architecture == p.Architecture
}
