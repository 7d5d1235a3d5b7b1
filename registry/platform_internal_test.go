// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

import (
	"testing"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/stretchr/testify/require"
)

func TestPlatformMatches(t *testing.T) {
	p := Platform{OS: "linux", Architecture: "arm64"}

	require.True(t, p.matches(&v1.Platform{OS: "linux", Architecture: "arm64"}))
	require.False(t, p.matches(&v1.Platform{OS: "linux", Architecture: "amd64"}))
	require.False(t, p.matches(nil))
}

func TestPlatformToV1(t *testing.T) {
	p := Platform{OS: "linux", Architecture: "amd64"}
	v := p.toV1()
	require.Equal(t, "linux", v.OS)
	require.Equal(t, "amd64", v.Architecture)
}
