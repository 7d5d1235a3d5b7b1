// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"coldstart.sh/registry"
)

func TestManifestTotalSize(t *testing.T) {
	m := &registry.Manifest{
		Layers: []registry.LayerDescriptor{
			{Size: 100},
			{Size: 250},
			{Size: 7},
		},
	}
	require.EqualValues(t, 357, m.TotalSize())
}

func TestLayerMediaTypeString(t *testing.T) {
	require.Equal(t, "tar", registry.MediaTypeTar.String())
	require.Equal(t, "tar+gzip", registry.MediaTypeTarGzip.String())
	require.Equal(t, "tar+zstd", registry.MediaTypeTarZstd.String())
}
