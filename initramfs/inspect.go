// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package initramfs

import (
	"context"

	"coldstart.sh/registry"
)

// Summary is the manifest-level information the "inspect" and
// "list-layers" CLI commands print; resolving it never downloads a layer
// blob.
type Summary struct {
	Reference      string
	Platform       registry.Platform
	Digest         string
	ConfigDigest   string
	Layers         []registry.LayerDescriptor
	TotalLayerSize int64
}

// Inspect resolves image's manifest for platform and returns its summary,
// without streaming any layer body.
func Inspect(ctx context.Context, client *registry.Client, image string, platform registry.Platform) (*Summary, error) {
	ref, err := registry.ParseReference(image)
	if err != nil {
		return nil, err
	}

	manifest, err := client.FetchManifest(ctx, ref, platform)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Reference:      ref.String(),
		Platform:       platform,
		Digest:         manifest.Digest,
		ConfigDigest:   manifest.ConfigDigest,
		Layers:         manifest.Layers,
		TotalLayerSize: manifest.TotalSize(),
	}, nil
}
