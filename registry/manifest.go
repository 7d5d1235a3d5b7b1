// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

// LayerMediaType enumerates the compression wrapping of a tar layer blob.
type LayerMediaType int

const (
	MediaTypeTar LayerMediaType = iota
	MediaTypeTarGzip
	MediaTypeTarZstd
)

// String renders the media type the way "list-layers" prints it.
func (mt LayerMediaType) String() string {
	switch mt {
	case MediaTypeTarGzip:
		return "tar+gzip"
	case MediaTypeTarZstd:
		return "tar+zstd"
	default:
		return "tar"
	}
}

// LayerDescriptor is one entry in a manifest's ordered layer list. Index 0
// is the base layer; subsequent indices are applied on top.
type LayerDescriptor struct {
	Digest    string
	MediaType LayerMediaType
	Size      int64
}

// Manifest is the resolved, single-platform manifest for one image: an
// ordered sequence of layer descriptors plus the digest of its config blob.
type Manifest struct {
	// Digest is the content digest of this manifest document itself.
	Digest string

	ConfigDigest string
	Layers       []LayerDescriptor
}

// TotalSize sums the declared sizes of every layer, for "inspect".
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, l := range m.Layers {
		total += l.Size
	}
	return total
}
