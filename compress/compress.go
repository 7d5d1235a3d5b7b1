// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package compress wraps the CPIO byte stream in an output codec: gzip,
// zstd, or a passthrough identity writer, selected by the same name the
// CLI's `-c/--compression` flag accepts.
package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec names a compression scheme.
type Codec string

const (
	Gzip     Codec = "gzip"
	Zstd     Codec = "zstd"
	Identity Codec = "none"
)

// DefaultExtension returns the filename suffix a build output should carry
// for this codec, so a caller defaulting an output path can match it to
// the chosen compression.
func (c Codec) DefaultExtension() string {
	switch c {
	case Gzip:
		return ".cpio.gz"
	case Zstd:
		return ".cpio.zst"
	default:
		return ".cpio"
	}
}

// Writer is a compressing sink: every byte written to it must be finalised
// with Close, which flushes trailers (gzip's CRC/size footer, zstd's
// frame) without closing the underlying writer.
type Writer interface {
	io.Writer
	Close() error
}

// NewWriter wraps w in the codec's compressing writer. The returned Writer
// must be closed before the underlying w is closed or the archive's
// trailer will be missing.
func NewWriter(w io.Writer, codec Codec) (Writer, error) {
	switch codec {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("compress: opening zstd writer: %w", err)
		}
		return zw, nil
	case Identity:
		return identityWriter{w}, nil
	default:
		return nil, fmt.Errorf("compress: unknown codec %q", codec)
	}
}

// identityWriter adapts a plain io.Writer to the Writer interface with a
// no-op Close, for the uncompressed output case.
type identityWriter struct {
	io.Writer
}

func (identityWriter) Close() error { return nil }
