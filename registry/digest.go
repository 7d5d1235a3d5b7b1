// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	digest "github.com/opencontainers/go-digest"

	"coldstart.sh/internal/clierr"
)

// verifyingReadCloser hashes every byte read from rc and compares the
// running digest against want once rc reports io.EOF. A mismatch is
// reported on the Read call that observes EOF, or by Close when the stream
// was closed before EOF.
type verifyingReadCloser struct {
	rc       io.ReadCloser
	digester digest.Digester
	want     digest.Digest
	checked  bool
}

func (v *verifyingReadCloser) Read(p []byte) (int, error) {
	n, err := v.rc.Read(p)
	if n > 0 {
		_, _ = v.digester.Hash().Write(p[:n])
	}
	if err == io.EOF && !v.checked {
		v.checked = true
		if got := v.digester.Digest(); got != v.want {
			return n, fmt.Errorf("%w: want %s, got %s", clierr.ErrDigestMismatch, v.want, got)
		}
	}
	return n, err
}

// Close drains whatever the caller left unread through the digester, so
// the digest is checked even when the consumer stopped before EOF, then
// closes rc.
func (v *verifyingReadCloser) Close() error {
	if !v.checked {
		v.checked = true
		if _, err := io.Copy(v.digester.Hash(), v.rc); err != nil {
			v.rc.Close()
			return fmt.Errorf("%w: draining layer blob: %v", clierr.ErrIO, err)
		}
		if got := v.digester.Digest(); got != v.want {
			v.rc.Close()
			return fmt.Errorf("%w: want %s, got %s", clierr.ErrDigestMismatch, v.want, got)
		}
	}
	return v.rc.Close()
}

// decompress wraps r with the decoder matching mt, presenting a plain tar
// byte stream to the layer reader regardless of the layer's declared
// compression.
func decompress(r io.ReadCloser, mt LayerMediaType) (io.ReadCloser, error) {
	switch mt {
	case MediaTypeTar:
		return r, nil
	case MediaTypeTarGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", clierr.ErrIO, err)
		}
		return &readCloserPair{Reader: gz, closers: []io.Closer{gz, r}}, nil
	case MediaTypeTarZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", clierr.ErrIO, err)
		}
		zrc := zr.IOReadCloser()
		return &readCloserPair{Reader: zrc, closers: []io.Closer{zrc, r}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown layer media type", clierr.ErrIO)
	}
}

// readCloserPair presents a single io.ReadCloser over a decompressor plus
// the underlying verifying reader, closing both on Close.
type readCloserPair struct {
	io.Reader
	closers []io.Closer
}

func (p *readCloserPair) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
