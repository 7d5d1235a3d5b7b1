// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package scratch manages the single scratch area used to hold
// decompressed layer data that exceeds the in-memory threshold: a scoped
// acquisition that guarantees release on every exit path.
package scratch

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// InMemoryThreshold is the payload size above which content spills to a
// scratch file instead of staying resident.
const InMemoryThreshold = 1 << 20

// Area is a scoped temp directory. Acquire creates it; Close removes it
// unconditionally, so it is released on every exit path including a panic
// recovered higher up the call stack.
type Area struct {
	dir string
}

// Acquire creates a fresh scratch directory under the system temp dir.
func Acquire() (*Area, error) {
	dir, err := os.MkdirTemp("", "coldstart-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch area: %w", err)
	}
	return &Area{dir: dir}, nil
}

// Close deletes the scratch area and everything under it.
func (a *Area) Close() error {
	return os.RemoveAll(a.dir)
}

// Path returns the scratch directory's filesystem path.
func (a *Area) Path() string {
	return a.dir
}

// Payload is a replayable handle to one regular file's byte content: an
// in-memory buffer for small files, a scratch file for large ones. Each
// payload is read exactly once during CPIO emission.
type Payload interface {
	Size() int64
	Open() (io.ReadCloser, error)
}

// NewPayload drains r (size bytes, a size hint from the tar/layer header)
// into either memory or a scratch file, picking the backing store by size
// so the full payload set need not be memory-resident at once.
func (a *Area) NewPayload(r io.Reader, size int64) (Payload, error) {
	if size >= 0 && size <= InMemoryThreshold {
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("buffering payload: %w", err)
		}
		return &memoryPayload{data: buf}, nil
	}

	f, err := os.CreateTemp(a.dir, "payload-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}

	return &filePayload{path: f.Name(), size: n}, nil
}

type memoryPayload struct {
	data []byte
}

func (p *memoryPayload) Size() int64 { return int64(len(p.data)) }

func (p *memoryPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

type filePayload struct {
	path string
	size int64
}

func (p *filePayload) Size() int64 { return p.size }

func (p *filePayload) Open() (io.ReadCloser, error) {
	return os.Open(p.path)
}
