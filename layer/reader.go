// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package layer

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"strings"

	"coldstart.sh/internal/clierr"
	"coldstart.sh/internal/pathutil"
)

const (
	whiteoutPrefix = ".wh."
	opaqueMarker   = ".wh..wh..opq"
)

// Reader decodes a tar byte stream into a sequence of Entry values. Reader
// itself is an io.Reader positioned on the current entry's content,
// mirroring archive/tar.Reader's own shape: call Next to advance, then Read
// to drain the regular-file payload before the next Next call.
type Reader struct {
	tr *tar.Reader
}

// NewReader wraps an already-decompressed tar byte stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{tr: tar.NewReader(r)}
}

// Read drains the content of the entry most recently returned by Next. It
// is only meaningful for KindRegular entries; calling it after a
// non-regular entry returns (0, io.EOF), same as archive/tar.
func (r *Reader) Read(p []byte) (int, error) {
	return r.tr.Read(p)
}

// Next advances to the next entry and classifies it. io.EOF is returned at
// the end of the stream. Any other decode failure is wrapped in
// ErrTarMalformed.
func (r *Reader) Next() (*Entry, error) {
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", clierr.ErrTarMalformed, err)
		}

		entry, skip, err := decode(hdr)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		return entry, nil
	}
}

func decode(hdr *tar.Header) (*Entry, bool, error) {
	p := pathutil.Clean(hdr.Name)
	base := pathutil.Base(p)
	dir := pathutil.Dir(p)

	if base == opaqueMarker {
		return &Entry{Path: dir, Kind: KindOpaqueWhiteout}, false, nil
	}
	if strings.HasPrefix(base, whiteoutPrefix) {
		deleted := strings.TrimPrefix(base, whiteoutPrefix)
		target := pathutil.Join(dir, deleted)
		return &Entry{Path: target, Kind: KindWhiteout}, false, nil
	}

	e := &Entry{
		Path:  p,
		Mode:  uint32(hdr.Mode) & 0o7777,
		Uid:   hdr.Uid,
		Gid:   hdr.Gid,
		Mtime: hdr.ModTime.Unix(),
		Size:  hdr.Size,
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		e.Kind = KindDir
	case tar.TypeReg, tar.TypeRegA:
		e.Kind = KindRegular
	case tar.TypeSymlink:
		e.Kind = KindSymlink
		e.LinkTarget = hdr.Linkname
	case tar.TypeLink:
		if hdr.Linkname == "" {
			return nil, false, fmt.Errorf("%w: hard link %s has no target", clierr.ErrTarMalformed, p)
		}
		e.Kind = KindHardLink
		e.LinkTarget = pathutil.Clean(hdr.Linkname)
	case tar.TypeChar:
		e.Kind = KindCharDevice
		e.Devmajor = uint32(hdr.Devmajor)
		e.Devminor = uint32(hdr.Devminor)
	case tar.TypeBlock:
		e.Kind = KindBlockDevice
		e.Devmajor = uint32(hdr.Devmajor)
		e.Devminor = uint32(hdr.Devminor)
	case tar.TypeFifo:
		e.Kind = KindFIFO
	case tar.TypeXGlobalHeader:
		// PAX global extended header: not a filesystem entry, carries no
		// content the assembler needs. Skipped, not an error.
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("%w: unsupported tar typeflag %q for %s",
			clierr.ErrTarMalformed, string(hdr.Typeflag), p)
	}

	return e, false, nil
}

// IsMalformed reports whether err wraps ErrTarMalformed, a convenience for
// callers translating pipeline errors to exit codes.
func IsMalformed(err error) bool {
	return errors.Is(err, clierr.ErrTarMalformed)
}
