// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package layer decodes a tar byte stream — one OCI layer — into a sequence
// of filesystem entries, classifying OverlayFS whiteout markers along the
// way. Tar parsing itself is left on archive/tar (stdlib); no example repo
// in the retrieval pack imports a third-party tar library, and archive/tar
// already implements ustar, GNU long-name/long-link, and PAX extensions.
package layer

// Kind tags the filesystem-object variant an Entry carries.
type Kind int

const (
	KindDir Kind = iota
	KindRegular
	KindSymlink
	KindHardLink
	KindCharDevice
	KindBlockDevice
	KindFIFO
	KindWhiteout
	KindOpaqueWhiteout
)

// Entry is one decoded tar record. Path is canonical (no leading slash, no
// "." or "..", no repeated separators). For KindWhiteout, Path names the
// entry that must be deleted (the ".wh." prefix has already been stripped
// and joined with its parent directory); for KindOpaqueWhiteout, Path names
// the directory whose descendants must be deleted.
type Entry struct {
	Path string
	Kind Kind

	Mode  uint32 // permission bits, 12 bits incl. setuid/setgid/sticky
	Uid   int
	Gid   int
	Mtime int64 // seconds since epoch

	// LinkTarget is the symlink target string (KindSymlink, unresolved) or
	// the canonical path of the previously-seen entry this one aliases
	// (KindHardLink).
	LinkTarget string

	// Devmajor/Devminor are populated for KindCharDevice/KindBlockDevice.
	Devmajor uint32
	Devminor uint32

	// Size is the regular-file content length in bytes. Content must be
	// read from the Reader (see Reader.Next) before the next call to Next;
	// the tar stream does not support seeking back to it.
	Size int64
}
