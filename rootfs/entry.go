// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package rootfs applies an ordered list of OCI layers into a single
// in-memory filesystem tree, honouring OverlayFS whiteout/opaque semantics,
// then superimposes exclusions, host-file injections, and an /init
// override.
package rootfs

import "coldstart.sh/internal/scratch"

// Kind tags the variant an Entry carries. Whiteout markers never reach this
// type; they are consumed by the assembler as deletion instructions.
type Kind int

const (
	KindDir Kind = iota
	KindRegular
	KindSymlink
	KindHardLink
	KindCharDevice
	KindBlockDevice
	KindFIFO
)

// Entry is one filesystem object in the assembled tree.
type Entry struct {
	Path string
	Kind Kind

	Mode  uint32
	Uid   int
	Gid   int
	Mtime int64

	// Payload holds a regular file's byte content. Nil for every other
	// Kind, and nil for a KindHardLink alias (its bytes live on the
	// canonical entry named by LinkTarget).
	Payload scratch.Payload

	// LinkTarget is the symlink target string for KindSymlink, or the
	// canonical path of the entry this one aliases for KindHardLink.
	LinkTarget string

	Devmajor uint32
	Devminor uint32
}
