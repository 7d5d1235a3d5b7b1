// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package cpio serialises an assembled rootfs tree into the SVR4 "new
// ASCII" (newc) CPIO format, the format the Linux kernel expects for an
// initramfs. Emission needs explicit per-record control over inode numbers
// and nlink counts that a generic CPIO writer library does not expose, so
// records are encoded directly here; cpio/writer_test.go round-trips the
// output through a third-party reader to validate the bytes produced.
package cpio

import (
	"fmt"
	"io"
	"strings"

	"coldstart.sh/internal/clierr"
	"coldstart.sh/rootfs"
)

// WriteTree serialises every entry in tree to w in deterministic order: a
// leading "." record for the root, then directories before their contents,
// lexicographic within a directory, terminated by a TRAILER!!! record.
// Hard-link group members share one inode number and an nlink equal to the
// group's cardinality; the canonical member (the one carrying content) is
// found by following Entry.LinkTarget. Emission order stays strictly
// lexicographic even within a hard-link group: an alias whose path sorts
// before its canonical member is emitted first, which the kernel's cpio
// unpacker and GNU cpio both accept.
func WriteTree(w io.Writer, tree *rootfs.Tree) error {
	paths := tree.Paths()

	groupOf, sizeOf, err := hardlinkGroups(tree, paths)
	if err != nil {
		return err
	}

	ino := make(map[string]uint32, len(paths))
	var nextIno uint32 = 1

	root := &rootfs.Entry{Path: ".", Kind: rootfs.KindDir, Mode: 0o755}
	if e, ok := tree.Get("."); ok && e.Kind == rootfs.KindDir {
		root = e
	}
	if err := writeEntry(w, root, nextIno, 1); err != nil {
		return err
	}
	nextIno++

	for _, p := range paths {
		if p == "." {
			continue
		}
		e, _ := tree.Get(p)

		identity := p
		if canon, ok := groupOf[p]; ok {
			identity = canon
		}
		if _, assigned := ino[identity]; !assigned {
			ino[identity] = nextIno
			nextIno++
		}

		nlink := uint32(1)
		if n, ok := sizeOf[identity]; ok {
			nlink = n
		}

		if err := writeEntry(w, e, ino[identity], nlink); err != nil {
			return err
		}
	}

	return writeTrailer(w)
}

// hardlinkGroups resolves every KindHardLink alias to its canonical target
// path (following chains of aliases), and returns the group cardinality
// for every canonical path that has at least one alias.
func hardlinkGroups(tree *rootfs.Tree, paths []string) (groupOf map[string]string, sizeOf map[string]uint32, err error) {
	groupOf = make(map[string]string)
	counts := make(map[string]uint32)

	for _, p := range paths {
		e, _ := tree.Get(p)
		if e.Kind != rootfs.KindHardLink {
			continue
		}

		canon := e.LinkTarget
		seen := map[string]bool{p: true}
		for {
			target, ok := tree.Get(canon)
			if !ok {
				return nil, nil, fmt.Errorf("%w: hard link %s targets nonexistent %s", clierr.ErrAssembly, p, canon)
			}
			if target.Kind != rootfs.KindHardLink {
				break
			}
			if seen[canon] {
				return nil, nil, fmt.Errorf("%w: hard link cycle involving %s", clierr.ErrAssembly, p)
			}
			seen[canon] = true
			canon = target.LinkTarget
		}

		groupOf[p] = canon
		counts[canon]++
	}

	sizeOf = make(map[string]uint32, len(counts))
	for canon, aliasCount := range counts {
		sizeOf[canon] = aliasCount + 1 // +1 for the canonical member itself
	}
	return groupOf, sizeOf, nil
}

func writeEntry(w io.Writer, e *rootfs.Entry, ino, nlink uint32) error {
	r := record{
		ino:   ino,
		uid:   uint32(e.Uid),
		gid:   uint32(e.Gid),
		nlink: nlink,
		mtime: uint32(e.Mtime),
		name:  e.Path,
	}

	switch e.Kind {
	case rootfs.KindDir:
		r.mode = modeDir | (e.Mode & 0o7777)
		return writeRecord(w, r, nil)

	case rootfs.KindRegular:
		r.mode = modeReg | (e.Mode & 0o7777)
		r.filesize = uint32(e.Payload.Size())
		rc, err := e.Payload.Open()
		if err != nil {
			return fmt.Errorf("%w: opening payload for %s: %v", clierr.ErrIO, e.Path, err)
		}
		defer rc.Close()
		return writeRecord(w, r, rc)

	case rootfs.KindHardLink:
		// Alias member: same type and permissions as the canonical entry,
		// zero-length, no data bytes of its own.
		r.mode = modeReg | (e.Mode & 0o7777)
		return writeRecord(w, r, nil)

	case rootfs.KindSymlink:
		r.mode = modeSymlink | (e.Mode & 0o7777)
		r.filesize = uint32(len(e.LinkTarget))
		return writeRecord(w, r, strings.NewReader(e.LinkTarget))

	case rootfs.KindCharDevice:
		r.mode = modeChar | (e.Mode & 0o7777)
		r.rdevmajor = e.Devmajor
		r.rdevminor = e.Devminor
		return writeRecord(w, r, nil)

	case rootfs.KindBlockDevice:
		r.mode = modeBlock | (e.Mode & 0o7777)
		r.rdevmajor = e.Devmajor
		r.rdevminor = e.Devminor
		return writeRecord(w, r, nil)

	case rootfs.KindFIFO:
		r.mode = modeFIFO | (e.Mode & 0o7777)
		return writeRecord(w, r, nil)

	default:
		return fmt.Errorf("%w: unrepresentable entry kind for %s", clierr.ErrAssembly, e.Path)
	}
}
