// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package rootfs

import (
	"sort"

	"coldstart.sh/internal/pathutil"
)

// Tree is the assembled filesystem, keyed by canonical path (no leading
// slash). "." denotes the root; the CPIO writer emits it as the archive's
// leading record rather than from the map.
type Tree struct {
	entries map[string]*Entry
}

// NewTree returns an empty assembled tree.
func NewTree() *Tree {
	return &Tree{entries: make(map[string]*Entry)}
}

// Get returns the entry at path, if any.
func (t *Tree) Get(path string) (*Entry, bool) {
	e, ok := t.entries[pathutil.Clean(path)]
	return e, ok
}

// Set inserts or replaces the entry at its own Path, overwriting whatever
// kind previously lived there. Replacing a directory with a non-directory,
// or vice versa, is permitted.
func (t *Tree) Set(e *Entry) {
	t.entries[e.Path] = e
}

// Delete removes exactly path, leaving descendants untouched.
func (t *Tree) Delete(path string) {
	delete(t.entries, pathutil.Clean(path))
}

// DeleteSubtree removes path itself and every entry strictly beneath it.
func (t *Tree) DeleteSubtree(path string) {
	path = pathutil.Clean(path)
	delete(t.entries, path)
	for p := range t.entries {
		if pathutil.HasPrefixDir(p, path) {
			delete(t.entries, p)
		}
	}
}

// DeleteChildren removes every entry strictly beneath dir, but not dir
// itself: the opaque-whiteout semantics.
func (t *Tree) DeleteChildren(dir string) {
	dir = pathutil.Clean(dir)
	for p := range t.entries {
		if pathutil.HasPrefixDir(p, dir) {
			delete(t.entries, p)
		}
	}
}

// Paths returns every path in the tree in lexicographic order.
func (t *Tree) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len reports the number of entries in the tree.
func (t *Tree) Len() int {
	return len(t.entries)
}

// SynthesizeDirectories adds a directory entry, mode 0755 uid/gid 0, for
// every proper prefix of every path that does not already have one, so
// every non-root path has a directory entry for each of its proper
// prefixes.
func (t *Tree) SynthesizeDirectories() {
	for _, p := range t.Paths() {
		dir := pathutil.Dir(p)
		for dir != "." {
			if _, ok := t.entries[dir]; !ok {
				t.entries[dir] = &Entry{Path: dir, Kind: KindDir, Mode: 0o755}
			}
			dir = pathutil.Dir(dir)
		}
	}
	for _, name := range []string{"proc", "sys", "dev"} {
		if _, ok := t.entries[name]; !ok {
			t.entries[name] = &Entry{Path: name, Kind: KindDir, Mode: 0o755}
		}
	}
}
