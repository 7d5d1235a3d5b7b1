// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package rootfs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gobwas/glob"

	"coldstart.sh/internal/clierr"
	"coldstart.sh/internal/pathutil"
	"coldstart.sh/internal/scratch"
	"coldstart.sh/layer"
)

// ApplyLayer drains every entry from r and applies it to tree in order:
// non-marker entries are inserted/replaced, an opaque marker deletes every
// strict descendant of its directory, and a whiteout marker deletes its
// target and everything beneath it. Markers themselves never reach the
// tree.
func ApplyLayer(tree *Tree, r *layer.Reader, area *scratch.Area) error {
	for {
		e, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch e.Kind {
		case layer.KindOpaqueWhiteout:
			tree.DeleteChildren(e.Path)

		case layer.KindWhiteout:
			tree.DeleteSubtree(e.Path)

		case layer.KindHardLink:
			if _, ok := tree.Get(e.LinkTarget); !ok {
				return fmt.Errorf("%w: hard link %s targets nonexistent %s", clierr.ErrTarMalformed, e.Path, e.LinkTarget)
			}
			tree.Set(&Entry{
				Path:       e.Path,
				Kind:       KindHardLink,
				Mode:       e.Mode,
				Uid:        e.Uid,
				Gid:        e.Gid,
				Mtime:      e.Mtime,
				LinkTarget: e.LinkTarget,
			})

		case layer.KindRegular:
			payload, err := area.NewPayload(r, e.Size)
			if err != nil {
				return fmt.Errorf("%w: %v", clierr.ErrIO, err)
			}
			tree.Set(&Entry{
				Path: e.Path, Kind: KindRegular,
				Mode: e.Mode, Uid: e.Uid, Gid: e.Gid, Mtime: e.Mtime,
				Payload: payload,
			})

		case layer.KindSymlink:
			tree.Set(&Entry{
				Path: e.Path, Kind: KindSymlink,
				Mode: e.Mode, Uid: e.Uid, Gid: e.Gid, Mtime: e.Mtime,
				LinkTarget: e.LinkTarget,
			})

		case layer.KindCharDevice, layer.KindBlockDevice:
			kind := KindCharDevice
			if e.Kind == layer.KindBlockDevice {
				kind = KindBlockDevice
			}
			tree.Set(&Entry{
				Path: e.Path, Kind: kind,
				Mode: e.Mode, Uid: e.Uid, Gid: e.Gid, Mtime: e.Mtime,
				Devmajor: e.Devmajor, Devminor: e.Devminor,
			})

		case layer.KindFIFO:
			tree.Set(&Entry{
				Path: e.Path, Kind: KindFIFO,
				Mode: e.Mode, Uid: e.Uid, Gid: e.Gid, Mtime: e.Mtime,
			})

		case layer.KindDir:
			tree.Set(&Entry{
				Path: e.Path, Kind: KindDir,
				Mode: e.Mode, Uid: e.Uid, Gid: e.Gid, Mtime: e.Mtime,
			})

		default:
			return fmt.Errorf("%w: unrepresentable entry kind for %s", clierr.ErrAssembly, e.Path)
		}
	}
}

// ApplyExclusions removes every path matching any of patterns. Patterns
// are compiled with gobwas/glob, giving "*" segment matching and "**"
// across-separator matching for `--exclude`.
func ApplyExclusions(tree *Tree, patterns []glob.Glob) {
	for _, p := range tree.Paths() {
		abs := "/" + p
		for _, pattern := range patterns {
			if pattern.Match(abs) {
				tree.Delete(p)
				break
			}
		}
	}
}

// CompileExclusions compiles user-supplied glob strings with "/" as the
// segment separator, so "*" stops at a path boundary and "**" does not.
func CompileExclusions(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: invalid exclude pattern %q: %v", clierr.ErrUsage, p, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// Injection places one host file into the assembled tree at a guest path.
type Injection struct {
	HostPath  string
	GuestPath string
}

// ApplyInjections adds or overwrites a regular file entry for each
// injection: mode 0755, uid/gid 0 (setuid/setgid bits are not preserved),
// mtime now.
func ApplyInjections(tree *Tree, injections []Injection, area *scratch.Area, now time.Time) error {
	for _, inj := range injections {
		f, err := os.Open(inj.HostPath)
		if err != nil {
			return fmt.Errorf("%w: injecting %s: %v", clierr.ErrIO, inj.HostPath, err)
		}

		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return fmt.Errorf("%w: injecting %s: %v", clierr.ErrIO, inj.HostPath, err)
		}

		payload, err := area.NewPayload(f, fi.Size())
		f.Close()
		if err != nil {
			return fmt.Errorf("%w: injecting %s: %v", clierr.ErrIO, inj.HostPath, err)
		}

		path := pathutil.Clean(inj.GuestPath)
		tree.Set(&Entry{
			Path: path, Kind: KindRegular,
			Mode: 0o755, Uid: 0, Gid: 0, Mtime: now.Unix(),
			Payload: payload,
		})
	}
	return nil
}

// defaultInitScript is installed at /init when the user supplies no init
// override: mount the kernel filesystems, then exec the image's
// entrypoint, falling back to a shell.
const defaultInitScript = `#!/bin/sh
mount -t proc proc /proc 2>/dev/null
mount -t sysfs sysfs /sys 2>/dev/null
mount -t devtmpfs devtmpfs /dev 2>/dev/null

for cmd in /docker-entrypoint.sh /entrypoint.sh /usr/bin/entrypoint.sh; do
    [ -x "$cmd" ] && exec "$cmd"
done

exec /bin/sh
`

// ApplyInit places script at /init, mode 0755 uid/gid 0, replacing any
// prior entry at that path regardless of kind. A nil script installs the
// generated default, so /init exists in every assembled tree.
func ApplyInit(tree *Tree, script []byte, area *scratch.Area, now time.Time) error {
	if script == nil {
		script = []byte(defaultInitScript)
	}
	payload, err := area.NewPayload(bytes.NewReader(script), int64(len(script)))
	if err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	tree.Set(&Entry{
		Path: "init", Kind: KindRegular,
		Mode: 0o755, Uid: 0, Gid: 0, Mtime: now.Unix(),
		Payload: payload,
	})
	return nil
}
