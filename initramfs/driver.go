// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package initramfs is the Driver: it composes the registry client, layer
// reader, rootfs assembler, CPIO writer and compressor into one pipeline,
// owns the scratch area's lifetime, and writes the output file via
// tmpfile+atomic-rename so a reader never observes a partial archive, the
// same defer-guarded temp-dir/rename idiom kraftkit.sh/initrd uses around
// its own output file.
package initramfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"golang.org/x/sync/errgroup"

	"coldstart.sh/compress"
	"coldstart.sh/cpio"
	"coldstart.sh/internal/clierr"
	"coldstart.sh/internal/scratch"
	"coldstart.sh/layer"
	"coldstart.sh/log"
	"coldstart.sh/registry"
	"coldstart.sh/rootfs"
)

// prefetchDepth bounds how many layer blob streams may be open and
// decompressing ahead of the assembler's single-consumer application loop,
// per spec.md §5's "bounded prefetch of at most K future layer blob
// streams (K≈2-4)".
const prefetchDepth = 3

// BuildOptions carries every user-facing knob for a build invocation.
type BuildOptions struct {
	Image       string
	Output      string
	Platform    registry.Platform
	Compression compress.Codec
	Injections  []rootfs.Injection
	InitScript  []byte // nil installs the generated default /init
	Excludes    []string
}

// Build runs the full pipeline: resolve the reference, fetch the
// manifest, apply layers in manifest order (prefetching blob downloads up
// to prefetchDepth ahead of the single-consumer application loop),
// superimpose exclusions, injections and the init override (a generated
// default when none is supplied, so /init always exists), then stream
// the assembled tree through the CPIO writer and the chosen compressor
// into a temp file that is renamed onto opts.Output only on success.
func Build(ctx context.Context, client *registry.Client, opts BuildOptions) error {
	ref, err := registry.ParseReference(opts.Image)
	if err != nil {
		return err
	}

	excludes, err := rootfs.CompileExclusions(opts.Excludes)
	if err != nil {
		return err
	}

	manifest, err := client.FetchManifest(ctx, ref, opts.Platform)
	if err != nil {
		return err
	}

	resolvedRef, err := registry.ResolvedReference(ref, manifest)
	if err != nil {
		return err
	}

	img, err := client.Image(ctx, resolvedRef)
	if err != nil {
		return err
	}

	area, err := scratch.Acquire()
	if err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	defer area.Close()

	tree := rootfs.NewTree()
	if err := applyLayers(ctx, client, resolvedRef, img, manifest, tree, area); err != nil {
		return err
	}

	rootfs.ApplyExclusions(tree, excludes)

	now := time.Now()
	if err := rootfs.ApplyInjections(tree, opts.Injections, area, now); err != nil {
		return err
	}
	if err := rootfs.ApplyInit(tree, opts.InitScript, area, now); err != nil {
		return err
	}
	tree.SynthesizeDirectories()

	log.G(ctx).WithField("entries", tree.Len()).Debug("assembled tree, emitting archive")

	return writeOutput(opts.Output, opts.Compression, tree)
}

// layerFetch is the result of opening one layer's blob stream: either an
// already-decompressed tar stream or the error that occurred opening it.
type layerFetch struct {
	rc  io.ReadCloser
	err error
}

// applyLayers prefetches up to prefetchDepth layer blob streams ahead of
// the single-consumer application loop below. Fetches run concurrently;
// layer i may only be opened once the loop has taken layer
// i-prefetchDepth, so no more than prefetchDepth streams wait ahead of the
// one being applied. The loop always drains
// results[i] before results[i+1], so layer application itself is strictly
// sequential and matches manifest order regardless of download completion
// order. An error — from a fetch or from applying an entry — cancels the
// shared context so remaining in-flight fetches abort rather than run to
// completion for data nobody will consume.
func applyLayers(ctx context.Context, client *registry.Client, ref *registry.Reference, img v1.Image, manifest *registry.Manifest, tree *rootfs.Tree, area *scratch.Area) error {
	n := len(manifest.Layers)
	if n == 0 {
		return nil
	}

	gctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(gctx)
	// released[i] is closed once layer i may be opened: the first
	// prefetchDepth up front, then one more each time the loop takes a layer.
	released := make([]chan struct{}, n)
	results := make([]chan layerFetch, n)
	for i := range results {
		released[i] = make(chan struct{})
		results[i] = make(chan layerFetch, 1)
		if i < prefetchDepth {
			close(released[i])
		}
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-released[i]:
			case <-gctx.Done():
				results[i] <- layerFetch{err: gctx.Err()}
				return gctx.Err()
			}

			rc, err := client.StreamLayer(gctx, ref, img, manifest.Layers[i])
			results[i] <- layerFetch{rc: rc, err: err}
			return err
		})
	}

	var consumeErr error
	for i := 0; i < n; i++ {
		fetch := <-results[i]
		if next := i + prefetchDepth; next < n {
			close(released[next])
		}
		if consumeErr != nil {
			if fetch.rc != nil {
				fetch.rc.Close()
			}
			continue
		}
		if fetch.err != nil {
			consumeErr = fetch.err
			cancel()
			continue
		}

		r := layer.NewReader(fetch.rc)
		if err := rootfs.ApplyLayer(tree, r, area); err != nil {
			consumeErr = err
			cancel()
		}
		fetch.rc.Close()
	}

	_ = g.Wait()
	return consumeErr
}

// writeOutput serialises tree as CPIO, compresses it with codec, and
// commits it to path via tmpfile+rename: the file at path either does not
// exist or is the complete archive, never a partial one.
func writeOutput(path string, codec compress.Codec, tree *rootfs.Tree) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".coldstart-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	cw, err := compress.NewWriter(tmp, codec)
	if err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}

	if err = cpio.WriteTree(cw, tree); err != nil {
		return err
	}
	if err = cw.Close(); err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	return nil
}
