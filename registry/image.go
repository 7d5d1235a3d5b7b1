// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

import (
	"context"
	"fmt"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"coldstart.sh/internal/clierr"
)

// Image resolves ref (already pinned to a single-platform manifest digest
// by FetchManifest, when the original reference named an index) to the
// v1.Image used to open individual layer blobs.
func (c *Client) Image(ctx context.Context, ref *Reference) (v1.Image, error) {
	var img v1.Image
	err := withRetry(ctx, func() error {
		var err error
		img, err = remote.Image(ref.named, c.remoteOpts(ctx)...)
		return err
	})
	if err != nil {
		return nil, wrapRemoteErr(err, ref)
	}
	return img, nil
}

// ResolvedReference re-derives the Reference FetchManifest actually read
// from (digest-pinned, if the original named an index), so Image() opens
// the exact manifest that was inspected rather than re-resolving a tag that
// may have moved between the two requests.
func ResolvedReference(ref *Reference, manifest *Manifest) (*Reference, error) {
	if ref.IsDigest() && ref.Digest == manifest.Digest {
		return ref, nil
	}
	resolved, err := ref.withDigest(manifest.Digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clierr.ErrIO, err)
	}
	return resolved, nil
}
