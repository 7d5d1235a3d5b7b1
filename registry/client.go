// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package registry resolves an image reference, selects a manifest by
// platform from a multi-platform index, and streams layer blobs with digest
// verification. Transport, TLS, and the bearer-token handshake are
// delegated to github.com/google/go-containerregistry/pkg/v1/remote.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"

	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/google/go-containerregistry/pkg/authn"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/google/go-containerregistry/pkg/v1/types"

	"coldstart.sh/internal/clierr"
	"coldstart.sh/log"
)

// Client fetches manifests and layer blobs from an OCI/Docker registry.
type Client struct {
	auth authn.Authenticator
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAuthenticator sets the credential source used for the bearer-token
// handshake. When unset, the client uses authn.Anonymous: the handshake
// runs without credentials and no default keychain is consulted, since
// credential resolution is internal/auth's job via this option.
func WithAuthenticator(a authn.Authenticator) ClientOption {
	return func(c *Client) { c.auth = a }
}

// NewClient builds a registry Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{auth: authn.Anonymous}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) remoteOpts(ctx context.Context) []remote.Option {
	return []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuth(c.auth),
	}
}

// FetchManifest resolves ref to a single-platform Manifest. If ref names an
// index, the entry matching platform is selected and re-fetched by digest;
// if no entry matches, ErrPlatformNotFound is returned without downloading
// any blob. A 404 on the manifest surfaces ErrReferenceNotFound.
func (c *Client) FetchManifest(ctx context.Context, ref *Reference, platform Platform) (*Manifest, error) {
	log.G(ctx).WithField("image", ref.String()).Debug("fetching manifest")

	var desc *remote.Descriptor
	err := withRetry(ctx, func() error {
		var err error
		desc, err = remote.Get(ref.named, c.remoteOpts(ctx)...)
		return err
	})
	if err != nil {
		return nil, wrapRemoteErr(err, ref)
	}

	if desc.MediaType.IsIndex() {
		idx, err := desc.ImageIndex()
		if err != nil {
			return nil, fmt.Errorf("%w: decode index: %v", clierr.ErrIO, err)
		}
		im, err := idx.IndexManifest()
		if err != nil {
			return nil, fmt.Errorf("%w: decode index manifest: %v", clierr.ErrIO, err)
		}

		var picked *v1.Descriptor
		for i := range im.Manifests {
			if platform.matches(im.Manifests[i].Platform) {
				picked = &im.Manifests[i]
				break
			}
		}
		if picked == nil {
			return nil, fmt.Errorf("%w: no manifest for %s/%s in index",
				clierr.ErrPlatformNotFound, platform.OS, platform.Architecture)
		}

		platformRef, err := ref.withDigest(picked.Digest.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", clierr.ErrIO, err)
		}

		err = withRetry(ctx, func() error {
			var err error
			desc, err = remote.Get(platformRef.named, c.remoteOpts(ctx)...)
			return err
		})
		if err != nil {
			return nil, wrapRemoteErr(err, platformRef)
		}
	}

	img, err := desc.Image()
	if err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", clierr.ErrIO, err)
	}

	raw, err := img.Manifest()
	if err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", clierr.ErrIO, err)
	}

	layers := make([]LayerDescriptor, 0, len(raw.Layers))
	for _, l := range raw.Layers {
		layers = append(layers, LayerDescriptor{
			Digest:    l.Digest.String(),
			MediaType: toLayerMediaType(l.MediaType),
			Size:      l.Size,
		})
	}

	return &Manifest{
		Digest:       desc.Digest.String(),
		ConfigDigest: raw.Config.Digest.String(),
		Layers:       layers,
	}, nil
}

// StreamLayer opens the blob for layer and returns an already-decompressed
// tar stream. The returned ReadCloser verifies the descriptor digest
// against the compressed bytes as they are read; a mismatch surfaces once
// the caller drains the stream to EOF (or on Close, whichever comes last).
func (c *Client) StreamLayer(ctx context.Context, ref *Reference, img v1.Image, layer LayerDescriptor) (io.ReadCloser, error) {
	h, err := v1.NewHash(layer.Digest)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid layer digest %q: %v", clierr.ErrIO, layer.Digest, err)
	}

	var l v1.Layer
	err = withRetry(ctx, func() error {
		var err error
		l, err = img.LayerByDigest(h)
		return err
	})
	if err != nil {
		return nil, wrapRemoteErr(err, ref)
	}

	var compressed io.ReadCloser
	err = withRetry(ctx, func() error {
		var err error
		compressed, err = l.Compressed()
		return err
	})
	if err != nil {
		return nil, wrapRemoteErr(err, ref)
	}

	verifying := &verifyingReadCloser{
		rc:       compressed,
		digester: digest.Canonical.Digester(),
		want:     digest.Digest(layer.Digest),
	}

	return decompress(verifying, layer.MediaType)
}

// toLayerMediaType classifies the wire media type by the OCI image-spec
// constant family (falling back to the Docker distribution equivalent for
// the one case image-spec has no constant for), the same family
// kraftkit.sh/oci/mediatypes.go extends for its own layer media types.
func toLayerMediaType(mt types.MediaType) LayerMediaType {
	switch string(mt) {
	case string(ocispec.MediaTypeImageLayerZstd):
		return MediaTypeTarZstd
	case string(ocispec.MediaTypeImageLayer), string(types.DockerUncompressedLayer):
		return MediaTypeTar
	default:
		return MediaTypeTarGzip
	}
}

func wrapRemoteErr(err error, ref *Reference) error {
	var terr *transport.Error
	if errors.As(err, &terr) {
		switch terr.StatusCode {
		case 404:
			return fmt.Errorf("%w: %s: %v", clierr.ErrReferenceNotFound, ref.String(), err)
		case 401:
			return fmt.Errorf("%w: %s: %v", clierr.ErrAuth, ref.String(), err)
		}
	}
	return fmt.Errorf("%w: %s: %v", clierr.ErrIO, ref.String(), err)
}
