// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"

	"coldstart.sh/internal/clierr"
)

// Reference identifies one image on one registry: a registry host, a
// repository path, and either a tag or a content digest.
type Reference struct {
	Registry   string
	Repository string
	Tag        string
	Digest     string

	// named is the go-containerregistry reference used to drive the actual
	// HTTP traffic; transport, TLS and the bearer-token handshake are its
	// responsibility, not ours.
	named name.Reference
}

// ParseReference resolves an image string such as "python:3.12-alpine",
// "ghcr.io/user/repo:v1" or "repo@sha256:...." into a Reference, applying
// the Docker Hub conventions: a bare name defaults to registry-1.docker.io
// and is prefixed with "library/" when it carries no slash, and a
// tag-and-digest-less reference defaults to the "latest" tag.
func ParseReference(image string) (*Reference, error) {
	if image == "" {
		return nil, fmt.Errorf("%w: empty image reference", clierr.ErrUsage)
	}

	named, err := name.ParseReference(image, name.WithDefaultRegistry(name.DefaultRegistry))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", clierr.ErrUsage, image, err)
	}

	ref := &Reference{
		Registry:   named.Context().RegistryStr(),
		Repository: named.Context().RepositoryStr(),
		named:      named,
	}
	// go-containerregistry names Docker Hub "index.docker.io"; the
	// Reference carries Docker Hub's registry API host instead.
	if ref.Registry == name.DefaultRegistry {
		ref.Registry = "registry-1.docker.io"
	}

	switch t := named.(type) {
	case name.Tag:
		ref.Tag = t.TagStr()
	case name.Digest:
		ref.Digest = t.DigestStr()
	}

	return ref, nil
}

// String renders the canonical form of the reference.
func (r *Reference) String() string {
	if r.Digest != "" {
		return fmt.Sprintf("%s/%s@%s", r.Registry, r.Repository, r.Digest)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// IsDigest reports whether the reference pins an exact content digest,
// bypassing tag resolution.
func (r *Reference) IsDigest() bool {
	return r.Digest != ""
}

// withDigest returns a copy of the reference pinned to the given digest,
// used after an index lookup resolves a platform to a concrete manifest.
func (r *Reference) withDigest(digest string) (*Reference, error) {
	d, err := name.NewDigest(fmt.Sprintf("%s/%s@%s", r.Registry, r.Repository, digest))
	if err != nil {
		return nil, err
	}
	return &Reference{
		Registry:   r.Registry,
		Repository: r.Repository,
		Digest:     digest,
		named:      d,
	}, nil
}
