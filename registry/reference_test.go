// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package registry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstart.sh/internal/clierr"
	"coldstart.sh/registry"
)

func TestParseReferenceBareNameDefaultsToDockerHub(t *testing.T) {
	ref, err := registry.ParseReference("python:3.12-alpine")
	require.NoError(t, err)
	assert.Equal(t, "registry-1.docker.io", ref.Registry)
	assert.Equal(t, "library/python", ref.Repository)
	assert.Equal(t, "3.12-alpine", ref.Tag)
	assert.False(t, ref.IsDigest())
}

func TestParseReferenceNoTagDefaultsToLatest(t *testing.T) {
	ref, err := registry.ParseReference("alpine")
	require.NoError(t, err)
	assert.Equal(t, "latest", ref.Tag)
	assert.Equal(t, "library/alpine", ref.Repository)
}

func TestParseReferenceCustomRegistry(t *testing.T) {
	ref, err := registry.ParseReference("ghcr.io/user/repo:v1")
	require.NoError(t, err)
	assert.Equal(t, "ghcr.io", ref.Registry)
	assert.Equal(t, "user/repo", ref.Repository)
	assert.Equal(t, "v1", ref.Tag)
}

func TestParseReferenceDigest(t *testing.T) {
	const digest = "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	ref, err := registry.ParseReference("alpine@" + digest)
	require.NoError(t, err)
	assert.True(t, ref.IsDigest())
	assert.Equal(t, "library/alpine", ref.Repository)
}

func TestParseReferenceEmptyIsUsageError(t *testing.T) {
	_, err := registry.ParseReference("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, clierr.ErrUsage))
}

func TestParseReferenceLocalhost(t *testing.T) {
	ref, err := registry.ParseReference("localhost:5000/myimage:latest")
	require.NoError(t, err)
	assert.Equal(t, "localhost:5000", ref.Registry)
	assert.Equal(t, "myimage", ref.Repository)
}
