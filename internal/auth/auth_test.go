// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/stretchr/testify/require"

	"coldstart.sh/internal/auth"
)

func TestResolveAnonymousWithoutEnv(t *testing.T) {
	t.Setenv("REGISTRY_USER", "")
	t.Setenv("REGISTRY_PASSWORD", "")
	t.Setenv("REGISTRY_AUTH_FILE", "")

	got, err := auth.Resolve("registry-1.docker.io")
	require.NoError(t, err)
	require.Equal(t, authn.Anonymous, got)
}

func TestResolveFromEnvVars(t *testing.T) {
	t.Setenv("REGISTRY_AUTH_FILE", "")
	t.Setenv("REGISTRY_USER", "alice")
	t.Setenv("REGISTRY_PASSWORD", "hunter2")

	got, err := auth.Resolve("registry-1.docker.io")
	require.NoError(t, err)

	cfg, err := got.Authorization()
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.Username)
	require.Equal(t, "hunter2", cfg.Password)
}

func TestResolveFromAuthFileTakesPrecedenceForListedHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"ghcr.io": {"username": "bob", "password": "s3cret"}
	}`), 0o600))

	t.Setenv("REGISTRY_AUTH_FILE", path)
	t.Setenv("REGISTRY_USER", "ignored")
	t.Setenv("REGISTRY_PASSWORD", "ignored")

	got, err := auth.Resolve("ghcr.io")
	require.NoError(t, err)

	cfg, err := got.Authorization()
	require.NoError(t, err)
	require.Equal(t, "bob", cfg.Username)
	require.Equal(t, "s3cret", cfg.Password)
}

func TestResolveFromAuthFileFallsBackToEnvForUnlistedHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"ghcr.io": {"username": "bob", "password": "s3cret"}
	}`), 0o600))

	t.Setenv("REGISTRY_AUTH_FILE", path)
	t.Setenv("REGISTRY_USER", "alice")
	t.Setenv("REGISTRY_PASSWORD", "hunter2")

	got, err := auth.Resolve("registry-1.docker.io")
	require.NoError(t, err)

	cfg, err := got.Authorization()
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.Username)
}
