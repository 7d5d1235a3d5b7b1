// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package scratch_test

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"coldstart.sh/internal/scratch"
)

func TestNewPayloadSmallStaysInMemory(t *testing.T) {
	area, err := scratch.Acquire()
	require.NoError(t, err)
	defer area.Close()

	content := "small payload"
	p, err := area.NewPayload(strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), p.Size())

	rc, err := p.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, content, string(got))

	files, err := os.ReadDir(area.Path())
	require.NoError(t, err)
	require.Empty(t, files, "a small payload must not create a scratch file")
}

func TestNewPayloadReplayableMultipleTimes(t *testing.T) {
	area, err := scratch.Acquire()
	require.NoError(t, err)
	defer area.Close()

	p, err := area.NewPayload(strings.NewReader("abc"), 3)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rc, err := p.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "abc", string(got))
		require.NoError(t, rc.Close())
	}
}

func TestNewPayloadLargeSpillsToScratchFile(t *testing.T) {
	area, err := scratch.Acquire()
	require.NoError(t, err)
	defer area.Close()

	size := int64(scratch.InMemoryThreshold) + 1
	data := strings.NewReader(strings.Repeat("x", int(size)))

	p, err := area.NewPayload(data, size)
	require.NoError(t, err)
	require.Equal(t, size, p.Size())

	files, err := os.ReadDir(area.Path())
	require.NoError(t, err)
	require.Len(t, files, 1, "a payload over the threshold must be written to a scratch file")

	rc, err := p.Open()
	require.NoError(t, err)
	defer rc.Close()
	n, err := io.Copy(io.Discard, rc)
	require.NoError(t, err)
	require.Equal(t, size, n)
}

func TestAreaCloseRemovesScratchDirectory(t *testing.T) {
	area, err := scratch.Acquire()
	require.NoError(t, err)

	size := int64(scratch.InMemoryThreshold) + 1
	_, err = area.NewPayload(strings.NewReader(strings.Repeat("y", int(size))), size)
	require.NoError(t, err)

	dir := area.Path()
	require.NoError(t, area.Close())

	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr))
}
