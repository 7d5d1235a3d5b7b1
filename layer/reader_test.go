// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package layer_test

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"coldstart.sh/layer"
)

func buildTar(t *testing.T, entries []*tar.Header, bodies []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for i, hdr := range entries {
		require.NoError(t, tw.WriteHeader(hdr))
		if i < len(bodies) && bodies[i] != "" {
			_, err := tw.Write([]byte(bodies[i]))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func drain(t *testing.T, data []byte) []*layer.Entry {
	t.Helper()
	r := layer.NewReader(bytes.NewReader(data))
	var out []*layer.Entry
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestReaderClassifiesRegularDirSymlink(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "a/", Typeflag: tar.TypeDir, Mode: 0o755},
		{Name: "a/file", Typeflag: tar.TypeReg, Mode: 0o644, Size: 5},
		{Name: "a/link", Typeflag: tar.TypeSymlink, Linkname: "file"},
	}, []string{"", "hello", ""})

	entries := drain(t, data)
	require.Len(t, entries, 3)
	require.Equal(t, layer.KindDir, entries[0].Kind)
	require.Equal(t, "a", entries[0].Path)
	require.Equal(t, layer.KindRegular, entries[1].Kind)
	require.Equal(t, "a/file", entries[1].Path)
	require.Equal(t, layer.KindSymlink, entries[2].Kind)
	require.Equal(t, "file", entries[2].LinkTarget)
}

func TestReaderDetectsWhiteout(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "a/.wh.b", Typeflag: tar.TypeReg, Mode: 0o644},
	}, nil)

	entries := drain(t, data)
	require.Len(t, entries, 1)
	require.Equal(t, layer.KindWhiteout, entries[0].Kind)
	require.Equal(t, "a/b", entries[0].Path)
}

func TestReaderDetectsOpaqueWhiteout(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "a/.wh..wh..opq", Typeflag: tar.TypeReg, Mode: 0o644},
	}, nil)

	entries := drain(t, data)
	require.Len(t, entries, 1)
	require.Equal(t, layer.KindOpaqueWhiteout, entries[0].Kind)
	require.Equal(t, "a", entries[0].Path)
}

func TestReaderHardLink(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "a", Typeflag: tar.TypeReg, Mode: 0o644, Size: 1},
		{Name: "b", Typeflag: tar.TypeLink, Linkname: "a"},
	}, []string{"x", ""})

	entries := drain(t, data)
	require.Len(t, entries, 2)
	require.Equal(t, layer.KindHardLink, entries[1].Kind)
	require.Equal(t, "a", entries[1].LinkTarget)
}

func TestReaderHardLinkWithoutTargetIsMalformed(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "b", Typeflag: tar.TypeLink, Linkname: ""},
	}, nil)

	r := layer.NewReader(bytes.NewReader(data))
	_, err := r.Next()
	require.True(t, layer.IsMalformed(err))
}

func TestReaderDeviceNodes(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "dev/null", Typeflag: tar.TypeChar, Mode: 0o666, Devmajor: 1, Devminor: 3},
		{Name: "dev/loop0", Typeflag: tar.TypeBlock, Mode: 0o660, Devmajor: 7, Devminor: 0},
	}, nil)

	entries := drain(t, data)
	require.Len(t, entries, 2)
	require.Equal(t, layer.KindCharDevice, entries[0].Kind)
	require.EqualValues(t, 1, entries[0].Devmajor)
	require.EqualValues(t, 3, entries[0].Devminor)
	require.Equal(t, layer.KindBlockDevice, entries[1].Kind)
}

func TestReaderPAXLongPathAndLinkname(t *testing.T) {
	longPath := "a/" + string(bytes.Repeat([]byte("x"), 200)) + "/file"
	longTarget := "/opt/" + string(bytes.Repeat([]byte("y"), 200)) + "/target"
	data := buildTar(t, []*tar.Header{
		{Name: longPath, Typeflag: tar.TypeReg, Mode: 0o644, Size: 0},
		{Name: "a/link", Typeflag: tar.TypeSymlink, Linkname: longTarget},
	}, nil)

	entries := drain(t, data)
	require.Len(t, entries, 2)
	require.Equal(t, longPath, entries[0].Path)
	require.Equal(t, longTarget, entries[1].LinkTarget)
}

func TestReaderUnsupportedTypeflagIsMalformed(t *testing.T) {
	data := buildTar(t, []*tar.Header{
		{Name: "weird", Typeflag: 'Z', Mode: 0o644},
	}, nil)

	r := layer.NewReader(bytes.NewReader(data))
	_, err := r.Next()
	require.True(t, layer.IsMalformed(err))
}
