// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2025, The Coldstart Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package pathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coldstart.sh/internal/pathutil"
)

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "."},
		{"/", "."},
		{"a", "a"},
		{"/a", "a"},
		{"a/b", "a/b"},
		{"/a/b/", "a/b"},
		{"a//b", "a/b"},
		{"./a/b", "a/b"},
		{"a/../b", "b"},
		{"../a", "a"},
		{"a/./b", "a/b"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, pathutil.Clean(c.in), "Clean(%q)", c.in)
	}
}

func TestDir(t *testing.T) {
	assert.Equal(t, ".", pathutil.Dir("a"))
	assert.Equal(t, "a", pathutil.Dir("a/b"))
	assert.Equal(t, "a/b", pathutil.Dir("a/b/c"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a/b", pathutil.Join("a", "b"))
	assert.Equal(t, "a/b", pathutil.Join("/a/", "/b/"))
	assert.Equal(t, "b", pathutil.Join(".", "b"))
}

func TestHasPrefixDir(t *testing.T) {
	assert.True(t, pathutil.HasPrefixDir("a/b", "a"))
	assert.True(t, pathutil.HasPrefixDir("a/b/c", "a"))
	assert.False(t, pathutil.HasPrefixDir("a", "a"))
	assert.False(t, pathutil.HasPrefixDir("ab", "a"))
	assert.True(t, pathutil.HasPrefixDir("a", "."))
	assert.False(t, pathutil.HasPrefixDir(".", "."))
}
