// Copyright (c) 2015-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNormalizeSemString ensures characters outside the semantic versioning
// alphabets are stripped.
func TestNormalizeSemString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		alphabet string
		want     string
	}{
		{"beta", semanticAlphabet, "beta"},
		{"beta.1", semanticAlphabet, "beta1"},
		{"beta.1", semanticBuildAlphabet, "beta.1"},
		{"a+b_c", semanticBuildAlphabet, "abc"},
		{"", semanticAlphabet, ""},
	}

	for _, test := range tests {
		require.Equal(t, test.want, normalizeSemString(test.in,
			test.alphabet), test.in)
	}
}

// TestString ensures the default version string is well formed.
func TestString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.1.0-beta+dev", String())
}
