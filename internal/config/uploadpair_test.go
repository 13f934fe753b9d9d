/*
 * Copyright 2026 The FileRipper Team
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUploadPair(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		wantSource string
		wantTarget string
		wantErr    bool
	}{
		{name: "relative source only", raw: "playground", wantSource: "playground", wantTarget: "playground"},
		{name: "relative with target", raw: "playground:remote/dir", wantSource: "playground", wantTarget: "remote/dir"},
		{name: "target is cwd marker", raw: "playground:.", wantSource: "playground", wantTarget: "."},
		{name: "whitespace trimmed", raw: " playground : remote ", wantSource: "playground", wantTarget: "remote"},
		{name: "absolute source requires target", raw: "/abs/src", wantErr: true},
		{name: "absolute source with target", raw: "/abs/src:/abs/dst", wantSource: "/abs/src", wantTarget: "/abs/dst"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair, err := ParseUploadPair(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSource, pair.Source)
			assert.Equal(t, tc.wantTarget, pair.Target)
		})
	}
}

func TestNewUploadPairAbsoluteSourceNoTarget(t *testing.T) {
	_, err := NewUploadPair("/abs/src", "")
	require.Error(t, err)
}
