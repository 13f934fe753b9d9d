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

package session

import "testing"

func newTestSession(cwd string) *Session {
	return &Session{remoteCwd: cwd, dirCache: make(map[string]struct{})}
}

func TestCanonicalizeRemote(t *testing.T) {
	s := newTestSession("/srv/app")

	cases := []struct {
		in, want string
	}{
		{"relative/path", "/srv/app/relative/path"},
		{"/abs/path", "/abs/path"},
		{".", "/srv/app"},
		{"../sibling", "/srv/sibling"},
	}

	for _, tc := range cases {
		if got := s.canonicalizeRemote(tc.in); got != tc.want {
			t.Errorf("canonicalizeRemote(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeRemoteEmptyCwd(t *testing.T) {
	s := newTestSession("")
	if got := s.canonicalizeRemote("foo"); got != "foo" {
		t.Errorf("canonicalizeRemote(%q) with empty cwd = %q, want %q", "foo", got, "foo")
	}
}

func TestInvalidateCacheUnder(t *testing.T) {
	s := newTestSession("/srv/app")
	s.dirCache["/srv/app/out"] = struct{}{}
	s.dirCache["/srv/app/out/nested"] = struct{}{}
	s.dirCache["/srv/app/out-sibling"] = struct{}{}
	s.dirCache["/srv/app/keep"] = struct{}{}

	s.invalidateCacheUnder("/srv/app/out")

	if _, ok := s.dirCache["/srv/app/out"]; ok {
		t.Error("expected removed path itself to be evicted")
	}
	if _, ok := s.dirCache["/srv/app/out/nested"]; ok {
		t.Error("expected nested descendant to be evicted")
	}
	if _, ok := s.dirCache["/srv/app/out-sibling"]; !ok {
		t.Error("sibling with shared prefix must survive eviction")
	}
	if _, ok := s.dirCache["/srv/app/keep"]; !ok {
		t.Error("unrelated cache entry must survive eviction")
	}
}
