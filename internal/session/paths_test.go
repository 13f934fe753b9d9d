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

func TestTranslate(t *testing.T) {
	cases := []struct {
		name       string
		localBase  string
		remoteBase string
		localPath  string
		want       string
		wantErr    bool
	}{
		{name: "base itself", localBase: "/home/u/proj", remoteBase: "/srv/app", localPath: "/home/u/proj", want: "/srv/app"},
		{name: "nested file", localBase: "/home/u/proj", remoteBase: "/srv/app", localPath: "/home/u/proj/src/main.go", want: "/srv/app/src/main.go"},
		{name: "nested dir", localBase: "/home/u/proj", remoteBase: "/srv/app", localPath: "/home/u/proj/assets/img", want: "/srv/app/assets/img"},
		{name: "outside base", localBase: "/home/u/proj", remoteBase: "/srv/app", localPath: "/home/u/other/file", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Translate(tc.localBase, tc.remoteBase, tc.localPath)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got result %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Translate(%q, %q, %q) = %q, want %q", tc.localBase, tc.remoteBase, tc.localPath, got, tc.want)
			}
		})
	}
}

func TestRelUnderRejectsEscape(t *testing.T) {
	if _, err := relUnder("/a/b", "/a/c/file"); err == nil {
		t.Fatal("expected error for path outside base")
	}
	if got, err := relUnder("/a/b", "/a/b/c/file"); err != nil || got != "c/file" {
		t.Fatalf("relUnder = %q, %v; want \"c/file\", nil", got, err)
	}
}
