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

import (
	"fmt"
	"path/filepath"
	"strings"
)

// relUnder returns localPath's path relative to base, using the local
// OS separator, rejecting any result that escapes base via "..".
func relUnder(base, localPath string) (string, error) {
	rel, err := filepath.Rel(base, localPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is not under base %q", localPath, base)
	}
	return rel, nil
}

func filepathToSlash(p string) string {
	return filepath.ToSlash(p)
}

// Translate computes the remote path for localPath given the upload
// pair's local and remote bases (spec §4.2). Exported for use by the
// dispatcher, which holds the bases once per upload pair rather than
// per session.
func Translate(localBase, remoteBase, localPath string) (string, error) {
	return translate(localBase, remoteBase, localPath)
}
