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
	"os"
	"path"
	"strings"

	"devsync/internal/core"
)

// HasDirRemote reports whether path exists on the remote and is a
// directory. A non-existent path reports (false, nil); any other stat
// failure is returned as an error (spec §4.3 tri-state existence
// check).
func (s *Session) HasDirRemote(remotePath string) (bool, error) {
	resolved := s.canonicalizeRemote(remotePath)
	info, err := s.sftpClient.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &core.RemoteFSError{Op: "stat", Path: resolved, Err: err}
	}
	return info.IsDir(), nil
}

// HasFileRemote reports whether path exists on the remote and is a
// regular file.
func (s *Session) HasFileRemote(remotePath string) (bool, error) {
	resolved := s.canonicalizeRemote(remotePath)
	info, err := s.sftpClient.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &core.RemoteFSError{Op: "stat", Path: resolved, Err: err}
	}
	return info.Mode().IsRegular(), nil
}

// EnsureDirRemote creates remotePath and every missing ancestor,
// uncached. A relative remotePath is first joined onto the virtual
// cwd; the walk then always starts at the filesystem root "/" -- this
// fixes a bug present in the original implementation, which derived
// the starting point by popping the first path component off an
// absolute path instead of anchoring at root, silently losing leading
// segments on some inputs (spec §9 open question, resolved: fix).
func (s *Session) EnsureDirRemote(remotePath string) error {
	resolved := s.canonicalizeRemote(remotePath)
	return s.mkdirAllFrom(resolved, nil)
}

// EnsureDirRemoteCached behaves like EnsureDirRemote but consults and
// updates this session's directory-existence cache, so repeated
// requests for the same or nested paths within one session's lifetime
// only touch the wire for the novel suffix (spec §4.3 cached
// recursive mkdir-p). The cache assumes this session is the sole
// writer to the paths it caches; concurrent external mutation of the
// remote tree is out of scope (spec §9).
func (s *Session) EnsureDirRemoteCached(remotePath string) error {
	resolved := s.canonicalizeRemote(remotePath)
	if _, ok := s.dirCache[resolved]; ok {
		return nil
	}
	if err := s.mkdirAllFrom(resolved, s.dirCache); err != nil {
		return err
	}
	return nil
}

// mkdirAllFrom walks every ancestor of resolved (an already-absolute,
// cleaned remote path) from root downward, issuing Mkdir (mode 0755,
// per spec §4.3) for any segment missing on the wire, and recording
// each confirmed-present segment into cache (when non-nil) as it goes.
func (s *Session) mkdirAllFrom(resolved string, cache map[string]struct{}) error {
	resolved = path.Clean(resolved)
	if resolved == "/" || resolved == "." {
		return nil
	}

	segments := strings.Split(strings.TrimPrefix(resolved, "/"), "/")
	current := "/"
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		current = path.Join(current, seg)

		if cache != nil {
			if _, ok := cache[current]; ok {
				continue
			}
		}

		info, err := s.sftpClient.Stat(current)
		switch {
		case err == nil:
			if !info.IsDir() {
				return &core.RemoteFSError{Op: "mkdir", Path: current, Err: fmt.Errorf("exists and is not a directory")}
			}
		case os.IsNotExist(err):
			if mkErr := s.sftpClient.Mkdir(current); mkErr != nil {
				if !os.IsExist(mkErr) {
					return &core.RemoteFSError{Op: "mkdir", Path: current, Err: mkErr}
				}
			} else if chErr := s.sftpClient.Chmod(current, 0o755); chErr != nil {
				return &core.RemoteFSError{Op: "chmod", Path: current, Err: chErr}
			}
		default:
			return &core.RemoteFSError{Op: "stat", Path: current, Err: err}
		}

		if cache != nil {
			cache[current] = struct{}{}
		}
	}
	return nil
}

// invalidateCacheUnder drops removedPath and every cache entry nested
// beneath it. The original implementation never did this: after an
// rmrf, its directory cache kept believing the removed tree still
// existed, so a subsequent upload into the same path skipped
// recreating it and the transfer failed against a missing directory
// (spec §9 open question, resolved: fix).
func (s *Session) invalidateCacheUnder(removedPath string) {
	removedPath = path.Clean(removedPath)
	prefix := removedPath + "/"
	for cached := range s.dirCache {
		if cached == removedPath || strings.HasPrefix(cached, prefix) {
			delete(s.dirCache, cached)
		}
	}
}
