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
	"io"
	"os"
	"path"
	"time"

	"devsync/internal/core"
)

// Buffer-size tiers for the streamed copy. The teacher's transfer.go
// switched a large file to a parallel multipart upload above a size
// threshold; that strategy conflicts with this package's
// single-writer-per-session invariant (spec §4.3), so the threshold
// is kept only as a bigger copy buffer for large files (spec §12.4).
const (
	uploadBufferSize    = 128 * 1024
	largeFileThreshold  = 32 * 1024 * 1024
	largeFileBufferSize = 1024 * 1024
)

// maxUploadAttempts bounds the retry-then-fallback strategy described
// in spec §12.4: a failed attempt is retried a bounded number of
// times before the file is reported lost for this batch.
const maxUploadAttempts = 3

// UploadFile streams localPath to remotePath (resolved relative to the
// virtual cwd if not absolute), creating or truncating the remote
// file with mode 0644. The destination directory is assumed to
// already exist; callers pre-create it via EnsureDirRemoteCached
// (spec §4.3, §5 dispatch order).
func (s *Session) UploadFile(localPath, remotePath string) error {
	resolved := s.canonicalizeRemote(remotePath)

	var lastErr error
	for attempt := 1; attempt <= maxUploadAttempts; attempt++ {
		lastErr = s.uploadOnce(localPath, resolved)
		if lastErr == nil {
			return nil
		}
		if attempt < maxUploadAttempts {
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}
	}
	return lastErr
}

func (s *Session) uploadOnce(localPath, resolved string) error {
	local, err := os.Open(localPath)
	if err != nil {
		return &core.TransferError{Phase: core.PhaseOpenLocal, LocalPath: localPath, RemotePath: resolved, Err: err}
	}
	defer local.Close()

	remote, err := s.sftpClient.OpenFile(resolved, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return &core.TransferError{Phase: core.PhaseOpenRemote, LocalPath: localPath, RemotePath: resolved, Err: err}
	}

	bufSize := uploadBufferSize
	if info, statErr := local.Stat(); statErr == nil && info.Size() >= largeFileThreshold {
		bufSize = largeFileBufferSize
	}
	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(remote, local, buf); err != nil {
		remote.Close()
		return &core.TransferError{Phase: core.PhaseCopy, LocalPath: localPath, RemotePath: resolved, Err: err}
	}

	if err := remote.Close(); err != nil {
		return &core.TransferError{Phase: core.PhaseCloseRemote, LocalPath: localPath, RemotePath: resolved, Err: err}
	}

	if err := s.sftpClient.Chmod(resolved, 0o644); err != nil {
		return &core.TransferError{Phase: core.PhaseCloseRemote, LocalPath: localPath, RemotePath: resolved, Err: err}
	}
	return nil
}

// EnsureFileRemote creates an empty file at remotePath if it does not
// already exist. The parent directory is not created; it must already
// exist on the remote.
func (s *Session) EnsureFileRemote(remotePath string) error {
	resolved := s.canonicalizeRemote(remotePath)
	exists, err := s.HasFileRemote(resolved)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	f, err := s.sftpClient.OpenFile(resolved, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return &core.RemoteFSError{Op: "create", Path: resolved, Err: err}
	}
	return f.Close()
}

// RemoveFileRemote removes a single remote file. Missing files are not
// an error (spec §4.1: a delete racing an earlier delete is a no-op).
func (s *Session) RemoveFileRemote(remotePath string) error {
	resolved := s.canonicalizeRemote(remotePath)
	if err := s.sftpClient.Remove(resolved); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &core.RemoteFSError{Op: "remove", Path: resolved, Err: err}
	}
	return nil
}

// RmrfRemote recursively removes remotePath (file or directory tree)
// and, on success, invalidates every directory-cache entry at or
// beneath it (see invalidateCacheUnder; spec §9 open question,
// resolved: fix -- the original never invalidated the cache here).
func (s *Session) RmrfRemote(remotePath string) error {
	resolved := s.canonicalizeRemote(remotePath)

	info, err := s.sftpClient.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &core.RemoteFSError{Op: "stat", Path: resolved, Err: err}
	}

	if !info.IsDir() {
		if err := s.sftpClient.Remove(resolved); err != nil && !os.IsNotExist(err) {
			return &core.RemoteFSError{Op: "remove", Path: resolved, Err: err}
		}
		s.invalidateCacheUnder(resolved)
		return nil
	}

	walker := s.sftpClient.Walk(resolved)
	var dirs []string
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return &core.RemoteFSError{Op: "walk", Path: walker.Path(), Err: err}
		}
		if walker.Stat().IsDir() {
			dirs = append(dirs, walker.Path())
			continue
		}
		if err := s.sftpClient.Remove(walker.Path()); err != nil && !os.IsNotExist(err) {
			return &core.RemoteFSError{Op: "remove", Path: walker.Path(), Err: err}
		}
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := s.sftpClient.RemoveDirectory(dirs[i]); err != nil && !os.IsNotExist(err) {
			return &core.RemoteFSError{Op: "rmdir", Path: dirs[i], Err: err}
		}
	}

	s.invalidateCacheUnder(resolved)
	return nil
}

// ListRemote lists the immediate entries of a remote directory,
// returning their names only (spec §12.1 supplemented ls operation).
func (s *Session) ListRemote(remotePath string) ([]string, error) {
	resolved := s.canonicalizeRemote(remotePath)
	entries, err := s.sftpClient.ReadDir(resolved)
	if err != nil {
		return nil, &core.RemoteFSError{Op: "readdir", Path: resolved, Err: err}
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// PwdLocal returns the process's current local working directory
// (spec §12.1 supplemented pwd operation, local side).
func PwdLocal() (string, error) {
	return os.Getwd()
}

// ListLocal lists the immediate entries of a local directory.
func ListLocal(localPath string) ([]string, error) {
	entries, err := os.ReadDir(localPath)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// translate computes the remote path for a local file given the
// upload pair's local and remote bases: remote_base ⊕ (local_path ⊖
// local_base). Both inputs are expected already-cleaned absolute
// paths; localPath must lie under localBase (spec §4.2 path
// translation).
func translate(localBase, remoteBase, localPath string) (string, error) {
	rel, err := relUnder(localBase, localPath)
	if err != nil {
		return "", &core.PathError{Kind: core.PathErrPrefixStrip, Path: localPath, Err: err}
	}
	if rel == "." {
		return remoteBase, nil
	}
	return path.Join(remoteBase, filepathToSlash(rel)), nil
}
