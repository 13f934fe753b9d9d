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

// Package session owns one authenticated SFTP session: the
// transport handle, the virtual remote working directory kept
// in-process (the protocol itself has none), and the per-session
// remote-directory cache (spec §4.3).
package session

import (
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"devsync/internal/config"
	"devsync/internal/core"
)

// Session is a single authenticated SFTP session. It is owned
// exclusively by one worker at a time; Lock/Unlock gate access so a
// worker can hold it for the duration of a chunk (spec §3, §5).
type Session struct {
	Name     string
	host     string
	port     uint16
	username string
	auth     config.AuthMethod

	mu sync.Mutex

	sshClient  *ssh.Client
	sftpClient *sftp.Client

	remoteCwd string
	dirCache  map[string]struct{}
	closed    bool
}

// New prepares a Session; it does not connect yet.
func New(name, host string, port uint16, username string, auth config.AuthMethod) *Session {
	return &Session{
		Name:     name,
		host:     host,
		port:     port,
		username: username,
		auth:     auth,
		dirCache: make(map[string]struct{}),
	}
}

// Lock acquires the session's exclusive mutex. Callers must hold it
// for the duration of a chunk's work (spec §5).
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's exclusive mutex.
func (s *Session) Unlock() { s.mu.Unlock() }

// Connect opens the TCP connection, performs the SSH handshake,
// authenticates, opens the SFTP subsystem, and seeds the virtual
// remote cwd from the server's realpath for "." (spec §4.3 Connect).
// No transport compression is negotiated. Any step failing is fatal
// to this session.
func (s *Session) Connect() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	authMethods, err := buildAuthMethods(s.auth)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrAuthFailed, err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            s.username,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	sshClient, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrConnectionFailed, err)
	}

	sftpClient, err := sftp.NewClient(sshClient, sftp.UseConcurrentWrites(true))
	if err != nil {
		sshClient.Close()
		return fmt.Errorf("%w: %v", core.ErrConnectionFailed, err)
	}

	cwd, err := sftpClient.RealPath(".")
	if err != nil {
		sftpClient.Close()
		sshClient.Close()
		return fmt.Errorf("%w: failed to resolve initial remote cwd: %v", core.ErrConnectionFailed, err)
	}

	s.sshClient = sshClient
	s.sftpClient = sftpClient
	s.remoteCwd = cwd
	return nil
}

func buildAuthMethods(auth config.AuthMethod) ([]ssh.AuthMethod, error) {
	switch auth.Kind {
	case config.AuthPassword:
		return []ssh.AuthMethod{ssh.Password(auth.Password)}, nil
	case config.AuthPubkey:
		signer, err := loadSigner(auth.PrivkeyPath, auth.Passphrase)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	default:
		return nil, core.ErrNoAuthMethod
	}
}

func loadSigner(privkeyPath, passphrase string) (ssh.Signer, error) {
	keyBytes, err := os.ReadFile(privkeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key %q: %w", privkeyPath, err)
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(keyBytes)
}

// Close tears the session down: if not already closed, it closes the
// SFTP subsystem and then the SSH connection. No disconnect message is
// sent to the server. Idempotent (spec §4.3 Session teardown).
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.sftpClient != nil {
		err = s.sftpClient.Close()
	}
	if s.sshClient != nil {
		if cerr := s.sshClient.Conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Pwd returns the virtual remote cwd, lazily initialising it by
// querying the server if unset (spec §4.3 Virtual cwd management).
func (s *Session) Pwd() (string, error) {
	if s.remoteCwd == "" {
		cwd, err := s.sftpClient.RealPath(".")
		if err != nil {
			return "", &core.RemoteFSError{Op: "realpath", Path: ".", Err: err}
		}
		s.remoteCwd = cwd
	}
	return s.remoteCwd, nil
}

// PwdValidated returns the virtual cwd after confirming the server
// still reports it as a directory.
func (s *Session) PwdValidated() (string, error) {
	cwd, err := s.Pwd()
	if err != nil {
		return "", err
	}
	info, err := s.sftpClient.Stat(cwd)
	if err != nil {
		return "", &core.RemoteFSError{Op: "stat", Path: cwd, Err: err}
	}
	if !info.IsDir() {
		return "", &core.RemoteFSError{Op: "stat", Path: cwd, Err: fmt.Errorf("current remote working dir is not a directory")}
	}
	return cwd, nil
}

// Cd canonicalises new_path against the current virtual cwd (if
// relative), round-trips it through the server's realpath to
// normalise "."/".." components, confirms the destination is a
// directory, then updates the virtual cwd. Failure leaves the cwd
// unchanged (spec §4.3 Virtual cwd management).
func (s *Session) Cd(newPath string) (string, error) {
	candidate := s.canonicalizeRemote(newPath)

	resolved, err := s.sftpClient.RealPath(candidate)
	if err != nil {
		return "", &core.RemoteFSError{Op: "realpath", Path: candidate, Err: err}
	}

	info, err := s.sftpClient.Stat(resolved)
	if err != nil {
		return "", &core.RemoteFSError{Op: "stat", Path: resolved, Err: err}
	}
	if !info.IsDir() {
		return "", &core.RemoteFSError{Op: "stat", Path: resolved, Err: fmt.Errorf("not a directory")}
	}

	s.remoteCwd = resolved
	return resolved, nil
}

// canonicalizeRemote joins a relative remote path onto the virtual
// cwd, or returns an absolute path verbatim. Every public operation
// that accepts a relative remote path resolves it through here
// exactly once before issuing a protocol call (spec §9 "single
// location where virtual state meets the wire").
func (s *Session) canonicalizeRemote(remotePath string) string {
	if path.IsAbs(remotePath) {
		return path.Clean(remotePath)
	}
	cwd := s.remoteCwd
	if cwd == "" {
		cwd = "."
	}
	return path.Join(cwd, remotePath)
}

// CanonicalizeRemote resolves remotePath against the virtual cwd with
// no existence check, matching the original's canonicalize_remote: an
// absolute path passes through verbatim, a relative one is joined onto
// the cwd. Unlike Cd, it never touches the wire and never fails, so it
// is safe to call against a target that does not exist yet (the caller
// is expected to create it on demand, e.g. via EnsureDirRemoteCached).
func (s *Session) CanonicalizeRemote(remotePath string) string {
	return s.canonicalizeRemote(remotePath)
}
