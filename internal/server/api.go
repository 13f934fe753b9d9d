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

// Package server exposes a read-only local status/browse daemon for
// a companion UI: the running sync's transfer progress and a
// directory listing of the already-connected remote session (spec
// §12.3). Unlike the teacher's api.go, this daemon never owns
// connection lifecycle itself -- the session pool is established at
// startup from CLI flags and handed in, so there is no
// connect/disconnect surface here, only introspection.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"devsync/internal/progress"
	"devsync/internal/session"
)

// Daemon serves the read-only status API over the already-running
// sync's shared monitor and a browse session borrowed from the pool.
type Daemon struct {
	browseSession *session.Session
	monitor       *progress.TransferMonitor
}

// NewDaemon builds a Daemon. browseSession should be the pool's first
// session, the same one the dispatcher uses to pre-create remote
// directories (spec §12.1's ListRemote is exercised through it).
func NewDaemon(browseSession *session.Session, monitor *progress.TransferMonitor) *Daemon {
	return &Daemon{browseSession: browseSession, monitor: monitor}
}

// ListenAndServe blocks, serving the status/browse API on
// 127.0.0.1:port until the process exits or an unrecoverable listener
// error occurs.
func (d *Daemon) ListenAndServe(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/files", d.handleListFiles)
	mux.HandleFunc("/api/progress", d.handleProgress)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Info().Str("addr", addr).Msg("starting status daemon")
	return http.ListenAndServe(addr, mux)
}

// -- Response structs --

type fileResponse struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// -- Handlers --

func (d *Daemon) handleListFiles(w http.ResponseWriter, r *http.Request) {
	remotePath := r.URL.Query().Get("path")
	if remotePath == "" {
		remotePath = "."
	}

	d.browseSession.Lock()
	defer d.browseSession.Unlock()

	names, err := d.browseSession.ListRemote(remotePath)
	if err != nil {
		sendJSON(w, false, "failed to list directory: "+err.Error(), nil)
		return
	}

	fileList := make([]fileResponse, 0, len(names))
	for _, name := range names {
		isDir, dirErr := d.browseSession.HasDirRemote(joinRemote(remotePath, name))
		if dirErr != nil {
			continue
		}
		fileList = append(fileList, fileResponse{Name: name, IsDir: isDir})
	}

	sendJSON(w, true, "OK", fileList)
}

func (d *Daemon) handleProgress(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, true, "OK", d.monitor.Snapshot())
}

// -- Helpers --

func joinRemote(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}

func sendJSON(w http.ResponseWriter, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(apiResponse{
		Success: success,
		Message: message,
		Data:    data,
	})
}
