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

// Package dispatcher owns the fixed pool of SFTP sessions and turns
// watcher change batches into sharded, per-session upload work (spec
// §5). Grounded on the teacher's internal/pfte worker-pool
// (engine.go/plr.go/queue.go) generalized from a round-robin job
// queue to the original_source actor's precompute-then-shard
// strategy (uploader/upload_actor.rs): remote directories are
// resolved and created once via a single session before any transfer
// starts, then the batch is split into exactly one chunk per session
// and each chunk is handed to its session's dedicated worker.
package dispatcher

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"devsync/internal/progress"
	"devsync/internal/session"
	"devsync/internal/watcher"
)

// Dispatcher owns the session pool and the shared progress/monitor
// sinks, and serializes batch-to-batch processing: a batch is fully
// drained (pre-create dirs, shard, upload, join) before the next one
// starts (spec §5 "Batches are processed strictly one at a time").
type Dispatcher struct {
	sessions   []*session.Session
	localBase  string
	remoteBase string
	sink       *progress.Sink
	monitor    *progress.TransferMonitor
}

// New builds a Dispatcher over an already-connected session pool.
// localBase and remoteBase are the upload pair's resolved absolute
// bases, used to translate every local path in a batch to its remote
// destination (spec §4.2).
func New(sessions []*session.Session, localBase, remoteBase string, sink *progress.Sink, monitor *progress.TransferMonitor) *Dispatcher {
	return &Dispatcher{
		sessions:   sessions,
		localBase:  localBase,
		remoteBase: remoteBase,
		sink:       sink,
		monitor:    monitor,
	}
}

// Run consumes batches from batches until the channel closes or ctx
// is cancelled, processing each one to completion before pulling the
// next (spec §5).
func (d *Dispatcher) Run(ctx context.Context, batches <-chan watcher.ChangeBatch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			if err := d.processBatch(ctx, batch); err != nil {
				log.Error().Err(err).Msg("batch processing failed")
			}
		}
	}
}

// processBatch implements the per-batch pipeline: translate paths,
// drop any that fail translation (logged, not fatal to the batch),
// pre-create the distinct set of remote directories via the pool's
// first session, shard the survivors across sessions, and dispatch
// one worker per session concurrently (spec §5).
func (d *Dispatcher) processBatch(ctx context.Context, batch watcher.ChangeBatch) error {
	if len(batch.Paths) == 0 {
		return nil
	}

	type fileUpload struct {
		localPath  string
		remotePath string
		size       int64
	}

	uploads := make([]fileUpload, 0, len(batch.Paths))
	remoteDirs := make(map[string]struct{})
	var totalBytes int64

	for _, localPath := range batch.Paths {
		remotePath, err := session.Translate(d.localBase, d.remoteBase, localPath)
		if err != nil {
			log.Warn().Err(err).Str("path", localPath).Msg("skipping file outside upload-pair base")
			continue
		}
		info, err := os.Stat(localPath)
		if err != nil {
			log.Warn().Err(err).Str("path", localPath).Msg("skipping file that vanished before upload")
			continue
		}
		uploads = append(uploads, fileUpload{localPath: localPath, remotePath: remotePath, size: info.Size()})
		remoteDirs[path.Dir(remotePath)] = struct{}{}
		totalBytes += info.Size()
	}

	if len(uploads) == 0 {
		return nil
	}

	d.sink.Println(formatBatchAnnouncement(len(uploads)))
	d.monitor.Reset(int64(len(uploads)), totalBytes)
	d.monitor.SetRunning(true)
	defer d.monitor.SetRunning(false)

	mainSession := d.sessions[0]
	mainSession.Lock()
	for dir := range remoteDirs {
		if err := mainSession.EnsureDirRemoteCached(dir); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("failed to pre-create remote directory")
		}
	}
	mainSession.Unlock()

	localPaths := make([]string, len(uploads))
	remoteByLocal := make(map[string]string, len(uploads))
	sizeByLocal := make(map[string]int64, len(uploads))
	for i, u := range uploads {
		localPaths[i] = u.localPath
		remoteByLocal[u.localPath] = u.remotePath
		sizeByLocal[u.localPath] = u.size
	}

	chunks := SplitToNChunks(localPaths, len(d.sessions))

	var g errgroup.Group
	for i, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		i, chunk := i, chunk
		sess := d.sessions[i]
		var chunkBytes uint64
		for _, localPath := range chunk {
			chunkBytes += uint64(sizeByLocal[localPath])
		}
		barID := d.sink.AddBar(sess.Name, chunkBytes)

		g.Go(func() (workerErr error) {
			sess.Lock()
			defer sess.Unlock()

			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("session", sess.Name).Msg("upload worker panicked, batch continues")
					workerErr = fmt.Errorf("worker for session %s panicked: %v", sess.Name, r)
				}
			}()

			var doneBytes uint64
			for _, localPath := range chunk {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				remotePath := remoteByLocal[localPath]
				d.sink.SetMessage(barID, localPath)
				d.monitor.SetCurrentFile(remotePath)

				if err := sess.UploadFile(localPath, remotePath); err != nil {
					log.Error().Err(err).Str("local", localPath).Str("remote", remotePath).Msg("upload failed")
					continue
				}

				d.monitor.AddBytes(sizeByLocal[localPath])
				d.monitor.IncFileDone()
				doneBytes += uint64(sizeByLocal[localPath])
				d.sink.SetPosition(barID, doneBytes)
			}
			d.sink.Finish(barID, "done")
			return nil
		})
	}

	return g.Wait()
}

func formatBatchAnnouncement(n int) string {
	if n == 1 {
		return "uploading 1 file"
	}
	return fmt.Sprintf("uploading %d files", n)
}
