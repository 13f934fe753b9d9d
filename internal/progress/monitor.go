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

package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

// TransferStats is a point-in-time snapshot of one batch's progress,
// exposed to the CLI dashboard and the "serve" daemon's status
// endpoint (spec §12.3). Grounded on the teacher's
// internal/pfte/monitor.go TransferStats struct, generalized with a
// JSON tag set matching this domain's field names.
type TransferStats struct {
	TotalFiles      int64   `json:"total_files"`
	FilesDone       int64   `json:"files_done"`
	TotalBytes      int64   `json:"total_bytes"`
	BytesDone       int64   `json:"bytes_done"`
	ProgressPercent float64 `json:"progress_percent"`
	SpeedMBs        float64 `json:"speed_mb_s"`
	CurrentFile     string  `json:"current_file"`
	IsRunning       bool    `json:"is_running"`
}

// counters groups the four tallies that every upload worker touches
// concurrently. Kept separate from the mutex-guarded fields below so
// the hot path (AddBytes/IncFileDone, called once per file per
// worker) never blocks on the snapshot lock.
type counters struct {
	totalFiles int64
	filesDone  int64
	totalBytes int64
	bytesDone  int64
}

func (c *counters) reset(totalFiles, totalBytes int64) {
	atomic.StoreInt64(&c.totalFiles, totalFiles)
	atomic.StoreInt64(&c.totalBytes, totalBytes)
	atomic.StoreInt64(&c.filesDone, 0)
	atomic.StoreInt64(&c.bytesDone, 0)
}

func (c *counters) load() (totalFiles, filesDone, totalBytes, bytesDone int64) {
	return atomic.LoadInt64(&c.totalFiles), atomic.LoadInt64(&c.filesDone),
		atomic.LoadInt64(&c.totalBytes), atomic.LoadInt64(&c.bytesDone)
}

// TransferMonitor aggregates live progress across every session
// worker in a batch. The byte/file tallies are plain atomics so
// workers never contend with each other; everything a snapshot also
// needs (current file, running flag, speed sample) sits behind mu,
// since Snapshot is called far less often than AddBytes.
type TransferMonitor struct {
	counts counters

	mu          sync.Mutex
	currentFile string
	isRunning   bool

	speedWindowStart time.Time
	speedWindowBytes int64
	lastSpeedMBs     float64
}

// NewTransferMonitor creates an idle monitor, ready for the first
// Reset at batch start.
func NewTransferMonitor() *TransferMonitor {
	return &TransferMonitor{speedWindowStart: time.Now()}
}

// Reset clears all counters for a new batch and marks it running.
func (m *TransferMonitor) Reset(totalFiles, totalBytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.reset(totalFiles, totalBytes)
	m.currentFile = ""
	m.isRunning = true
	m.speedWindowStart = time.Now()
	m.speedWindowBytes = 0
	m.lastSpeedMBs = 0
}

// AddBytes records n bytes transferred by any worker.
func (m *TransferMonitor) AddBytes(n int64) {
	atomic.AddInt64(&m.counts.bytesDone, n)
}

// IncFileDone marks one more file complete.
func (m *TransferMonitor) IncFileDone() {
	atomic.AddInt64(&m.counts.filesDone, 1)
}

// SetCurrentFile records the most recently started file's remote path.
func (m *TransferMonitor) SetCurrentFile(name string) {
	m.mu.Lock()
	m.currentFile = name
	m.mu.Unlock()
}

// SetRunning flips the batch-in-flight flag.
func (m *TransferMonitor) SetRunning(running bool) {
	m.mu.Lock()
	m.isRunning = running
	m.mu.Unlock()
}

// minSpeedSampleWindow bounds how often the throughput sample is
// refreshed; sampling on every call would make the reported speed
// jitter with whatever interval the dashboard happens to poll at.
const minSpeedSampleWindow = 500 * time.Millisecond

// Snapshot refreshes the throughput sample if enough time has passed
// since the last one, then returns the current state.
func (m *TransferMonitor) Snapshot() TransferStats {
	totalFiles, filesDone, totalBytes, bytesDone := m.counts.load()

	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := time.Since(m.speedWindowStart)
	if elapsed >= minSpeedSampleWindow {
		sampled := bytesDone - m.speedWindowBytes
		m.lastSpeedMBs = (float64(sampled) / 1024 / 1024) / elapsed.Seconds()
		m.speedWindowBytes = bytesDone
		m.speedWindowStart = time.Now()
	}

	var percent float64
	if totalBytes > 0 {
		percent = (float64(bytesDone) / float64(totalBytes)) * 100
	}

	return TransferStats{
		TotalFiles:      totalFiles,
		FilesDone:       filesDone,
		TotalBytes:      totalBytes,
		BytesDone:       bytesDone,
		ProgressPercent: percent,
		SpeedMBs:        m.lastSpeedMBs,
		CurrentFile:     m.currentFile,
		IsRunning:       m.isRunning,
	}
}
