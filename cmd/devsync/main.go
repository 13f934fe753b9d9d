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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"devsync/internal/config"
	"devsync/internal/dispatcher"
	"devsync/internal/logging"
	"devsync/internal/progress"
	"devsync/internal/server"
	"devsync/internal/session"
	"devsync/internal/watcher"
)

func main() {
	logging.Init(true, false)

	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	localBase, err := filepath.Abs(cfg.UploadPair.Source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot resolve local source: %v\n", err)
		os.Exit(1)
	}

	sessions, err := connectPool(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connection error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		for _, s := range sessions {
			s.Close()
		}
	}()

	if _, err := sessions[0].PwdValidated(); err != nil {
		fmt.Fprintf(os.Stderr, "cannot resolve remote cwd: %v\n", err)
		os.Exit(1)
	}
	// The target is resolved against the virtual cwd without requiring
	// it to already exist on the remote: it is created on demand by
	// the dispatcher's EnsureDirRemoteCached pre-create step, the same
	// way the original resolves local_to_remote_path_with_rbase instead
	// of cd-ing into the target up front.
	remoteBase := sessions[0].CanonicalizeRemote(cfg.UploadPair.Target)

	sink := progress.New(os.Stdout)
	defer sink.Close()
	monitor := progress.NewTransferMonitor()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	if cfg.StatusPort != 0 {
		daemon := server.NewDaemon(sessions[0], monitor)
		go func() {
			if err := daemon.ListenAndServe(int(cfg.StatusPort)); err != nil {
				log.Error().Err(err).Msg("status daemon exited")
			}
		}()
	}

	w, err := watcher.New(localBase, cfg.Filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot start watcher: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	d := dispatcher.New(sessions, localBase, remoteBase, sink, monitor)

	if cfg.UploadInitial {
		initial, err := w.InitialScan()
		if err != nil {
			log.Error().Err(err).Msg("initial scan failed")
		} else if len(initial) > 0 {
			if err := d.Run(ctx, initialBatchChan(initial)); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("initial upload failed")
			}
		}
	}

	go printDashboard(ctx, monitor)

	go w.Run(ctx)

	if err := d.Run(ctx, w.Batches()); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "dispatcher stopped: %v\n", err)
		os.Exit(1)
	}

	cancel()
	fmt.Println("\nshut down cleanly")
}

// connectPool dials cfg.Connections parallel SFTP sessions, closing
// any already-opened sessions if a later one fails (spec §4.3 pool
// bring-up is all-or-nothing at startup).
func connectPool(cfg config.Config) ([]*session.Session, error) {
	sessions := make([]*session.Session, 0, cfg.Connections)
	for i := 0; i < int(cfg.Connections); i++ {
		name := fmt.Sprintf("sftp_%d", i+1)
		sess := session.New(name, cfg.Host, cfg.Port, cfg.Username, cfg.Auth)
		if err := sess.Connect(); err != nil {
			for _, s := range sessions {
				s.Close()
			}
			return nil, fmt.Errorf("session %s: %w", name, err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// initialBatchChan wraps a one-shot file list as a single-batch
// channel for the --upload-initial sweep, reusing the same
// dispatcher path as a live watcher batch (spec §4.1).
func initialBatchChan(files []string) <-chan watcher.ChangeBatch {
	ch := make(chan watcher.ChangeBatch, 1)
	ch <- watcher.ChangeBatch{Paths: files}
	close(ch)
	return ch
}

// printDashboard renders the same single-line, carriage-return
// refreshed transfer summary the teacher's cmd/fileripper/main.go
// prints, swapping its hand-rolled byte formatter for
// github.com/dustin/go-humanize.
func printDashboard(ctx context.Context, monitor *progress.TransferMonitor) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := monitor.Snapshot()
			if !stats.IsRunning {
				continue
			}
			elapsed := time.Since(start).Round(time.Second)
			fmt.Printf("\r\033[K%s / %s, %.0f%%, %.2f MB/s, ETA %s | files %d/%d | %s",
				humanize.Bytes(uint64(stats.BytesDone)), humanize.Bytes(uint64(stats.TotalBytes)),
				stats.ProgressPercent, stats.SpeedMBs,
				calculateETA(stats.BytesDone, stats.TotalBytes, stats.SpeedMBs),
				stats.FilesDone, stats.TotalFiles, elapsed)
		}
	}
}

func calculateETA(done, total int64, speedMBs float64) string {
	if speedMBs <= 0 {
		return "---"
	}
	remaining := total - done
	if remaining <= 0 {
		return "0s"
	}
	seconds := float64(remaining) / (speedMBs * 1024 * 1024)
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
