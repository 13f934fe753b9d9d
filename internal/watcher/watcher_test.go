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

package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"devsync/internal/config"
)

func newTestWatcher(t *testing.T, filter config.FilterSpec) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := New(dir, filter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, dir
}

func TestHandleEventAcceptsCreateAndWrite(t *testing.T) {
	w, dir := newTestWatcher(t, config.FilterSpec{})

	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pending := make(map[string]struct{})
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Create}, pending)
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Write}, pending)

	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending path, got %d: %v", len(pending), pending)
	}
	abs, _ := filepath.Abs(file)
	if _, ok := pending[abs]; !ok {
		t.Errorf("expected %q in pending set, got %v", abs, pending)
	}
}

func TestHandleEventDropsPureRemove(t *testing.T) {
	w, dir := newTestWatcher(t, config.FilterSpec{})
	file := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pending := make(map[string]struct{})
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Remove}, pending)

	if len(pending) != 0 {
		t.Errorf("expected Remove event to be dropped, got pending=%v", pending)
	}
}

func TestHandleEventDropsFilteredPath(t *testing.T) {
	w, dir := newTestWatcher(t, config.FilterSpec{IgnoreEnds: []string{".tmp"}})
	file := filepath.Join(dir, "scratch.tmp")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pending := make(map[string]struct{})
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Create}, pending)

	if len(pending) != 0 {
		t.Errorf("expected filtered path to be dropped, got pending=%v", pending)
	}
}

func TestHandleEventDirCreateAddsWatchNotPending(t *testing.T) {
	w, dir := newTestWatcher(t, config.FilterSpec{})
	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	pending := make(map[string]struct{})
	w.handleEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create}, pending)

	if len(pending) != 0 {
		t.Errorf("directory create must not be queued for upload, got pending=%v", pending)
	}
}

func TestInitialScanFindsFilesAndAppliesFilter(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "keep.go"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(dir, config.FilterSpec{IgnoreEnds: []string{".log"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	files, err := w.InitialScan()
	if err != nil {
		t.Fatalf("InitialScan: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file after filter, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "keep.go" {
		t.Errorf("expected keep.go, got %q", files[0])
	}
}
