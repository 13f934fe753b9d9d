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
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSinkRendersBarLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	id := s.AddBar("sftp_1", 100)
	s.SetPosition(id, 40)
	s.SetMessage(id, "uploading a.txt")
	s.Increment(id, 10)
	s.Finish(id, "done")
	s.Println("batch complete")
	s.Close()

	out := buf.String()
	if !strings.Contains(out, "sftp_1") {
		t.Errorf("expected output to mention bar name, got %q", out)
	}
	if !strings.Contains(out, "batch complete") {
		t.Errorf("expected println output present, got %q", out)
	}
}

func TestSinkConcurrentBars(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	defer s.Close()

	ids := make(map[uuid.UUID]struct{}, 4)
	for i := 0; i < 4; i++ {
		id := s.AddBar("sftp", 10)
		ids[id] = struct{}{}
		s.Increment(id, 1)
	}
	if len(ids) != 4 {
		t.Fatalf("expected 4 distinct bar handles, got %d", len(ids))
	}
}

func TestTransferMonitorSnapshot(t *testing.T) {
	m := NewTransferMonitor()
	m.Reset(10, 1000)
	m.AddBytes(250)
	m.IncFileDone()
	m.SetCurrentFile("remote/a.txt")

	stats := m.Snapshot()
	if stats.TotalFiles != 10 || stats.TotalBytes != 1000 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.FilesDone != 1 {
		t.Errorf("expected FilesDone=1, got %d", stats.FilesDone)
	}
	if stats.BytesDone != 250 {
		t.Errorf("expected BytesDone=250, got %d", stats.BytesDone)
	}
	if stats.ProgressPercent != 25.0 {
		t.Errorf("expected ProgressPercent=25.0, got %v", stats.ProgressPercent)
	}
	if stats.CurrentFile != "remote/a.txt" {
		t.Errorf("expected CurrentFile set, got %q", stats.CurrentFile)
	}
}

func TestTransferMonitorResetClearsState(t *testing.T) {
	m := NewTransferMonitor()
	m.Reset(5, 500)
	m.AddBytes(500)
	m.IncFileDone()

	m.Reset(1, 100)
	stats := m.Snapshot()
	if stats.TotalFiles != 1 || stats.TotalBytes != 100 {
		t.Fatalf("expected reset totals, got %+v", stats)
	}
	if stats.FilesDone != 0 || stats.BytesDone != 0 {
		t.Errorf("expected counters cleared after Reset, got %+v", stats)
	}
}
