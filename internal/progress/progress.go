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

// Package progress renders per-session upload progress bars from a
// single actor goroutine, so concurrent workers never race on
// terminal output (spec §5, grounded on
// original_source/src/uploader/progress_actor.rs and
// progress_actor_handle.rs).
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type command struct {
	kind    commandKind
	barID   uuid.UUID
	name    string
	length  uint64
	pos     uint64
	delta   uint64
	message string
	text    string
	reply   chan uuid.UUID
}

type commandKind int

const (
	cmdAddBar commandKind = iota
	cmdSetLength
	cmdSetPosition
	cmdIncrement
	cmdSetMessage
	cmdFinish
	cmdPrintln
)

type bar struct {
	id       uuid.UUID
	name     string
	length   uint64
	position uint64
	message  string
	started  time.Time
	done     bool
}

// Sink is the single-writer progress actor. Create with New and stop
// with Close; all other methods are safe to call from any goroutine.
type Sink struct {
	out     io.Writer
	cmds    chan command
	done    chan struct{}
	wg      sync.WaitGroup
	colorOK bool
}

// New starts the actor goroutine writing rendered bar lines to out.
func New(out io.Writer) *Sink {
	s := &Sink{
		out:     out,
		cmds:    make(chan command, 64),
		done:    make(chan struct{}),
		colorOK: color.NoColor == false,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Close stops the actor and waits for it to drain pending commands.
func (s *Sink) Close() {
	close(s.cmds)
	s.wg.Wait()
}

func (s *Sink) run() {
	defer s.wg.Done()
	bars := make(map[uuid.UUID]*bar)
	order := make([]uuid.UUID, 0)

	for cmd := range s.cmds {
		switch cmd.kind {
		case cmdAddBar:
			id := uuid.New()
			bars[id] = &bar{id: id, name: cmd.name, length: cmd.length, started: time.Now()}
			order = append(order, id)
			if cmd.reply != nil {
				cmd.reply <- id
			}
		case cmdSetLength:
			if b, ok := bars[cmd.barID]; ok {
				b.length = cmd.length
			}
		case cmdSetPosition:
			if b, ok := bars[cmd.barID]; ok {
				b.position = cmd.pos
				s.render(b)
			}
		case cmdIncrement:
			if b, ok := bars[cmd.barID]; ok {
				b.position += cmd.delta
				s.render(b)
			}
		case cmdSetMessage:
			if b, ok := bars[cmd.barID]; ok {
				b.message = cmd.message
				s.render(b)
			}
		case cmdFinish:
			if b, ok := bars[cmd.barID]; ok {
				b.done = true
				b.message = cmd.text
				s.render(b)
			}
		case cmdPrintln:
			fmt.Fprintln(s.out, cmd.text)
		}
	}
}

func (s *Sink) render(b *bar) {
	label := color.CyanString(b.name)
	if b.done {
		label = color.GreenString(b.name)
	}
	fmt.Fprintf(s.out, "%s %s/%s %s\n",
		label,
		humanize.Bytes(b.position),
		humanize.Bytes(b.length),
		b.message,
	)
}

// AddBar registers a new named progress bar with the given total
// length (usually total bytes for a session's shard) and returns its
// handle for subsequent calls.
func (s *Sink) AddBar(name string, length uint64) uuid.UUID {
	reply := make(chan uuid.UUID, 1)
	s.cmds <- command{kind: cmdAddBar, name: name, length: length, reply: reply}
	return <-reply
}

// SetLength updates a bar's total length.
func (s *Sink) SetLength(id uuid.UUID, length uint64) {
	s.cmds <- command{kind: cmdSetLength, barID: id, length: length}
}

// SetPosition sets a bar's absolute position.
func (s *Sink) SetPosition(id uuid.UUID, pos uint64) {
	s.cmds <- command{kind: cmdSetPosition, barID: id, pos: pos}
}

// Increment advances a bar's position by delta.
func (s *Sink) Increment(id uuid.UUID, delta uint64) {
	s.cmds <- command{kind: cmdIncrement, barID: id, delta: delta}
}

// SetMessage sets a bar's trailing status message (e.g. the file
// currently uploading).
func (s *Sink) SetMessage(id uuid.UUID, message string) {
	s.cmds <- command{kind: cmdSetMessage, barID: id, message: message}
}

// Finish marks a bar complete with a final message.
func (s *Sink) Finish(id uuid.UUID, text string) {
	s.cmds <- command{kind: cmdFinish, barID: id, text: text}
}

// Println prints a standalone line without disturbing any bar's
// rendering, matching the original actor's print_ln contract for
// out-of-band log lines (e.g. the "files detected" announcement).
func (s *Sink) Println(text string) {
	s.cmds <- command{kind: cmdPrintln, text: text}
}
