// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package catalyst

import "sync"

// mailbox is an unbounded, single-consumer queue of Messages. Senders never
// block; the driver parks on wait() when the queue is empty and drains the
// whole backlog in one pass each time it wakes, so a burst of calls never
// produces more than one wakeup.
type mailbox struct {
	mu     sync.Mutex
	queue  []Message
	notify chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// send enqueues msg and wakes the driver. It reports false, without
// enqueuing, if the mailbox has already been closed — the caller must reply
// to its own message with an "engine unavailable" error in that case.
func (m *mailbox) send(msg Message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// drain removes and returns every message currently queued, oldest first.
func (m *mailbox) drain() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil
	}
	out := m.queue
	m.queue = nil
	return out
}

// wait returns the channel the driver selects on between drains.
func (m *mailbox) wait() <-chan struct{} {
	return m.notify
}

// close marks the mailbox closed and returns anything left unprocessed so
// the driver can reply to it with termination errors before exiting.
func (m *mailbox) close() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	out := m.queue
	m.queue = nil
	return out
}
