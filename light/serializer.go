// Copyright 2021 by the Authors
// This file is part of the go-lumen library.
//
// The go-lumen library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-lumen library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-lumen library. If not, see <http://www.gnu.org/licenses/>.

package light

import "sync"

// serializer runs submitted thunks strictly one at a time, in submission
// order. It is the mutual exclusion discipline of the chain: every mutating
// operation goes through it, so each thunk observes the store exactly as the
// previous one left it.
type serializer struct {
	requests chan serializerRequest
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type serializerRequest struct {
	fn   func()
	done chan struct{}
}

// newSerializer creates a serializer and starts its run loop.
func newSerializer() *serializer {
	s := &serializer{
		requests: make(chan serializerRequest),
		quit:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// exec submits fn and blocks until it has run. Callers blocked on submission
// are admitted first-come, first-served. After stop, exec returns
// errChainStopped without running fn.
func (s *serializer) exec(fn func()) error {
	done := make(chan struct{})
	select {
	case s.requests <- serializerRequest{fn: fn, done: done}:
		<-done
		return nil
	case <-s.quit:
		return errChainStopped
	}
}

// stop terminates the run loop. Thunks already admitted finish; waiting
// submissions fail with errChainStopped.
func (s *serializer) stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}

func (s *serializer) loop() {
	defer s.wg.Done()
	for {
		select {
		case req := <-s.requests:
			req.fn()
			close(req.done)
		case <-s.quit:
			return
		}
	}
}
