// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"context"
	"sync"
	"time"
)

const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically archives lapsed entries
type Sweeper struct {
	state    *State
	stopCh   chan struct{}
	interval time.Duration
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewSweeper returns a Sweeper for the given state. A zero interval uses
// DefaultSweepInterval.
func NewSweeper(state *State, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		state:    state,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop in the background until Stop is called
func (w *Sweeper) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.sweepAll()
			case <-w.stopCh:
				return
			}
		}
	}()
}

// sweepAll archives batches until none are left
func (w *Sweeper) sweepAll() {
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}
		archived, err := w.state.Sweep(context.Background(), 0)
		if err != nil {
			w.state.logger.Error(
				"lease sweep failed",
				"component", "governance",
				"error", err,
			)
			return
		}
		if len(archived) == 0 {
			return
		}
	}
}

// Stop ends the sweep loop and waits for it to exit
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	w.wg.Wait()
}
