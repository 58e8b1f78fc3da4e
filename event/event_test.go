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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/event"
)

func TestEventBusSingleSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(event.VoteCastEventType)
	eb.Publish(
		event.VoteCastEventType,
		event.NewEvent(
			event.VoteCastEventType,
			event.VoteCastEvent{
				ProposalID: 3,
				Voter:      "GVOTER",
				Choice:     1,
				Weight:     types.NewAmount(60),
			},
		),
	)
	select {
	case evt, ok := <-subCh:
		require.True(t, ok, "event channel closed unexpectedly")
		data, ok := evt.Data.(event.VoteCastEvent)
		require.True(t, ok, "unexpected event data type %T", evt.Data)
		assert.Equal(t, uint32(3), data.ProposalID)
		assert.Equal(t, "60", data.Weight.String())
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(event.ProposalCreatedEventType)
	_, sub2Ch := eb.Subscribe(event.ProposalCreatedEventType)
	_, otherCh := eb.Subscribe(event.ProposalExecutedEventType)
	eb.Publish(
		event.ProposalCreatedEventType,
		event.NewEvent(event.ProposalCreatedEventType, event.ProposalCreatedEvent{ProposalID: 1}),
	)
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt := <-ch:
			assert.Equal(t, event.ProposalCreatedEventType, evt.Type)
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
	select {
	case <-otherCh:
		t.Fatalf("received event of another type")
	default:
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	testEvtType := event.EventType("test.event")
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	select {
	case _, ok := <-subCh:
		require.False(t, ok, "received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatalf("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusPublishAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	var received atomic.Int32
	eb.SubscribeFunc(event.EntryArchivedEventType, func(evt event.Event) {
		received.Add(1)
	})
	for range 5 {
		require.True(t, eb.PublishAsync(
			event.EntryArchivedEventType,
			event.NewEvent(event.EntryArchivedEventType, event.EntryArchivedEvent{Scope: "core"}),
		))
	}
	require.Eventually(t, func() bool {
		return received.Load() == 5
	}, 2*time.Second, 10*time.Millisecond)
	eb.Stop()
	assert.False(t, eb.PublishAsync(
		event.EntryArchivedEventType,
		event.NewEvent(event.EntryArchivedEventType, nil),
	))
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "event_published_total")
}

func TestEventBusStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	testEvtType := event.EventType("test.event")
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	doneCh := make(chan bool, 1)
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		doneCh <- true
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "before"))
	select {
	case <-doneCh:
	case <-time.After(1 * time.Second):
		t.Fatal("SubscribeFunc did not receive event before Stop")
	}
	eb.Stop()
	// Stop is idempotent
	eb.Stop()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-subCh:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestSubscribeFuncPanicRecovery(t *testing.T) {
	testEvtType := event.EventType("test.panic")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	var received atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		if received.Add(1) == 1 {
			panic("intentional test panic")
		}
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "panic"))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after-panic"))
	require.Eventually(t, func() bool {
		return received.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond,
		"handler should continue processing events after a panic",
	)
}
