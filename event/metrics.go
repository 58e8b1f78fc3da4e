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

package event

import "github.com/prometheus/client_golang/prometheus"

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	droppedTotal   *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
}

func (e *EventBus) initMetrics(promRegistry prometheus.Registerer) {
	e.metrics = &eventMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_published_total",
				Help: "total events published by type",
			},
			[]string{"type"},
		),
		deliveryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_delivery_errors_total",
				Help: "total failed event deliveries by type",
			},
			[]string{"type"},
		),
		droppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_async_dropped_total",
				Help: "total events dropped from a full async queue by type",
			},
			[]string{"type"},
		),
		subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "event_subscribers",
				Help: "current subscribers by event type",
			},
			[]string{"type"},
		),
	}
	promRegistry.MustRegister(
		e.metrics.eventsTotal,
		e.metrics.deliveryErrors,
		e.metrics.droppedTotal,
		e.metrics.subscribers,
	)
}
