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

package host

import "github.com/prometheus/client_golang/prometheus"

type registryMetrics struct {
	calls *prometheus.CounterVec
}

func newRegistryMetrics(promRegistry prometheus.Registerer) *registryMetrics {
	m := &registryMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_contract_calls_total",
				Help: "total contract calls by function and result",
			},
			[]string{"function", "result"},
		),
	}
	if promRegistry != nil {
		_ = promRegistry.Register(m.calls)
	}
	return m
}

func (m *registryMetrics) observe(function string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calls.WithLabelValues(function, result).Inc()
}
