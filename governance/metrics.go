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

import "github.com/prometheus/client_golang/prometheus"

type stateMetrics struct {
	proposals prometheus.Counter
	votes     *prometheus.CounterVec
	executed  prometheus.Counter
	archived  prometheus.Counter
	restored  prometheus.Counter
	errors    *prometheus.CounterVec
}

func newStateMetrics(promRegistry prometheus.Registerer) *stateMetrics {
	m := &stateMetrics{
		proposals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "governance_proposals_created_total",
			Help: "total proposals created",
		}),
		votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "governance_votes_total",
				Help: "total votes accepted by choice",
			},
			[]string{"choice"},
		),
		executed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "governance_proposals_executed_total",
			Help: "total proposals executed",
		}),
		archived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "governance_entries_archived_total",
			Help: "total lapsed entries moved to the archive",
		}),
		restored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "governance_entries_restored_total",
			Help: "total entries restored with a fresh lease",
		}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "governance_errors_total",
				Help: "total rejected governance calls by operation and error class",
			},
			[]string{"operation", "class"},
		),
	}
	if promRegistry != nil {
		for _, c := range []prometheus.Collector{
			m.proposals,
			m.votes,
			m.executed,
			m.archived,
			m.restored,
			m.errors,
		} {
			_ = promRegistry.Register(c)
		}
	}
	return m
}
