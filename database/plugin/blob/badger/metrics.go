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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
)

type blobMetrics struct {
	writes    prometheus.Counter
	conflicts prometheus.Counter
	lsmSize   prometheus.GaugeFunc
	vlogSize  prometheus.GaugeFunc
}

func newBlobMetrics(d *BlobStoreBadger) *blobMetrics {
	return &blobMetrics{
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "database_blob_writes_total",
			Help: "total number of blob key writes",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "database_blob_txn_conflicts_total",
			Help: "total number of blob transaction commit conflicts",
		}),
		lsmSize: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "database_blob_lsm_size_bytes",
				Help: "size of the blob LSM tree",
			},
			func() float64 {
				lsm, _ := d.db.Size()
				return float64(lsm)
			},
		),
		vlogSize: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "database_blob_vlog_size_bytes",
				Help: "size of the blob value log",
			},
			func() float64 {
				_, vlog := d.db.Size()
				return float64(vlog)
			},
		),
	}
}

func (m *blobMetrics) register(reg prometheus.Registerer) {
	for _, c := range []prometheus.Collector{
		m.writes,
		m.conflicts,
		m.lsmSize,
		m.vlogSize,
	} {
		// A second store on the same registry keeps its own unregistered
		// collectors
		_ = reg.Register(c)
	}
}
