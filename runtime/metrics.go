// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsAccepted          prometheus.Counter
	txsRejected          prometheus.Counter
	instructionsExecuted prometheus.Counter
	invocations          prometheus.Counter
}

func newMetrics(gatherer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_accepted",
			Help:      "number of transactions committed",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_rejected",
			Help:      "number of transactions aborted",
		}),
		instructionsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "instructions_executed",
			Help:      "number of top-level instructions executed",
		}),
		invocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "invocations",
			Help:      "number of cross-program invocations",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		gatherer.Register(m.txsAccepted),
		gatherer.Register(m.txsRejected),
		gatherer.Register(m.instructionsExecuted),
		gatherer.Register(m.invocations),
	)
	return m, errs.Err
}
