// Package metrics expone los contadores Prometheus del kardex.
// Se publican en GET /metrics cuando METRICS_ENABLED=true.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerEntriesTotal cuenta entradas de kardex aplicadas, por tipo de transacción.
	LedgerEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kardex_ledger_entries_total",
		Help: "Entradas de kardex aplicadas, por tipo de transacción.",
	}, []string{"type"})

	// RejectionsTotal cuenta operaciones rechazadas, por motivo.
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kardex_rejections_total",
		Help: "Operaciones rechazadas por el kardex, por motivo.",
	}, []string{"reason"})

	// IdempotentReplaysTotal cuenta peticiones respondidas desde el registro de idempotencia.
	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kardex_idempotent_replays_total",
		Help: "Peticiones respondidas desde un registro de idempotencia completado.",
	})

	// TransferClampsTotal cuenta deducciones de origen recortadas a cero por stock corto.
	TransferClampsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kardex_transfer_source_clamps_total",
		Help: "Ítems de traslado cuya deducción en origen se recortó por stock insuficiente.",
	})
)
