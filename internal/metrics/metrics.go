// Package metrics exposes Prometheus instrumentation for board
// synchronization activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owl_board_poll_cycles_total",
			Help: "Completed background poll cycles per board",
		},
		[]string{"board"},
	)

	PollTicksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owl_board_poll_ticks_skipped_total",
			Help: "Poll ticks dropped because the previous cycle was still running",
		},
		[]string{"board"},
	)

	CrawlErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owl_board_crawl_errors_total",
			Help: "Per-branch crawl failures, including those swallowed in lenient mode",
		},
		[]string{"board"},
	)

	StructureChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owl_board_structure_changes_total",
			Help: "Structural drift detections between local and remote forum trees",
		},
		[]string{"board"},
	)

	BoardsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "owl_boards_registered",
			Help: "Boards currently held by the registry",
		},
	)
)
