// Package worker drives a board's periodic background refresh: unread
// polling followed by a structural-drift check.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/zethon/Owl-sub001/internal/board"
	"github.com/zethon/Owl-sub001/internal/logger"
	"github.com/zethon/Owl-sub001/internal/metrics"
)

// BoardWorker polls one board. The timer is single-shot and re-armed
// only after a cycle completes, so a slow update naturally throttles
// the polling rate instead of piling up ticks.
type BoardWorker struct {
	board       *board.Board
	defaultRate time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelFunc
}

func New(b *board.Board, defaultRate time.Duration) *BoardWorker {
	return &BoardWorker{board: b, defaultRate: defaultRate}
}

// Start arms the polling loop. Calling Start on a running worker is a
// no-op.
func (w *BoardWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	w.ctx, w.cancel = context.WithCancel(ctx)

	interval := w.board.RefreshRate(w.defaultRate)
	logger.Log.Info("started board poll worker",
		"component", "board_worker", "board", w.board.Name(), "interval", interval)
	w.timer = time.AfterFunc(interval, w.tick)
}

// Stop cancels the loop. A cycle already in flight finishes; no new
// tick is armed after it.
func (w *BoardWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return
	}
	w.cancel()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.cancel = nil
	logger.Log.Info("stopped board poll worker",
		"component", "board_worker", "board", w.board.Name())
}

func (w *BoardWorker) tick() {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	w.RunCycle()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil || w.ctx.Err() != nil {
		return
	}
	w.timer = time.AfterFunc(w.board.RefreshRate(w.defaultRate), w.tick)
}

// RunCycle executes a single poll cycle. The board's busy guard is
// try-locked: if a previous cycle is still running the tick is dropped
// entirely rather than queued.
func (w *BoardWorker) RunCycle() {
	name := w.board.Name()
	if !w.board.TryBeginUpdate() {
		metrics.PollTicksSkipped.WithLabelValues(name).Inc()
		logger.Log.Debug("previous cycle still running, skipping tick",
			"component", "board_worker", "board", name)
		return
	}
	defer w.board.EndUpdate()

	w.board.UpdateUnread()
	if _, err := w.board.CheckStructureUpdate(); err != nil {
		logger.Log.Warn("structure check failed",
			"component", "board_worker", "board", name, "error", err)
	}
	metrics.PollCyclesTotal.WithLabelValues(name).Inc()
}
