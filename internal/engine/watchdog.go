package engine

import (
	"context"
	"time"
)

// watchdog pauses an idle session. It owns a cancellation token so
// pause/stop/finish/teardown deterministically kill the timer
// goroutine; the callback only notifies the host, which delivers the
// actual pause on its own event loop.
type watchdog struct {
	timeout time.Duration
	onIdle  func()
	kick    chan struct{}
	cancel  context.CancelFunc
}

func newWatchdog(timeout time.Duration, onIdle func()) *watchdog {
	return &watchdog{
		timeout: timeout,
		onIdle:  onIdle,
		kick:    make(chan struct{}, 1),
	}
}

func (w *watchdog) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
}

func (w *watchdog) run(ctx context.Context) {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.timeout)
		case <-timer.C:
			w.onIdle()
			return
		}
	}
}

// reset re-arms the timeout after an edit.
func (w *watchdog) reset() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// stop cancels the timer goroutine. Safe to call repeatedly.
func (w *watchdog) stop() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
