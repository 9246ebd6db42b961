package engine

import (
	"context"
	"time"
)

// frameInterval is the render loop's target cadence: roughly 30fps, the
// way spec.md section 4.4 specifies ("~33ms").
const frameInterval = 33 * time.Millisecond

// minFrameSleep is the floor the inter-frame sleep is clamped to when a
// frame overruns its budget, so a slow diff never spins the loop.
const minFrameSleep = time.Millisecond

// renderLoop repeatedly asks the screen for a diff and writes it to the
// terminal, targeting frameInterval per iteration. It hides the cursor
// on its first frame and reports any terminal write error on errc
// before returning — a write failure is propagated so the caller can
// drive graceful shutdown (spec.md section 7).
func (e *Engine) renderLoop(ctx context.Context, errc chan<- error) {
	first := true
	for {
		select {
		case <-ctx.Done():
			errc <- nil
			return
		default:
		}

		frameStart := time.Now()

		if first {
			if err := e.Term.HideCursor(); err != nil {
				errc <- err
				return
			}
			first = false
		}

		diff := e.Screen.GenerateDiffAndSwap()
		if _, err := e.Term.Write([]byte(diff)); err != nil {
			errc <- err
			return
		}

		sleep := frameInterval - time.Since(frameStart)
		if sleep < minFrameSleep {
			sleep = minFrameSleep
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			errc <- nil
			return
		}
	}
}
