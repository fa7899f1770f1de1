package app

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sonemaro/termbar/pkg/logger"
)

// ExitInterrupted is the exit code used when a second signal forces exit.
const ExitInterrupted = 130

// signalState tracks the state of signal handling
type signalState struct {
	shutdownInitiated atomic.Bool
}

// HandleSignals cancels the application context on the first SIGINT or
// SIGTERM and exits the process on the second one.
func (a *App) HandleSignals() {
	a.log.Debug("Initializing signal handlers")

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	a.mu.Lock()
	a.stopSignal = func() { signal.Stop(sigChan) }
	a.mu.Unlock()

	go a.handleSignals(sigChan, &signalState{})
}

// handleSignals processes incoming system signals until the app shuts down
func (a *App) handleSignals(sigChan <-chan os.Signal, state *signalState) {
	for {
		select {
		case <-a.done:
			return
		case sig := <-sigChan:
			a.log.WithFields(logger.Fields{
				"signal": sig.String(),
			}).Debug("Received system signal")

			if state.shutdownInitiated.CompareAndSwap(false, true) {
				a.handleGracefulShutdown(sig)
				continue
			}

			a.handleForcedShutdown()
			return
		}
	}
}

// handleGracefulShutdown stops running work; the interrupted command
// still prints its partial report
func (a *App) handleGracefulShutdown(sig os.Signal) {
	a.log.Info("Interrupted, finishing current work (signal again to force exit)")
	fmt.Fprintf(a.stderr, "\nReceived %s, stopping... press Ctrl+C again to force exit\n", sig)
	a.cancel()
}

// handleForcedShutdown performs an immediate shutdown
func (a *App) handleForcedShutdown() {
	a.log.Warn("Forced shutdown initiated")
	a.exit(ExitInterrupted)
}
