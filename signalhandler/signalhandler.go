package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler configures clean shutdown on interrupt signals.
func SetupHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			os.Exit(0)
		}
	}()
}

// GetOptimalProcs returns the number of worker goroutines to use. The sqlite
// driver goes through cgo, so the pool is kept below the full CPU count.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}
	return maxProcs
}
