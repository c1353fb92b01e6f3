package run

import (
	"os"
	"os/signal"
	"syscall"

	"soundamp/logger"
)

// os.Signal channel function
var SigChanFunc = defaultSigChanFunc

// Default os.Signal channel function
func defaultSigChanFunc() chan os.Signal {
	return make(chan os.Signal, 1)
}

// Run this method until the passed in os.Signals are triggered
// Returns the received signal
func UntilSignal(signals ...os.Signal) os.Signal {
	ch := SigChanFunc()
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)
	return <-ch // Blocking
}

// Quit signals
func QuitSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}

// Run until a quit signal is received
func UntilQuit() os.Signal {
	return UntilSignal(QuitSignals()...)
}

// Returns a channel receiving the first quit signal, for use in selects
func Quit() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	go func() { ch <- UntilQuit() }()
	return ch
}

// Panic Recover, keeps a panicking goroutine from taking the process down
func Recover() {
	if r := recover(); r != nil {
		logger.Error("panic recovery: %v", r)
	}
}
