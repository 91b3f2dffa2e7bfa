package app

import "sync/atomic"

// StartupGuard admits exactly one caller for the lifetime of the process.
// The bot's connect hook may fire again after every reconnect; only the first
// admitted call is allowed to start the background jobs.
type StartupGuard struct {
	started atomic.Bool
}

func NewStartupGuard() *StartupGuard {
	return &StartupGuard{}
}

// AdmitOnce returns true for the first call only, no matter how many calls race.
func (g *StartupGuard) AdmitOnce() bool {
	return g.started.CompareAndSwap(false, true)
}

// Admitted reports whether AdmitOnce has already let a caller through.
func (g *StartupGuard) Admitted() bool {
	return g.started.Load()
}
