package crawler

import "errors"

// ErrAlreadyRunning is returned when Run is called on a running Scheduler.
var ErrAlreadyRunning = errors.New("scheduler is already running")
