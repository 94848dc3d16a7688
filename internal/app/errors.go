package app

import "errors"

// ErrQuit signals a normal operator-requested exit.
var ErrQuit = errors.New("quit requested")
