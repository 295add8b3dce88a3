package services

import "errors"

var (
	ErrNoActiveSchedule = errors.New("no active schedule")
	ErrRemoteQuery      = errors.New("remote query failed")
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrInvalidSchedule  = errors.New("invalid schedule file")
)
