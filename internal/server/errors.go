package server

import "errors"

var (
	ErrNoHostsProvided = errors.New("at least one host is required to generate a broadcast")
	ErrInvalidStatus   = errors.New("invalid segment status")
)
