package pdu

import "errors"

var (
	// ErrDevice is wrapped by every error caused by talking to the card.
	ErrDevice = errors.New("pdu: device error")

	// ErrNoReceptacles is returned when discovery finds nothing to poll.
	ErrNoReceptacles = errors.New("pdu: no receptacles discovered")
)
