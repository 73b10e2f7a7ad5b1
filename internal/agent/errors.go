package agent

import "errors"

var (
	// ErrProtocolFormat means the model reply carried no recognized label.
	ErrProtocolFormat = errors.New("model reply has no recognized label")
	// ErrUnknownLabel means a label was decoded that the loop cannot act on.
	ErrUnknownLabel = errors.New("unknown label in model reply")
	// ErrIterationLimit means the model did not give a final answer within
	// the configured number of round-trips.
	ErrIterationLimit = errors.New("max iterations reached")
	// ErrNoPendingConfirmation means a decision arrived with no command
	// waiting for one.
	ErrNoPendingConfirmation = errors.New("no command is awaiting confirmation")
)
