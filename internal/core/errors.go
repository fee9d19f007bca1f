package core

import "fmt"

// InvalidMessageError is returned when a message carries no usable subject,
// body or sender. It is the only error the engine surfaces to callers;
// every other miss (unresolved service, absent entity, date parse failure)
// degrades the result instead of aborting it.
type InvalidMessageError struct {
	Reason string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("invalid email message: %s", e.Reason)
}
