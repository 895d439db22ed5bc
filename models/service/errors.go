package service

import (
	"fmt"
	"runtime"
)

type ProcessingError struct {
	Identifier string
	IsFatal    bool
	Message    string
	Source     string
}

// NewProcessingError returns a new ProcessingError. Param identifier
// is the key of the object being processed when the error occurred.
// Param message is the error message. Param isFatal describes whether
// the error is fatal. Fatal errors are those which will prevent a
// worker from succeeding when it retries the same upload event. For
// example, a malformed event body will still be malformed on redelivery.
// Transient errors, like a failed fetch from the object store or a
// busy Redis, are likely to succeed on future tries, so NSQ should
// requeue them.
func NewProcessingError(identifier, message string, isFatal bool) *ProcessingError {
	_, filename, line, ok := runtime.Caller(1)
	source := "unknown:0"
	if ok {
		source = fmt.Sprintf("%s:%d", filename, line)
	}
	return &ProcessingError{
		Identifier: identifier,
		IsFatal:    isFatal,
		Message:    message,
		Source:     source,
	}
}

func (e *ProcessingError) Error() string {
	severity := "non-fatal"
	if e.IsFatal {
		severity = "fatal"
	}
	source := "unknown:0"
	if e.Source != "" {
		source = e.Source
	}
	return fmt.Sprintf("(message: %s) (severity: %s) "+
		"(identifier: %s) (source: %s)", e.Message,
		severity, e.Identifier, source)
}
