package reactive

import "fmt"

// ListenerError wraps a panic recovered from an effect, watcher,
// cleanup, or scheduler callback.
type ListenerError struct {
	// Listener names the callback that panicked.
	Listener string
	// Value is the recovered panic value.
	Value any
	// Stack is the stack trace captured at recovery.
	Stack []byte
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("reactive: panic in %s: %v", e.Listener, e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *ListenerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
