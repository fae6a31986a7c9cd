package layout

import "errors"

var (
	// ErrNotInitialized is returned when the engine is used before
	// Init has completed.
	ErrNotInitialized = errors.New("layout: engine not initialized")

	// ErrUnknownNode is returned when an update references a child
	// key that does not exist.
	ErrUnknownNode = errors.New("layout: unknown node")

	// ErrNoRoot is returned when ComputeLayout is given a key with no
	// corresponding node.
	ErrNoRoot = errors.New("layout: root node not found")
)
