package sankey

import "errors"

var (
	// ErrInvalidReference is returned when a link's source or target does not
	// resolve to a node: an index out of range or an unknown node ID.
	ErrInvalidReference = errors.New("sankey: invalid node reference")

	// ErrInvalidValue is returned when a link value is negative, NaN or
	// infinite. Values are checked before any layout stage runs.
	ErrInvalidValue = errors.New("sankey: invalid link value")

	// ErrInvalidSize is returned when the drawing width or height is not a
	// finite positive number.
	ErrInvalidSize = errors.New("sankey: invalid size")

	// ErrInvalidOption is returned for out-of-range options such as a negative
	// node padding or a curvature outside [0, 1].
	ErrInvalidOption = errors.New("sankey: invalid option")

	// ErrDuplicateNodeID is returned when two nodes share a non-empty ID.
	ErrDuplicateNodeID = errors.New("sankey: duplicate node ID")

	// ErrCyclicGraph is returned when column assignment does not terminate
	// within the number of steps an acyclic graph would need.
	ErrCyclicGraph = errors.New("sankey: graph contains a cycle")
)
