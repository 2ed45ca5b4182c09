package container

import "errors"

// Sentinel errors returned by container operations. Use [errors.Is] to
// check them.
var (
	// ErrInvalidOptions indicates an [Options] value with a duplicate
	// policy outside the four recognized values, or a hash-container
	// construction call with a non-positive bucket count.
	//
	// Unknown duplicate-policy bits are rejected here rather than
	// silently treated as DupAllow.
	ErrInvalidOptions = errors.New("container: invalid options")

	// ErrDuplicateRejected is not returned by [Container.Link] itself
	// (which follows the zero-return convention documented on
	// [Container.Link]). [Container.Dup] and [Container.Clone] return it
	// when a destination rejects an element, and callers can use it to
	// plumb a rejection through their own error-returning wrappers via
	// [errors.Is].
	ErrDuplicateRejected = errors.New("container: duplicate rejected")

	// ErrNotImplemented is returned by every operation on the
	// red-black-tree placeholder variant; see [NewTree].
	ErrNotImplemented = errors.New("container: not implemented")

	// ErrInvalidHandle indicates an operation was given an invalid
	// [refcount.Handle] (for example, an already-cleaned-up object
	// passed to Link).
	ErrInvalidHandle = errors.New("container: invalid handle")
)
