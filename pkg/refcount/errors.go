package refcount

import "errors"

// Sentinel errors returned by refcount operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, refcount.ErrInvalidHandle) {
//	    // the handle was already torn down
//	}
var (
	// ErrInvalidHandle indicates a zero handle, or a handle whose
	// reference count has already reached zero.
	//
	// Recovery: none — the underlying object is gone. Callers must not
	// retry the operation with the same handle.
	ErrInvalidHandle = errors.New("refcount: invalid handle")

	// ErrInvalidOptions indicates an [AllocOptions] with an unrecognized
	// [Kind] or a negative Size.
	//
	// Recovery: fix the caller's options and retry allocation.
	ErrInvalidOptions = errors.New("refcount: invalid options")

	// ErrAllocationFailure names an allocator that cannot produce a
	// handle. No function in this package returns it: [Allocate] reports
	// bad options as [ErrInvalidOptions] and otherwise always succeeds.
	ErrAllocationFailure = errors.New("refcount: allocation failure")

	// ErrLockAcquisition names a failure to acquire a [GlobalHolder]'s
	// own lock. No [GlobalHolder] method returns it: the holder's lock is
	// a sync.RWMutex, whose acquisition blocks rather than fails, and the
	// holder methods have no error result.
	ErrLockAcquisition = errors.New("refcount: lock acquisition failure")
)
