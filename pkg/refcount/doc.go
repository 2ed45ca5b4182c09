// Package refcount provides a reference-counted object header with an
// optional embedded lock and a deterministic destructor.
//
// A value is wrapped by calling [Allocate], which returns a [Handle]. The
// handle owns one reference; callers that want to keep the value alive past
// the scope that allocated it call [Handle.Ref] to take additional
// references, and [Handle.Cleanup] (or [Cleanup]) to drop one. When the
// count reaches zero the destructor supplied at allocation time runs
// exactly once, after which the handle is permanently invalid.
//
// # Basic usage
//
//	h, err := refcount.Allocate("payload", refcount.AllocOptions{
//	    Kind: refcount.KindMutex,
//	})
//	if err != nil {
//	    // handle allocation failure
//	}
//	defer h.Cleanup()
//
//	h.Lock(refcount.RequestWrite)
//	defer h.Unlock()
//
// # Concurrency
//
// Each handle carries its own lock, chosen at allocation time from
// [KindNone], [KindMutex], or [KindRWLock]. [Handle.Ref] never blocks and
// never takes the embedded lock; it is always safe to call from inside a
// critical section guarded by that same lock.
//
// # Error handling
//
// Operations on a handle whose reference count has already reached zero, or
// on the zero [Handle], return [ErrInvalidHandle]. Allocation with an
// unrecognized [Kind] returns [ErrInvalidOptions]. Both are checked with
// [errors.Is].
package refcount
