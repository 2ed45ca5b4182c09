// Package container provides a polymorphic, reference-counted container
// abstraction over [refcount.Handle] values, plus a concrete hash-bucket
// implementation that also serves as a degenerate single-bucket ordered
// list when constructed with one bucket.
//
// A [Container] is itself a refcounted object (see [Container.Ref] and
// [Container.Cleanup]): linking wraps a stored handle in an internal node,
// also refcounted, and attaches it to a bucket. Traversal walks nodes,
// invoking a caller-supplied [MatchFunc], honoring [SearchFlags] to
// filter, unlink, or collect multiple results into a transient container
// exposed through an [Iterator].
//
// # Basic usage
//
//	c, err := container.NewHash(refcount.KindRWLock, container.Options{}, 7, hashString, sortString, cmpString)
//	if err != nil {
//	    // handle allocation failure
//	}
//	defer c.Cleanup()
//
//	obj, _ := refcount.Allocate("ant", refcount.AllocOptions{})
//	c.Link(obj, 0)
//	obj.Cleanup() // container now holds the only remaining reference
//
//	found, _ := c.Find("ant", 0)
//	defer found.Cleanup()
//
// # Concurrency
//
// All synchronization is through the container's own embedded lock
// (chosen at construction time via the same [refcount.Kind] enumeration
// used for plain objects). [Container.Count] is a racy, lock-free read;
// every other operation acquires the lock at the strength its contract
// requires unless the caller passes [FlagNoLock], in which case the
// caller is expected to already hold it and the operation adjusts to the
// strength it needs via [refcount.Handle.AdjustLock].
//
// # Error handling
//
// [Container.Link] follows the source system's convention of reporting
// duplicate rejection as a boolean-style zero return rather than an error,
// matching [errors.Is]-checkable behavior for genuine failures
// ([ErrInvalidOptions], [ErrNotImplemented]) through the few operations
// that can actually fail.
package container
