package container

import (
	"io"
	"strconv"
	"sync/atomic"

	"github.com/nexasip/refcount/pkg/refcount"
)

// variant is the method table a concrete container implementation
// supplies: destroy, clone-empty, link, traverse, iterator-next, stats,
// and integrity check. [Container] is a thin dispatcher over whichever
// variant it was constructed with ([NewHash], [NewList], or the
// placeholder [NewTree]).
type variant interface {
	destroy()
	allocEmptyClone() (*Container, error)
	link(obj refcount.Handle, flags SearchFlags) (inserted bool, err error)
	traverse(arg any, match MatchFunc, flags SearchFlags, order Order) (traverseResult, error)
	iteratorNext(last *node, descending bool) *node
	stats(w io.Writer)
	check() error
}

// traverseResult carries a traversal's outcome: either a single matched
// handle, or — when FlagMultiple is set without FlagNoData — an
// [Iterator] over a transient container holding every match.
type traverseResult struct {
	single refcount.Handle
	iter   *Iterator
}

// Container is a polymorphic, reference-counted collection of
// [refcount.Handle] values. A Container is itself allocated through
// [refcount.Allocate] (its own handle's payload is the *Container), so it
// is Ref'd and cleaned up exactly like any other object.
type Container struct {
	handle   refcount.Handle
	v        variant
	lockKind refcount.Kind

	sortFn CompareFunc
	cmpFn  CompareFunc

	opts Options

	count      atomic.Int64
	destroying atomic.Bool

	logger refcount.Logger
}

// Handle returns c's own refcounted handle, for callers that need to pass
// the container itself where a [refcount.Handle] is expected (for
// example, nesting one container's lifetime inside another's).
func (c *Container) Handle() refcount.Handle {
	return c.handle
}

// Ref takes delta additional references on c. See [refcount.Handle.Ref].
func (c *Container) Ref(delta int) (prior int, err error) {
	return c.handle.Ref(delta)
}

// Cleanup drops one reference on c, per [refcount.Handle.Cleanup].
func (c *Container) Cleanup() {
	c.handle.Cleanup()
}

// Count returns the current element count. This is a racy, lock-free
// read: no lock is acquired, matching the source contract's explicit
// allowance for an approximate answer under concurrent mutation.
func (c *Container) Count() int {
	return int(c.count.Load())
}

// Link inserts obj, subject to the container's [DupPolicy]. It reports
// true if the object was inserted or replaced an existing entry, and
// false on duplicate rejection — matching the source convention of
// reporting rejection as a zero return rather than an error. A non-nil
// error is reserved for genuine failures (an invalid obj, or allocation
// failure for the internal node).
func (c *Container) Link(obj refcount.Handle, flags SearchFlags) (bool, error) {
	if !obj.Valid() {
		return false, ErrInvalidHandle
	}
	return c.v.link(obj, flags)
}

// Unlink removes obj from c: it is a convenience wrapper over
// [Container.Callback] with [MatchByPointer] and FlagUnlink|FlagPointer|
// FlagNoData, per the source contract.
func (c *Container) Unlink(obj refcount.Handle, flags SearchFlags) error {
	_, _, err := c.Callback(obj, MatchByPointer, flags|FlagUnlink|FlagPointer|FlagNoData, OrderAscending)
	return err
}

// Callback runs the traversal with match over the search space selected
// by flags and order. A nil match behaves as an always-match callback. It
// returns either a single matched handle (the common case) or, when
// FlagMultiple is set without FlagNoData, an [Iterator] over every match.
func (c *Container) Callback(arg any, match MatchFunc, flags SearchFlags, order Order) (refcount.Handle, *Iterator, error) {
	res, err := c.v.traverse(arg, match, flags, order)
	if err != nil {
		return refcount.Handle{}, nil, err
	}
	return res.single, res.iter, nil
}

// DataArg bundles a search target with caller-supplied data for
// [Container.CallbackWithData].
type DataArg struct {
	Target any
	Data   any
}

// CallbackWithData is [Container.Callback] with an extra data value
// bundled alongside the search target via [DataArg]. In the source
// contract this exists so the matcher can distinguish the search target
// from arbitrary caller data without confusing the two; in Go a closure
// could do the same job, but this keeps the two-argument contract
// explicit for callers that port matchers mechanically from that
// convention.
func (c *Container) CallbackWithData(target, data any, match MatchFunc, flags SearchFlags, order Order) (refcount.Handle, *Iterator, error) {
	return c.Callback(DataArg{Target: target, Data: data}, match, flags, order)
}

// Find looks up arg using the container's stored find comparator (set at
// construction). An ordering of zero is treated as a match.
func (c *Container) Find(arg any, flags SearchFlags) (refcount.Handle, error) {
	if c.cmpFn == nil {
		return refcount.Handle{}, nil
	}
	cmp := c.cmpFn
	match := func(obj refcount.Handle, arg any, flags SearchFlags) MatchResult {
		if cmp(obj, arg, flags) == 0 {
			return MatchHit | MatchStop
		}
		return 0
	}
	h, _, err := c.Callback(arg, match, flags, OrderAscending)
	return h, err
}

// Clone allocates an empty container with the same option flags,
// hash/sort/compare functions, and bucket count as c, then [Container.Dup]s
// c's contents into it.
func (c *Container) Clone() (*Container, error) {
	dst, err := c.v.allocEmptyClone()
	if err != nil {
		return nil, err
	}
	if err := c.Dup(dst, 0); err != nil {
		dst.Cleanup()
		return nil, err
	}
	return dst, nil
}

// Dup locks c read and dst write (unless FlagNoLock is set, in which case
// both are assumed already held at a sufficient level) and links every
// element of c into dst. On any link failure the partial content of dst
// is rolled back — removed in full — and the failure is reported, so
// either every element of c ends up in dst or none do.
func (c *Container) Dup(dst *Container, flags SearchFlags) error {
	if flags&FlagNoLock != 0 {
		origSrc := c.handle.AdjustLock(refcount.RequestRead, true)
		defer c.handle.RestoreLock(origSrc)

		origDst := dst.handle.AdjustLock(refcount.RequestWrite, true)
		defer dst.handle.RestoreLock(origDst)
	} else {
		if err := c.handle.Lock(refcount.RequestRead); err != nil {
			return err
		}
		defer c.handle.Unlock()

		if err := dst.handle.Lock(refcount.RequestWrite); err != nil {
			return err
		}
		defer dst.handle.Unlock()
	}

	_, iter, err := c.Callback(nil, nil, FlagMultiple|FlagNoLock, OrderAscending)
	if err != nil {
		return err
	}
	if iter == nil {
		return nil
	}
	defer iter.Destroy()

	linked := make([]refcount.Handle, 0, c.Count())
	for {
		obj, ok := iter.Next()
		if !ok {
			break
		}
		inserted, linkErr := dst.v.link(obj, FlagNoLock)
		if linkErr == nil && !inserted {
			linkErr = ErrDuplicateRejected
		}
		if linkErr != nil {
			obj.Cleanup()
			for _, l := range linked {
				_ = dst.Unlink(l, FlagNoLock)
			}
			return linkErr
		}
		// dst.v.link took its own reference; drop the one iter.Next gave us.
		obj.Cleanup()
		linked = append(linked, obj)
	}
	return nil
}

// Check runs the variant's integrity method under a read lock, if the
// variant supplies one. There is no FlagNoLock variant of Check: it
// always acquires the lock itself.
func (c *Container) Check() error {
	if err := c.handle.Lock(refcount.RequestRead); err != nil {
		return err
	}
	defer c.handle.Unlock()
	return c.v.check()
}

// Stats writes the element count, and for hash containers the per-bucket
// occupancy report, to w. Bucket-level detail is only populated in
// builds compiled with the container_devmode build tag.
func (c *Container) Stats(w io.Writer) error {
	if _, err := io.WriteString(w, "elements: "); err != nil {
		return err
	}
	if _, err := io.WriteString(w, strconv.Itoa(c.Count())); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	c.v.stats(w)
	return nil
}

func containerDestructor(payload any) {
	c := payload.(*Container)
	c.destroying.Store(true)

	_, _ = c.v.traverse(nil, nil, FlagUnlink|FlagNoData|FlagMultiple, OrderAscending)

	c.v.destroy()
	refcount.DecrementContainers()
}
