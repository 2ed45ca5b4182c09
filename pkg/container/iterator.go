package container

import "github.com/nexasip/refcount/pkg/refcount"

// Iterator walks a [Container]'s elements in the order fixed at
// [IteratorInit] time. It holds an owning reference on the container for
// its entire lifetime, plus a pinning reference on whichever node it
// most recently returned — which is what keeps a tombstoned node (one
// [Iterator.Next] has already unlinked under IterUnlink) alive until the
// iterator advances past it or is destroyed.
type Iterator struct {
	containerHandle refcount.Handle
	last            *node
	descending      bool
	noLock          bool
	unlink          bool
}

// IteratorInit takes a reference on c and returns an [Iterator] over it.
// flags selects direction (IterDescending), removal-as-you-go
// (IterUnlink), and whether the caller already holds c's lock
// (IterDontLock).
func IteratorInit(c *Container, flags IteratorFlags) *Iterator {
	_, _ = c.handle.Ref(1)
	return &Iterator{
		containerHandle: c.handle,
		descending:      flags&IterDescending != 0,
		noLock:          flags&IterDontLock != 0,
		unlink:          flags&IterUnlink != 0,
	}
}

// Next returns the next element, or ok=false once the container is
// exhausted. Under IterUnlink, the returned handle carries the
// reference the container itself held — the element is removed from the
// container as part of this call, rather than Next adding a fresh
// reference.
func (it *Iterator) Next() (refcount.Handle, bool) {
	desired := refcount.RequestRead
	if it.unlink {
		desired = refcount.RequestWrite
	}

	if it.noLock {
		orig := it.containerHandle.AdjustLock(desired, false)
		defer it.containerHandle.RestoreLock(orig)
	} else {
		_ = it.containerHandle.Lock(desired)
		defer it.containerHandle.Unlock()
	}

	cp, err := it.containerHandle.Payload()
	if err != nil {
		return refcount.Handle{}, false
	}
	c := cp.(*Container)

	n := c.v.iteratorNext(it.last, it.descending)
	if n == nil {
		return refcount.Handle{}, false
	}

	var result refcount.Handle
	if it.unlink {
		result = n.obj
		c.count.Add(-1)
		n.obj = refcount.Handle{}
		// Pin before drop: the node's bucket-position reference is
		// dropped here, but the pin taken just below keeps it alive,
		// now held solely by this iterator.
		_, _ = n.handle.Ref(1)
		n.handle.Cleanup()
	} else {
		result = n.obj
		_, _ = result.Ref(1)
		_, _ = n.handle.Ref(1)
	}

	if it.last != nil {
		it.last.handle.Cleanup()
	}
	it.last = n

	return result, true
}

// Destroy drops the iterator's pinned node, if any, and its reference on
// the container. An [Iterator] must not be used after Destroy.
func (it *Iterator) Destroy() {
	if it.last != nil {
		desired := refcount.RequestRead
		if it.noLock {
			orig := it.containerHandle.AdjustLock(desired, true)
			it.last.handle.Cleanup()
			it.containerHandle.RestoreLock(orig)
		} else {
			_ = it.containerHandle.Lock(desired)
			it.last.handle.Cleanup()
			it.containerHandle.Unlock()
		}
		it.last = nil
	}
	it.containerHandle.Cleanup()
}

// IteratorCleanup is the package-level convenience form of
// [Iterator.Destroy], safe to call on a nil iterator.
func IteratorCleanup(it *Iterator) {
	if it == nil {
		return
	}
	it.Destroy()
}
