package container

import "github.com/nexasip/refcount/pkg/refcount"

// node is a small reference-counted object belonging to exactly one
// bucket's doubly linked list while its container back-pointer is
// non-null. Its destructor removes it from that list (upgrading the
// container lock to write if necessary) and drops the contained object.
//
// A node's own initial allocation reference represents "owned by its
// bucket position" — linking a node into a bucket never itself bumps its
// refcount. An [Iterator] pinning a node takes an additional reference,
// which is what keeps a tombstone (obj cleared) alive after it has been
// unlinked from the container's element total.
type node struct {
	handle refcount.Handle

	// container is a weak back-pointer: a plain copy of the owning
	// container's handle, never Ref'd. The node does not contribute a
	// reference to its container; container destruction is the sole
	// driver of node destruction, never the reverse.
	container refcount.Handle

	bucketIdx int

	// obj is the stored object. An invalid (zero) obj marks a tombstone:
	// the node no longer counts toward the container's element total but
	// is kept alive only by whatever pinned it (normally an iterator).
	obj refcount.Handle

	prev, next *node
}

// newNode allocates a node owning one reference on obj, for insertion
// into bucketIdx of c. The returned node's handle carries the initial
// "owned by bucket position" reference.
func newNode(c *Container, bucketIdx int, obj refcount.Handle) (*node, error) {
	n := &node{
		container: c.handle,
		bucketIdx: bucketIdx,
	}
	h, err := refcount.Allocate(n, refcount.AllocOptions{
		Destructor: nodeDestructor,
		Kind:       refcount.KindNone,
	})
	if err != nil {
		return nil, err
	}
	n.handle = h

	if _, err := obj.Ref(1); err != nil {
		h.Cleanup()
		return nil, err
	}
	n.obj = obj

	return n, nil
}

// tombstone reports whether n's payload has been cleared.
func (n *node) tombstone() bool {
	return !n.obj.Valid()
}

// nodeDestructor runs when a node's reference count reaches zero. It is
// registered as the Destructor for every node's [refcount.Handle], so it
// always receives the *node it is attached to.
func nodeDestructor(payload any) {
	n := payload.(*node)

	if n.container.Valid() {
		orig := n.container.AdjustLock(refcount.RequestWrite, true)
		if cp, err := n.container.Payload(); err == nil {
			if c, ok := cp.(*Container); ok {
				if hc, ok := c.v.(*hashContainer); ok {
					hc.removeFromBucket(n)
				}
			}
		}
		n.container.RestoreLock(orig)
	}

	if n.obj.Valid() {
		n.obj.Cleanup()
	}

	n.container = refcount.Handle{}
	n.obj = refcount.Handle{}
	n.prev, n.next = nil, nil
}
