package container

import (
	"fmt"
	"io"

	"github.com/nexasip/refcount/pkg/refcount"
)

// bucket is one slot of a hashContainer: a doubly linked list of nodes,
// kept in sort order when the container has a sort function, plus its
// devmode occupancy counters.
type bucket struct {
	head, tail *node
	debug      bucketDebug
}

// hashContainer is the only non-placeholder [variant]. With nBuckets set
// to 1 and hashFn nil it degenerates into a plain sorted (or unsorted)
// list, which is exactly how [NewList] is implemented.
type hashContainer struct {
	c        *Container
	hashFn   HashFunc
	nBuckets int
	buckets  []bucket
}

func hashZero(any, SearchFlags) int { return 0 }

// NewHash constructs a hash-bucket [Container]. A nil hashFn forces
// nBuckets to 1 (every entry hashes to the same bucket, yielding a single
// sorted or unsorted list). lockKind selects the embedded lock variant
// guarding the container's structure; sortFn orders entries within a
// bucket (nil means unsorted, new entries always land at the configured
// [InsertEnd]); cmpFn backs [Container.Find].
func NewHash(lockKind refcount.Kind, opts Options, nBuckets int, hashFn HashFunc, sortFn, cmpFn CompareFunc) (*Container, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if nBuckets <= 0 {
		return nil, ErrInvalidOptions
	}
	if hashFn == nil {
		nBuckets = 1
		hashFn = hashZero
	}

	c := &Container{
		lockKind: lockKind,
		sortFn:   sortFn,
		cmpFn:    cmpFn,
		opts:     opts,
	}
	hc := &hashContainer{
		c:        c,
		hashFn:   hashFn,
		nBuckets: nBuckets,
		buckets:  make([]bucket, nBuckets),
	}
	c.v = hc

	handle, err := refcount.Allocate(c, refcount.AllocOptions{
		Destructor: containerDestructor,
		Kind:       lockKind,
	})
	if err != nil {
		return nil, err
	}
	c.handle = handle
	refcount.IncrementContainers()

	return c, nil
}

// NewList builds a single-bucket [Container] — a plain sorted or
// unsorted list, depending on whether sortFn is supplied.
func NewList(lockKind refcount.Kind, opts Options, sortFn, cmpFn CompareFunc) (*Container, error) {
	return NewHash(lockKind, opts, 1, nil, sortFn, cmpFn)
}

func (hc *hashContainer) bucketIndexFor(arg any, flags SearchFlags) int {
	h := hc.hashFn(arg, flags)
	if h < 0 {
		h = -h
	}
	if hc.nBuckets <= 0 {
		return 0
	}
	return h % hc.nBuckets
}

type insertOutcome int

const (
	insertRejected insertOutcome = iota
	insertInserted
	insertReplaced
)

// link acquires the container's write lock (directly, or via AdjustLock
// when FlagNoLock is set), allocates a node for obj, and splices it into
// the right bucket according to the sort function and duplicate policy.
// On rejection or replacement the freshly allocated node is disposed —
// its container back-pointer is cleared first so its destructor does not
// try to unlink a node that was never (or no longer) spliced in.
func (hc *hashContainer) link(obj refcount.Handle, flags SearchFlags) (bool, error) {
	idx := hc.bucketIndexFor(obj, 0)

	if flags&FlagNoLock != 0 {
		orig := hc.c.handle.AdjustLock(refcount.RequestWrite, false)
		defer hc.c.handle.RestoreLock(orig)
	} else {
		if err := hc.c.handle.Lock(refcount.RequestWrite); err != nil {
			return false, err
		}
		defer hc.c.handle.Unlock()
	}

	n, err := newNode(hc.c, idx, obj)
	if err != nil {
		return false, err
	}

	switch hc.linkInsert(idx, n) {
	case insertInserted:
		hc.buckets[idx].debug.onInsert()
		hc.c.count.Add(1)
		return true, nil
	case insertReplaced:
		n.container = refcount.Handle{}
		n.handle.Cleanup()
		return true, nil
	default:
		n.container = refcount.Handle{}
		n.handle.Cleanup()
		return false, nil
	}
}

// linkInsert splices n into bucket idx, honoring the configured sort
// function, insertion end, and duplicate policy. Grounded on astobj2.c's
// hash_ao2_link_insert: an unsorted bucket always inserts at the
// configured end; a sorted bucket scans from one end looking for the
// first entry that is not "before" n, in the direction fixed by
// InsertEnd, handling an equal-ranked collision per DupPolicy.
func (hc *hashContainer) linkInsert(idx int, n *node) insertOutcome {
	b := &hc.buckets[idx]
	sortFn := hc.c.sortFn

	if sortFn == nil {
		if hc.c.opts.InsertEnd == InsertHead {
			spliceAtHead(b, n)
		} else {
			spliceAtTail(b, n)
		}
		return insertInserted
	}

	if hc.c.opts.InsertEnd == InsertHead {
		for cur := b.tail; cur != nil; cur = cur.prev {
			if cur.tombstone() {
				continue
			}
			cmp := sortFn(cur.obj, n.obj, 0)
			switch {
			case cmp > 0:
				continue
			case cmp < 0:
				spliceAfter(b, cur, n)
				return insertInserted
			default:
				if out, done := hc.resolveDuplicate(cur, n); done {
					return out
				}
			}
		}
		spliceAtHead(b, n)
		return insertInserted
	}

	for cur := b.head; cur != nil; cur = cur.next {
		if cur.tombstone() {
			continue
		}
		cmp := sortFn(cur.obj, n.obj, 0)
		switch {
		case cmp < 0:
			continue
		case cmp > 0:
			spliceBefore(b, cur, n)
			return insertInserted
		default:
			if out, done := hc.resolveDuplicate(cur, n); done {
				return out
			}
		}
	}
	spliceAtTail(b, n)
	return insertInserted
}

// resolveDuplicate handles an equal-ranked collision between the
// existing node cur and the candidate n, per the container's DupPolicy.
// It reports done=false when the policy lets n sit beside cur (DupAllow,
// or DupRejectObject with a different object); the caller then keeps
// scanning past the equal-ranked run, so n lands at the end of that run
// nearest the configured InsertEnd.
func (hc *hashContainer) resolveDuplicate(cur, n *node) (insertOutcome, bool) {
	switch hc.c.opts.DupPolicy {
	case DupRejectKey:
		return insertRejected, true
	case DupRejectObject:
		if cur.obj == n.obj {
			return insertRejected, true
		}
	case DupReplace:
		cur.obj, n.obj = n.obj, cur.obj
		return insertReplaced, true
	}
	return insertInserted, false
}

func spliceAtHead(b *bucket, n *node) {
	n.next = b.head
	n.prev = nil
	if b.head != nil {
		b.head.prev = n
	} else {
		b.tail = n
	}
	b.head = n
}

func spliceAtTail(b *bucket, n *node) {
	n.prev = b.tail
	n.next = nil
	if b.tail != nil {
		b.tail.next = n
	} else {
		b.head = n
	}
	b.tail = n
}

func spliceAfter(b *bucket, cur, n *node) {
	n.prev = cur
	n.next = cur.next
	if cur.next != nil {
		cur.next.prev = n
	} else {
		b.tail = n
	}
	cur.next = n
}

func spliceBefore(b *bucket, cur, n *node) {
	n.next = cur
	n.prev = cur.prev
	if cur.prev != nil {
		cur.prev.next = n
	} else {
		b.head = n
	}
	cur.prev = n
}

// removeFromBucket splices n out of its bucket's list. Called only from
// nodeDestructor, always under the container's write lock.
func (hc *hashContainer) removeFromBucket(n *node) {
	if n.bucketIdx < 0 || n.bucketIdx >= len(hc.buckets) {
		return
	}
	b := &hc.buckets[n.bucketIdx]

	if n.prev != nil {
		n.prev.next = n.next
	} else {
		b.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		b.tail = n.prev
	}
	b.debug.onRemove()
}

func (hc *hashContainer) destroy() {
	hc.buckets = nil
}

func (hc *hashContainer) allocEmptyClone() (*Container, error) {
	return NewHash(hc.c.lockKind, hc.c.opts, hc.nBuckets, hc.hashFn, hc.c.sortFn, hc.c.cmpFn)
}

func (hc *hashContainer) stats(w io.Writer) {
	reportBuckets(w, hc.buckets)
}

// check walks every bucket verifying link consistency and bucket-index
// bookkeeping, then cross-checks the live node count against the
// container's own element counter.
func (hc *hashContainer) check() error {
	total := 0
	for idx := range hc.buckets {
		b := &hc.buckets[idx]
		var prev *node
		for cur := b.head; cur != nil; cur = cur.next {
			if cur.bucketIdx != idx {
				return fmt.Errorf("container: node in bucket %d records bucket %d", idx, cur.bucketIdx)
			}
			if cur.prev != prev {
				return fmt.Errorf("container: node in bucket %d has an inconsistent prev link", idx)
			}
			if !cur.tombstone() {
				total++
			}
			prev = cur
		}
		if b.tail != prev {
			return fmt.Errorf("container: bucket %d tail pointer is inconsistent", idx)
		}
	}
	if total != hc.c.Count() {
		return fmt.Errorf("container: element count %d does not match live node count %d", hc.c.Count(), total)
	}
	return nil
}
