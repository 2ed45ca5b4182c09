package container

import "github.com/nexasip/refcount/pkg/refcount"

// DupPolicy selects how a container handles a link whose key or object
// already has an equal-ranked entry present, per the sort function
// configured at construction.
type DupPolicy int

const (
	// DupAllow links the new entry alongside any existing equal-ranked
	// entries.
	DupAllow DupPolicy = iota

	// DupRejectKey rejects the link if any existing entry compares
	// equal under the sort function, regardless of object identity.
	DupRejectKey

	// DupRejectObject rejects the link only if an existing entry that
	// compares equal is also the same object (by handle identity).
	DupRejectObject

	// DupReplace swaps the new object in for the existing equal-ranked
	// entry; the displaced object is dropped, receiving exactly one
	// [refcount.Handle.Cleanup].
	DupReplace
)

func (p DupPolicy) valid() bool {
	return p >= DupAllow && p <= DupReplace
}

// InsertEnd selects which end of a sorted bucket a new entry is inserted
// from, which in turn determines where it lands among equal-ranked
// entries.
type InsertEnd int

const (
	// InsertTail scans front-to-back and inserts toward the tail.
	InsertTail InsertEnd = iota

	// InsertHead scans back-to-front and inserts toward the head.
	InsertHead
)

// Options configures a [Container]'s duplicate handling and insertion
// end. The zero value (DupAllow, InsertTail) is always valid.
type Options struct {
	DupPolicy DupPolicy
	InsertEnd InsertEnd
}

// Validate reports [ErrInvalidOptions] if DupPolicy is outside the four
// recognized values. Unknown bits are never silently treated as
// DupAllow.
func (o Options) Validate() error {
	if !o.DupPolicy.valid() {
		return ErrInvalidOptions
	}
	return nil
}

// SearchFlags composes the traversal-time options accepted by
// [Container.Callback], [Container.CallbackWithData], [Container.Link],
// and [Container.Unlink].
type SearchFlags uint32

const (
	// FlagPointer means arg identifies the target by object identity;
	// the container's hash function is used to narrow the search to one
	// bucket.
	FlagPointer SearchFlags = 1 << iota

	// FlagKey means arg is a key (rather than a full object); like
	// FlagPointer, it narrows the search to one bucket via the hash
	// function.
	FlagKey

	// FlagUnlink removes matched entries from the container as they are
	// visited.
	FlagUnlink

	// FlagNoData suppresses taking a reference on matched objects; used
	// when the caller only wants the side effects (typically combined
	// with FlagUnlink).
	FlagNoData

	// FlagMultiple collects every match into a transient container and
	// returns it through an [Iterator], instead of returning at most one
	// match directly.
	FlagMultiple

	// FlagContinue, combined with FlagPointer or FlagKey, wraps the scan
	// around to every other bucket after exhausting the hashed one,
	// instead of stopping there.
	FlagContinue

	// FlagNoLock means the caller already holds the container's lock at
	// the strength this operation needs; the operation adjusts to it via
	// [refcount.Handle.AdjustLock] instead of acquiring it directly.
	FlagNoLock
)

// Order selects traversal direction. Pre and Post are the aliases the
// source convention uses alongside Ascending and Descending; they carry
// identical meaning here.
type Order int

const (
	OrderAscending  Order = iota
	OrderDescending

	// OrderPre is an alias for OrderAscending.
	OrderPre = OrderAscending

	// OrderPost is an alias for OrderDescending.
	OrderPost = OrderDescending
)

// IteratorFlags configures [IteratorInit].
type IteratorFlags uint32

const (
	// IterDontLock means the caller already holds the container's lock;
	// [Iterator.Next] adjusts instead of acquiring it directly.
	IterDontLock IteratorFlags = 1 << iota

	// IterUnlink makes each [Iterator.Next] call remove the returned
	// entry from the container, transferring its reference to the
	// caller instead of adding a new one.
	IterUnlink

	// IterDescending iterates high-to-low instead of low-to-high.
	IterDescending

	// IterMalloc marks the iterator as heap-allocated. Every [Iterator]
	// in this package already lives on the heap by Go's own escape
	// analysis; the flag is kept only so callers porting option bitmasks
	// from the source contract have a symbol to set without it meaning
	// anything different.
	IterMalloc
)

// MatchResult is the bit set a [MatchFunc] returns to report its
// disposition on the current entry.
type MatchResult uint32

const (
	// MatchHit means the current entry should be treated as a match.
	MatchHit MatchResult = 1 << iota

	// MatchStop means the traversal should end after processing the
	// current entry (whether or not MatchHit is also set).
	MatchStop
)

// MatchFunc is invoked once per visited entry during a traversal. obj is
// the stored object's handle (call [refcount.Handle.Payload] to inspect
// its data); arg is the caller-supplied search target — an object
// handle, a key, or caller data, depending on which flags are set. A nil
// MatchFunc behaves as an always-match callback.
type MatchFunc func(obj refcount.Handle, arg any, flags SearchFlags) MatchResult

// CompareFunc orders a stored object against arg, returning a negative
// number if obj sorts before arg, zero if they are equal-ranked, and a
// positive number otherwise.
//
// A container holds two independent CompareFunc values playing two
// different roles. The sort function orders entries within a bucket: at
// link time, arg is the object being inserted (a [refcount.Handle]
// boxed in arg, flags is zero); during a hashed traversal's sort
// shortcut, arg is whatever the caller passed to [Container.Callback]
// and flags carries FlagKey/FlagPointer so the function knows how to
// interpret it. The find function plays the same role for
// [Container.Find]: an ordering of zero is treated as a match.
//
// Implementations that only ever compare full objects can ignore flags
// and always assert arg to a [refcount.Handle]; implementations that
// also support keyed lookups switch on flags to decide whether to
// extract a key from arg.(refcount.Handle) or use arg directly.
type CompareFunc func(obj refcount.Handle, arg any, flags SearchFlags) int

// HashFunc computes a non-negative bucket hash. At link time it is
// called with a [refcount.Handle] boxed in arg and flags zero; during a
// keyed traversal it is called with the caller's search argument and
// flags carrying FlagKey or FlagPointer, so the function knows whether
// to treat arg as a full object or extract a key from it directly.
//
// A nil HashFunc forces the container to one bucket with a
// constant-zero hash, yielding a single sorted list.
type HashFunc func(arg any, flags SearchFlags) int

// MatchByPointer is a ready-made [MatchFunc] performing pointer-identity
// comparison between arg and obj. It is used internally by
// [Container.Unlink] and exported for callers building their own
// traversals that want "this exact object" semantics without writing a
// comparator.
func MatchByPointer(obj refcount.Handle, arg any, _ SearchFlags) MatchResult {
	if target, ok := arg.(refcount.Handle); ok && obj == target {
		return MatchHit | MatchStop
	}
	return 0
}
