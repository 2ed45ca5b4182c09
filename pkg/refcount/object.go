package refcount

import (
	"sync/atomic"
)

// Destructor runs exactly once, when an object's reference count reaches
// zero. It receives the payload that was passed to [Allocate].
type Destructor func(payload any)

// AllocOptions configures [Allocate].
type AllocOptions struct {
	// Size records the payload's logical byte size for parity with the
	// header contract; it has no effect on how the payload is stored (Go
	// values are not laid out by this package) and defaults to the size
	// of one machine word if left at zero.
	Size int

	// Destructor runs once, when the reference count reaches zero. It
	// may be nil, meaning "nothing to do."
	Destructor Destructor

	// Kind selects the embedded lock variant. Defaults to KindNone.
	Kind Kind

	// Logger receives a diagnostic line when [Handle.Ref] drives the
	// reference count below zero. Operations on an invalid handle return
	// [ErrInvalidHandle] and are not logged. Defaults to a no-op logger.
	Logger Logger
}

const wordSize = 8

func (o AllocOptions) validate() error {
	if !o.Kind.valid() {
		return ErrInvalidOptions
	}
	if o.Size < 0 {
		return ErrInvalidOptions
	}
	return nil
}

// object is the header: reference count, destructor, option bookkeeping,
// and embedded lock. The magic constant of the language this runtime is
// modeled on has no equivalent in Go's type system, so liveness is tracked
// with an explicit flag instead: it is cleared before the payload and
// destructor are cleared, mirroring "header and first payload word zeroed
// before the block is freed."
type object struct {
	refcount atomic.Int32
	live     atomic.Bool

	destructor Destructor
	size       int
	kind       Kind
	logger     Logger

	lock locker

	payload any
}

// Handle is an opaque, comparable reference to an allocated object. The
// zero Handle is always invalid.
type Handle struct {
	obj *object
}

// Allocate creates a new object wrapping payload, with an initial
// reference count of 1. The returned [Handle] is that first reference;
// callers that want to retain the object past their own scope must take
// an additional reference with [Handle.Ref].
func Allocate(payload any, opts AllocOptions) (Handle, error) {
	if err := opts.validate(); err != nil {
		return Handle{}, err
	}
	size := opts.Size
	if size < wordSize {
		size = wordSize
	}
	obj := &object{
		destructor: opts.Destructor,
		size:       size,
		kind:       opts.Kind,
		logger:     logOf(opts.Logger),
		lock:       newLocker(opts.Kind),
		payload:    payload,
	}
	obj.refcount.Store(1)
	obj.live.Store(true)

	debugOnAllocate(int64(size))

	return Handle{obj: obj}, nil
}

// Valid reports whether h refers to a live object. A [Handle] becomes
// permanently invalid once its reference count reaches zero.
func (h Handle) Valid() bool {
	return h.obj != nil && h.obj.live.Load()
}

// Payload returns the value passed to [Allocate]. It returns
// [ErrInvalidHandle] if h is not valid.
func (h Handle) Payload() (any, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandle
	}
	return h.obj.payload, nil
}

// MustPayload is like [Handle.Payload] but panics on an invalid handle.
// It exists for call sites that have already established validity (for
// example, immediately after a successful [Allocate]) and would otherwise
// have to discard an error that cannot occur.
func (h Handle) MustPayload() any {
	p, err := h.Payload()
	if err != nil {
		panic(err)
	}
	return p
}

// Ref atomically adds delta to the reference count and returns the value
// the counter held before the add. A delta of zero is a legal read of the
// counter. If the result is zero, the destructor runs, the embedded lock
// is abandoned, and the handle becomes permanently invalid. A result below
// zero is logged but the destructor is not re-run.
func (h Handle) Ref(delta int) (prior int, err error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	obj := h.obj
	newVal := obj.refcount.Add(int32(delta))
	prior = int(newVal) - delta

	switch {
	case newVal == 0:
		// The destructor runs while the handle is still reported valid,
		// so it may keep using the object's own embedded lock (exactly
		// as the destructor of a container or node in this package's
		// sibling packages does). Liveness flips only once the
		// destructor has returned, mirroring "destructor runs, then the
		// header and first payload word are cleared."
		if obj.destructor != nil {
			obj.destructor(obj.payload)
		}
		obj.live.Store(false)
		obj.destructor = nil
		obj.payload = nil
		debugOnFree(int64(obj.size))
	case newVal < 0:
		obj.logger.Errorf("refcount: handle %p decremented below zero (now %d)", obj, newVal)
	}

	if delta != 0 {
		debugOnRef(int64(delta))
	}

	return prior, nil
}

// Cleanup drops one reference. It is a no-op on the zero [Handle].
func (h Handle) Cleanup() {
	if h.obj == nil {
		return
	}
	_, _ = h.Ref(-1)
}

// Cleanup is the package-level form of [Handle.Cleanup], convenient for
// defer statements where the handle variable may still be the zero value.
func Cleanup(h Handle) {
	h.Cleanup()
}
