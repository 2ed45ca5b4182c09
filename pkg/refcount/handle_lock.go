package refcount

import "sync"

// Lock acquires the handle's embedded lock at the given strength. It
// returns [ErrInvalidHandle] if h is not valid; otherwise it blocks until
// the lock is acquired and always returns nil.
func (h Handle) Lock(req Request) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	h.obj.lock.Lock(req)
	debugOnLockAcquired()
	return nil
}

// TryLock attempts to acquire the handle's embedded lock without
// blocking. It reports false both on contention and on an invalid handle.
func (h Handle) TryLock(req Request) bool {
	if !h.Valid() {
		return false
	}
	ok := h.obj.lock.TryLock(req)
	if ok {
		debugOnLockAcquired()
	}
	return ok
}

// Unlock releases the handle's embedded lock. It is a no-op on an invalid
// handle, since there is nothing left to unlock.
func (h Handle) Unlock() {
	if !h.Valid() {
		return
	}
	h.obj.lock.Unlock()
	debugOnLockReleased()
}

// AdjustLock is the cornerstone of safe recursion documented in
// [locker.Adjust]: the caller already holds h's lock at some level; if
// the handle's [Kind] is [KindRWLock] and the current level differs from
// desired, the lock is released and re-acquired at the new level, unless
// keepStronger is true and the current level is already RequestWrite. It
// returns the level the lock was at before the call, so the caller can
// restore it with [Handle.RestoreLock].
//
// For [KindNone] and [KindMutex] this is a no-op and the reported original
// level is always RequestWrite.
func (h Handle) AdjustLock(desired Request, keepStronger bool) Request {
	if !h.Valid() {
		return RequestWrite
	}
	return h.obj.lock.Adjust(desired, keepStronger)
}

// RestoreLock flips the handle's lock back to orig if [Handle.AdjustLock]
// moved it away. Calling it with a level the lock is already at is a
// no-op.
func (h Handle) RestoreLock(orig Request) {
	if !h.Valid() {
		return
	}
	h.obj.lock.restoreAfterAdjust(orig)
}

// LockAddress returns the address of the embedded mutex if h's [Kind] is
// [KindMutex], so external callers can coordinate with condition-variable
// style waits. It returns nil for every other kind, including an invalid
// handle.
func (h Handle) LockAddress() *sync.Mutex {
	if !h.Valid() {
		return nil
	}
	return h.obj.lock.mutexAddr()
}
