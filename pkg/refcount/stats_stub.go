//go:build !refcount_devmode

package refcount

// DebugStats is a snapshot of the optional global counters. Builds
// without the refcount_devmode tag never collect them; [Stats] always
// returns the zero value.
type DebugStats struct {
	TotalObjects    int64
	TotalBytes      int64
	TotalContainers int64
	TotalActiveRefs int64
	TotalHeldLocks  int64
}

// Stats returns the zero [DebugStats] in builds without the
// refcount_devmode tag.
func Stats() DebugStats {
	return DebugStats{}
}

// IncrementContainers is a no-op outside devmode builds.
func IncrementContainers() {}

// DecrementContainers is a no-op outside devmode builds.
func DecrementContainers() {}

func debugOnAllocate(int64)  {}
func debugOnFree(int64)      {}
func debugOnRef(int64)       {}
func debugOnLockAcquired()   {}
func debugOnLockReleased()   {}
