//go:build refcount_devmode

package refcount

import "sync/atomic"

// DebugStats is a snapshot of the optional global counters described in
// the runtime's observability contract: total objects, total bytes, total
// containers, total active references, and total currently held locks.
// It is only meaningfully populated in builds compiled with the
// refcount_devmode build tag; other builds always return the zero value.
type DebugStats struct {
	TotalObjects    int64
	TotalBytes      int64
	TotalContainers int64
	TotalActiveRefs int64
	TotalHeldLocks  int64
}

var (
	totalObjects    atomic.Int64
	totalBytes      atomic.Int64
	totalContainers atomic.Int64
	totalActiveRefs atomic.Int64
	totalHeldLocks  atomic.Int64
)

// Stats returns the current values of the global debug counters.
func Stats() DebugStats {
	return DebugStats{
		TotalObjects:    totalObjects.Load(),
		TotalBytes:      totalBytes.Load(),
		TotalContainers: totalContainers.Load(),
		TotalActiveRefs: totalActiveRefs.Load(),
		TotalHeldLocks:  totalHeldLocks.Load(),
	}
}

// IncrementContainers is called by pkg/container on successful allocation
// of a new container, since container identity lives outside this
// package.
func IncrementContainers() {
	totalContainers.Add(1)
}

// DecrementContainers is called by pkg/container when a container's
// destructor runs.
func DecrementContainers() {
	totalContainers.Add(-1)
}

func debugOnAllocate(size int64) {
	totalObjects.Add(1)
	totalBytes.Add(size)
}

func debugOnFree(size int64) {
	totalObjects.Add(-1)
	totalBytes.Add(-size)
}

func debugOnRef(delta int64) {
	totalActiveRefs.Add(delta)
}

func debugOnLockAcquired() {
	totalHeldLocks.Add(1)
}

func debugOnLockReleased() {
	totalHeldLocks.Add(-1)
}
