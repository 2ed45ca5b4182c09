//go:build !container_devmode

package container

import "io"

// bucketDebug is zero-size outside container_devmode builds: per-bucket
// occupancy tracking costs nothing when not compiled in.
type bucketDebug struct{}

func (b *bucketDebug) onInsert() {}
func (b *bucketDebug) onRemove() {}

// reportBuckets is a no-op outside container_devmode builds; [Container.Stats]
// still reports the total element count, just without per-bucket detail.
func reportBuckets(w io.Writer, buckets []bucket) {}
