package container

import "github.com/nexasip/refcount/pkg/refcount"

// alwaysMatch is used in place of a nil [MatchFunc]: it reports every
// visited entry as a hit without requesting early termination.
func alwaysMatch(refcount.Handle, any, SearchFlags) MatchResult {
	return MatchHit
}

// shortcutDecision interprets a sort-function comparison during a hashed
// traversal. cmp is sortFn(cur, arg): negative means cur sorts before
// arg, positive means after. A bucket's nodes are always kept in
// ascending order head-to-tail regardless of InsertEnd, so the skip/break
// sense flips with the walk direction.
func shortcutDecision(cmp int, descending bool) (skip, brk bool) {
	if !descending {
		switch {
		case cmp < 0:
			return true, false
		case cmp > 0:
			return false, true
		default:
			return false, false
		}
	}
	switch {
	case cmp > 0:
		return true, false
	case cmp < 0:
		return false, true
	default:
		return false, false
	}
}

func allBucketsOrder(n int, descending bool) []int {
	order := make([]int, n)
	if descending {
		for i := 0; i < n; i++ {
			order[i] = n - 1 - i
		}
	} else {
		for i := 0; i < n; i++ {
			order[i] = i
		}
	}
	return order
}

// wrapAroundOrder returns every bucket index starting at start and
// wrapping around through the rest, in the direction the scan is already
// moving: ascending continues start, start+1, …, n-1, 0, …, start-1;
// descending continues start, start-1, …, 0, n-1, …, start+1.
func wrapAroundOrder(start, n int, descending bool) []int {
	order := make([]int, 0, n)
	if !descending {
		for i := 0; i < n; i++ {
			order = append(order, (start+i)%n)
		}
		return order
	}
	for i := 0; i < n; i++ {
		order = append(order, ((start-i)%n+n)%n)
	}
	return order
}

// traverse is the hash container's implementation of the [variant]
// traversal contract, grounded on astobj2.c's hash_ao2_callback: it
// resolves the search space (one hashed bucket, every bucket, or a
// hashed bucket plus wraparound under FlagContinue), walks it in the
// direction order selects, applies the sort-function shortcut when
// possible, and processes each hit per FlagNoData/FlagUnlink/FlagMultiple.
func (hc *hashContainer) traverse(arg any, match MatchFunc, flags SearchFlags, order Order) (traverseResult, error) {
	c := hc.c
	multiMode := flags&FlagMultiple != 0 && flags&FlagNoData == 0

	var multi *Container
	if multiMode {
		var err error
		multi, err = NewList(refcount.KindNone, Options{}, nil, nil)
		if err != nil {
			return traverseResult{}, err
		}
	}

	effectiveMatch := match
	if effectiveMatch == nil {
		effectiveMatch = alwaysMatch
	}

	hashed := flags&(FlagPointer|FlagKey) != 0
	descending := order == OrderDescending
	needWrite := flags&FlagUnlink != 0

	if flags&FlagNoLock != 0 {
		desired := refcount.RequestRead
		if needWrite {
			desired = refcount.RequestWrite
		}
		orig := c.handle.AdjustLock(desired, false)
		defer c.handle.RestoreLock(orig)
	} else {
		if needWrite {
			_ = c.handle.Lock(refcount.RequestWrite)
		} else {
			_ = c.handle.Lock(refcount.RequestRead)
		}
		defer c.handle.Unlock()
	}

	var bucketIdxs []int
	if hashed {
		start := hc.bucketIndexFor(arg, flags)
		if flags&FlagContinue == 0 {
			bucketIdxs = []int{start}
		} else {
			bucketIdxs = wrapAroundOrder(start, hc.nBuckets, descending)
		}
	} else {
		bucketIdxs = allBucketsOrder(hc.nBuckets, descending)
	}

	var single refcount.Handle
	stop := false

outer:
	for _, bi := range bucketIdxs {
		b := &hc.buckets[bi]
		var cur *node
		if descending {
			cur = b.tail
		} else {
			cur = b.head
		}

		for cur != nil {
			var adv *node
			if descending {
				adv = cur.prev
			} else {
				adv = cur.next
			}

			if cur.tombstone() {
				cur = adv
				continue
			}

			if c.sortFn != nil && hashed {
				cmp := c.sortFn(cur.obj, arg, flags)
				skip, brk := shortcutDecision(cmp, descending)
				if brk {
					break
				}
				if skip {
					cur = adv
					continue
				}
			}

			res := effectiveMatch(cur.obj, arg, flags)

			if res&MatchHit != 0 {
				obj := cur.obj

				if flags&FlagNoData == 0 {
					if multiMode {
						if _, err := multi.v.link(obj, FlagNoLock); err != nil {
							multi.Cleanup()
							return traverseResult{}, err
						}
					} else {
						if _, err := obj.Ref(1); err != nil {
							return traverseResult{}, err
						}
						single = obj
					}
				}

				if flags&FlagUnlink != 0 {
					c.count.Add(-1)
					obj.Cleanup()
					cur.obj = refcount.Handle{}
					cur.handle.Cleanup()
				}
			}

			if res&MatchStop != 0 {
				stop = true
			}

			cur = adv
			if stop {
				break outer
			}
		}
	}

	if multiMode {
		iter := IteratorInit(multi, 0)
		multi.Cleanup()
		return traverseResult{iter: iter}, nil
	}

	return traverseResult{single: single}, nil
}

// iteratorNext finds the node following last in iteration order
// (container-wide, not narrowed to one bucket), skipping tombstones. A
// nil last means "start of the container" in that order.
func (hc *hashContainer) iteratorNext(last *node, descending bool) *node {
	var bi int
	var cur *node

	if last == nil {
		if descending {
			bi = hc.nBuckets - 1
		} else {
			bi = 0
		}
		if bi >= 0 && bi < hc.nBuckets {
			if descending {
				cur = hc.buckets[bi].tail
			} else {
				cur = hc.buckets[bi].head
			}
		}
	} else {
		bi = last.bucketIdx
		if descending {
			cur = last.prev
		} else {
			cur = last.next
		}
	}

	for {
		for cur != nil {
			if !cur.tombstone() {
				return cur
			}
			if descending {
				cur = cur.prev
			} else {
				cur = cur.next
			}
		}
		if descending {
			bi--
		} else {
			bi++
		}
		if bi < 0 || bi >= hc.nBuckets {
			return nil
		}
		if descending {
			cur = hc.buckets[bi].tail
		} else {
			cur = hc.buckets[bi].head
		}
	}
}
