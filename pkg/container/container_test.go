package container_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexasip/refcount/pkg/container"
	"github.com/nexasip/refcount/pkg/refcount"
)

// stringPayload wraps a string so destructor side effects can be observed.
type stringPayload struct {
	s string
}

func allocString(t *testing.T, s string, destroyed *[]string) refcount.Handle {
	t.Helper()
	h, err := refcount.Allocate(&stringPayload{s: s}, refcount.AllocOptions{
		Size: 80,
		Destructor: func(p any) {
			sp := p.(*stringPayload)
			*destroyed = append(*destroyed, sp.s)
		},
	})
	require.NoError(t, err)
	return h
}

// hashFirstByte hashes by the first byte of the stored string, matching
// spec.md scenario 2's "hash = first byte" configuration.
func hashFirstByte(arg any, flags container.SearchFlags) int {
	s := keyOf(arg, flags)
	if s == "" {
		return 0
	}
	return int(s[0])
}

func sortStrings(obj refcount.Handle, arg any, flags container.SearchFlags) int {
	a := objString(obj)
	b := keyOf(arg, flags)
	return strings.Compare(a, b)
}

func cmpStrings(obj refcount.Handle, arg any, flags container.SearchFlags) int {
	return sortStrings(obj, arg, flags)
}

func objString(h refcount.Handle) string {
	p, err := h.Payload()
	if err != nil {
		return ""
	}
	return p.(*stringPayload).s
}

// keyOf extracts a comparable string key from arg, whether arg is a raw
// string key (FlagKey/FlagPointer traversal, or Find) or a refcount.Handle
// (link-time sort calls, where arg is the object being inserted).
func keyOf(arg any, _ container.SearchFlags) string {
	switch v := arg.(type) {
	case string:
		return v
	case refcount.Handle:
		return objString(v)
	default:
		return ""
	}
}

func matchHasPrefix(prefix string) container.MatchFunc {
	return func(obj refcount.Handle, _ any, _ container.SearchFlags) container.MatchResult {
		if strings.HasPrefix(objString(obj), prefix) {
			return container.MatchHit
		}
		return 0
	}
}

// --- spec.md §8 scenario 1: mutex list, simple lifecycle ---

func Test_Scenario_Mutex_List_Simple_Lifecycle(t *testing.T) {
	c, err := container.NewList(refcount.KindMutex, container.Options{}, nil, nil)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	a := allocString(t, "a", &destroyed)
	b := allocString(t, "b", &destroyed)
	d := allocString(t, "d", &destroyed)

	for _, h := range []refcount.Handle{a, b, d} {
		inserted, err := c.Link(h, 0)
		require.NoError(t, err)
		require.True(t, inserted)
		h.Cleanup()
	}

	require.Equal(t, 3, c.Count())

	c.Cleanup()
	require.ElementsMatch(t, []string{"a", "b", "d"}, destroyed)
}

// --- spec.md §8 scenario 2: hash insert with reject-key ---

func Test_Scenario_Hash_Insert_Reject_Key(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{DupPolicy: container.DupRejectKey},
		7, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	ant1 := allocString(t, "ant", &destroyed)
	and := allocString(t, "and", &destroyed)
	ant2 := allocString(t, "ant", &destroyed)

	inserted, err := c.Link(ant1, 0)
	require.NoError(t, err)
	require.True(t, inserted)
	ant1.Cleanup()

	inserted, err = c.Link(and, 0)
	require.NoError(t, err)
	require.True(t, inserted)
	and.Cleanup()

	inserted, err = c.Link(ant2, 0)
	require.NoError(t, err)
	require.False(t, inserted)
	ant2.Cleanup()

	require.Equal(t, 2, c.Count())
}

// --- spec.md §8 scenario 3: hash insert with replace ---

func Test_Scenario_Hash_Insert_Replace(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{DupPolicy: container.DupReplace},
		7, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	first := allocString(t, "ant", &destroyed)
	second := allocString(t, "ant", &destroyed)

	inserted, err := c.Link(first, 0)
	require.NoError(t, err)
	require.True(t, inserted)
	first.Cleanup()

	inserted, err = c.Link(second, 0)
	require.NoError(t, err)
	require.True(t, inserted)
	second.Cleanup()

	require.Equal(t, []string{"ant"}, destroyed)
	require.Equal(t, 1, c.Count())

	found, err := c.Find("ant", container.FlagKey)
	require.NoError(t, err)
	require.True(t, found.Valid())
	defer found.Cleanup()

	p, err := found.Payload()
	require.NoError(t, err)
	require.Same(t, second.MustPayload(), p)
}

// --- spec.md §8 scenario 4: unlink during iterate ---

func Test_Scenario_Unlink_During_Iterate(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{}, 4, hashFirstByte, nil, nil)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	keys := make([]string, 10)
	for i := range keys {
		keys[i] = string(rune('a' + i))
	}

	for _, k := range keys {
		h := allocString(t, k, &destroyed)
		inserted, err := c.Link(h, 0)
		require.NoError(t, err)
		require.True(t, inserted)
		h.Cleanup()
	}
	require.Equal(t, 10, c.Count())

	it := container.IteratorInit(c, 0)
	step := 0
	for {
		obj, ok := it.Next()
		if !ok {
			break
		}
		if step%2 == 1 {
			require.NoError(t, c.Unlink(obj, 0))
		}
		obj.Cleanup()
		step++
	}
	it.Destroy()

	require.Equal(t, 5, c.Count())
}

// --- spec.md §8 scenario 5: multiple match to iterator ---

func Test_Scenario_Multiple_Match_To_Iterator(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{}, 8, nil, nil, nil)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	inputs := []string{"pear", "apple", "plum", "banana", "peach"}
	for _, s := range inputs {
		h := allocString(t, s, &destroyed)
		inserted, err := c.Link(h, 0)
		require.NoError(t, err)
		require.True(t, inserted)
		h.Cleanup()
	}

	_, it, err := c.Callback(nil, matchHasPrefix("p"), container.FlagMultiple, container.OrderAscending)
	require.NoError(t, err)
	require.NotNil(t, it)

	var got []string
	for {
		obj, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, objString(obj))
		obj.Cleanup()
	}
	it.Destroy()

	sort.Strings(got)
	require.Equal(t, []string{"peach", "pear", "plum"}, got)

	require.Equal(t, 5, c.Count())
}

// --- invariants from spec.md §8 ---

func Test_Link_Then_Find_Returns_Same_Object_Unlink_Then_Find_Returns_Null(t *testing.T) {
	c, err := container.NewHash(refcount.KindNone, container.Options{}, 4, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	h := allocString(t, "key", &destroyed)
	inserted, err := c.Link(h, 0)
	require.NoError(t, err)
	require.True(t, inserted)

	found, err := c.Find("key", container.FlagKey)
	require.NoError(t, err)
	require.True(t, found.Valid())
	require.Same(t, h.MustPayload(), found.MustPayload())
	found.Cleanup()

	require.NoError(t, c.Unlink(h, 0))
	h.Cleanup()

	found, err = c.Find("key", container.FlagKey)
	require.NoError(t, err)
	require.False(t, found.Valid())
}

func Test_Clone_Has_Equal_Count_And_Same_Object_Pointers(t *testing.T) {
	src, err := container.NewHash(refcount.KindMutex, container.Options{}, 4, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer src.Cleanup()

	var destroyed []string
	var originals []any
	for _, s := range []string{"cat", "cot", "cup"} {
		h := allocString(t, s, &destroyed)
		_, err := src.Link(h, 0)
		require.NoError(t, err)
		originals = append(originals, h.MustPayload())
		h.Cleanup()
	}

	clone, err := src.Clone()
	require.NoError(t, err)
	defer clone.Cleanup()

	require.Equal(t, src.Count(), clone.Count())

	for _, orig := range originals {
		s := orig.(*stringPayload).s
		found, err := clone.Find(s, container.FlagKey)
		require.NoError(t, err)
		require.True(t, found.Valid())
		require.Same(t, orig, found.MustPayload())
		found.Cleanup()
	}
}

func Test_Dup_Is_Transactional_On_Rejection(t *testing.T) {
	src, err := container.NewHash(refcount.KindMutex, container.Options{}, 4, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer src.Cleanup()

	var destroyed []string
	for _, s := range []string{"one", "two"} {
		h := allocString(t, s, &destroyed)
		_, err := src.Link(h, 0)
		require.NoError(t, err)
		h.Cleanup()
	}

	dst, err := container.NewHash(refcount.KindMutex, container.Options{DupPolicy: container.DupRejectKey},
		4, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer dst.Cleanup()

	// Pre-seed dst with an entry that collides on key with one of src's
	// elements, so Dup's first or second link will fail partway through.
	seed := allocString(t, "two", &destroyed)
	inserted, err := dst.Link(seed, 0)
	require.NoError(t, err)
	require.True(t, inserted)
	seed.Cleanup()

	err = src.Dup(dst, 0)
	require.Error(t, err)

	// dst must end up exactly where it started: only the pre-seeded entry.
	require.Equal(t, 1, dst.Count())
	found, err := dst.Find("two", container.FlagKey)
	require.NoError(t, err)
	require.True(t, found.Valid())
	found.Cleanup()

	found, err = dst.Find("one", container.FlagKey)
	require.NoError(t, err)
	require.False(t, found.Valid())
}

func Test_Iterator_Pins_Node_Across_Concurrent_Unlink(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{}, 1, nil, nil, nil)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	h := allocString(t, "only", &destroyed)
	_, err = c.Link(h, 0)
	require.NoError(t, err)
	h.Cleanup()

	it := container.IteratorInit(c, 0)
	obj, ok := it.Next()
	require.True(t, ok)

	// Unlink drops the container's own reference on obj and tombstones
	// the node, but the node struct itself survives: the iterator still
	// pins it. Only the caller's own reference (held by obj here) is
	// left on the object, so the destructor has not run yet.
	require.NoError(t, c.Unlink(obj, 0))
	require.Empty(t, destroyed)
	require.Equal(t, 0, c.Count())

	// Destroying the iterator drops its pin on the tombstoned node,
	// finally removing it from its bucket. The object is unaffected —
	// the caller's own reference is a separate count from the node's.
	it.Destroy()
	require.Empty(t, destroyed)

	obj.Cleanup()
	require.Equal(t, []string{"only"}, destroyed)
}

func Test_Container_Destroy_Runs_Destructor_For_Every_Remaining_Element(t *testing.T) {
	c, err := container.NewHash(refcount.KindRWLock, container.Options{}, 3, hashFirstByte, nil, nil)
	require.NoError(t, err)

	var destroyed []string
	for _, s := range []string{"x", "y", "z"} {
		h := allocString(t, s, &destroyed)
		_, err := c.Link(h, 0)
		require.NoError(t, err)
		h.Cleanup()
	}

	c.Cleanup()
	require.ElementsMatch(t, []string{"x", "y", "z"}, destroyed)
}

func Test_NewHash_Rejects_Non_Positive_Bucket_Count(t *testing.T) {
	_, err := container.NewHash(refcount.KindNone, container.Options{}, 0, hashFirstByte, nil, nil)
	require.ErrorIs(t, err, container.ErrInvalidOptions)
}

func Test_NewHash_Rejects_Unknown_Dup_Policy(t *testing.T) {
	_, err := container.NewHash(refcount.KindNone, container.Options{DupPolicy: container.DupPolicy(99)}, 1, nil, nil, nil)
	require.ErrorIs(t, err, container.ErrInvalidOptions)
}

func Test_Check_Reports_No_Error_On_A_Healthy_Container(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{}, 4, hashFirstByte, sortStrings, cmpStrings)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	for _, s := range []string{"i", "ii", "iii"} {
		h := allocString(t, s, &destroyed)
		_, err := c.Link(h, 0)
		require.NoError(t, err)
		h.Cleanup()
	}

	require.NoError(t, c.Check())
}

// Test_Callback_FlagContinue_Wraps_In_Scan_Direction exercises
// FlagKey|FlagContinue's bucket wraparound in both orders. Each letter
// hashes to its own bucket via hashFirstByte mod 5, so the order the
// multi-container collects matches is exactly the bucket visit order.
func Test_Callback_FlagContinue_Wraps_In_Scan_Direction(t *testing.T) {
	c, err := container.NewHash(refcount.KindMutex, container.Options{}, 5, hashFirstByte, nil, nil)
	require.NoError(t, err)
	defer c.Cleanup()

	var destroyed []string
	for _, s := range []string{"A", "B", "C", "D", "E"} {
		h := allocString(t, s, &destroyed)
		inserted, err := c.Link(h, 0)
		require.NoError(t, err)
		require.True(t, inserted)
		h.Cleanup()
	}

	collect := func(order container.Order) []string {
		_, it, err := c.Callback("C", matchHasPrefix(""),
			container.FlagKey|container.FlagContinue|container.FlagMultiple, order)
		require.NoError(t, err)
		require.NotNil(t, it)

		var got []string
		for {
			obj, ok := it.Next()
			if !ok {
				break
			}
			got = append(got, objString(obj))
			obj.Cleanup()
		}
		it.Destroy()
		return got
	}

	// "C" hashes to bucket 2. Ascending wraps 2,3,4,0,1; descending wraps
	// 2,1,0,4,3 — the mirror image, not another ascending rotation.
	require.Equal(t, []string{"C", "D", "E", "A", "B"}, collect(container.OrderAscending))
	require.Equal(t, []string{"C", "B", "A", "E", "D"}, collect(container.OrderDescending))
}

func Test_Tree_Placeholder_Reports_Not_Implemented(t *testing.T) {
	_, err := container.NewTree(refcount.KindNone, container.Options{}, nil, nil)
	require.ErrorIs(t, err, container.ErrNotImplemented)
}
