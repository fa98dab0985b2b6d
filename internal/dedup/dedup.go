// Package dedup implements the ADB writer's content-interning table (spec
// §3.5): a fixed-size array of hash buckets, each a chain of
// fixed-capacity entries recording where a previously written byte
// sequence lives in the arena, so that writing the same bytes twice
// returns the same offset.
package dedup

// entriesPerBucket bounds how many distinct hash collisions a single
// bucket node holds before a new chain node is appended. The original C
// implementation sizes this to fit one allocator page; any small constant
// preserves the algorithm's observable behavior (spec Testable Property 2
// only constrains that identical bytes at matching alignment return the
// same offset, not the physical chain shape).
const entriesPerBucket = 14

// Entry records one previously-written payload: its content hash, byte
// length, required alignment, and arena offset.
type Entry struct {
	Hash  uint32
	Len   uint32
	Align uint32
	Offs  uint32
}

type bucketNode struct {
	entries [entriesPerBucket]Entry
	n       int
	next    *bucketNode
}

// Table is a hash-bucketed interning table, constructed with New. The zero
// Table has no buckets and behaves like New(0).
type Table struct {
	buckets []bucketNode
}

// New returns a Table with the given number of buckets. numBuckets == 0
// yields a Table whose Lookup always misses and whose Insert is a no-op,
// matching a static (non-growable) database's "skip interning" behavior
// (spec §4.3).
func New(numBuckets int) *Table {
	if numBuckets <= 0 {
		return &Table{}
	}
	return &Table{buckets: make([]bucketNode, numBuckets)}
}

// Lookup searches for a prior entry matching hash, length, and align,
// reporting via equal (called with the candidate's offset) whether the
// bytes at that offset actually match the caller's candidate — the
// table itself retains no copy of the bytes (spec §4.3 "Interning
// w_data": reuse on (hash, len, bytes, alignment) match).
func (t *Table) Lookup(hash, length, align uint32, equal func(offs uint32) bool) (offs uint32, found bool) {
	if len(t.buckets) == 0 {
		return 0, false
	}
	b := &t.buckets[hash%uint32(len(t.buckets))]
	for node := b; node != nil; node = node.next {
		for i := 0; i < node.n; i++ {
			e := node.entries[i]
			if e.Hash != hash || e.Len != length || e.Align != align {
				continue
			}
			if equal(e.Offs) {
				return e.Offs, true
			}
		}
	}
	return 0, false
}

// Insert records a new entry for hash/length/align at offs. It is a
// no-op on a zero-bucket Table (static databases).
func (t *Table) Insert(hash, length, align, offs uint32) {
	if len(t.buckets) == 0 {
		return
	}
	b := &t.buckets[hash%uint32(len(t.buckets))]
	node := b
	for {
		if node.n < entriesPerBucket {
			node.entries[node.n] = Entry{Hash: hash, Len: length, Align: align, Offs: offs}
			node.n++
			return
		}
		if node.next == nil {
			node.next = &bucketNode{}
		}
		node = node.next
	}
}

// Reset clears every bucket chain in place, as when a writable Database's
// arena is truncated back to empty (spec §3.6 Reset).
func (t *Table) Reset() {
	for i := range t.buckets {
		t.buckets[i] = bucketNode{}
	}
}

// Hash computes the 32-bit DJB-variant hash the writer uses to bucket and
// compare candidate payloads (spec §4.3: seed 5381, h = h*33 ^ byte),
// folded over one or more fragments so multi-fragment writes (a length
// prefix followed by its bytes) hash identically to the pre-concatenated
// whole.
func Hash(fragments ...[]byte) (hash uint32, length uint32) {
	h := uint32(5381)
	var n uint32
	for _, f := range fragments {
		for _, b := range f {
			h = h*33 ^ uint32(b)
		}
		n += uint32(len(f))
	}
	return h, n
}
