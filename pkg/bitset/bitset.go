// Package bitset provides a dynamically sized bitset over 64-bit words.
package bitset

import "math/bits"

const wordBits = 64

// Bitset is a growable set of bit positions backed by 64-bit words.
//
// Write operations grow the word storage as needed. Read operations
// never allocate: bits beyond the current storage read as zero, and
// negative positions read as zero and are ignored by writes. The zero
// value is an empty, ready-to-use set. A Bitset is not safe for
// concurrent use.
type Bitset struct {
	words []uint64
}

// New creates a Bitset pre-sized to address bits [0, n).
func New(n int) *Bitset {
	if n <= 0 {
		return &Bitset{}
	}
	return &Bitset{words: make([]uint64, (n+wordBits-1)/wordBits)}
}

// Set sets bit i to one.
func (b *Bitset) Set(i int) {
	if i < 0 {
		return
	}
	b.ensure(i)
	b.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Clear sets bit i to zero.
func (b *Bitset) Clear(i int) {
	if i < 0 || i/wordBits >= len(b.words) {
		return
	}
	b.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
}

// Flip inverts bit i.
func (b *Bitset) Flip(i int) {
	if i < 0 {
		return
	}
	b.ensure(i)
	b.words[i/wordBits] ^= 1 << (uint(i) % wordBits)
}

// Test reports whether bit i is one.
func (b *Bitset) Test(i int) bool {
	if i < 0 || i/wordBits >= len(b.words) {
		return false
	}
	return b.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Count returns the number of one bits.
func (b *Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Any reports whether at least one bit is set.
func (b *Bitset) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

// None reports whether no bit is set.
func (b *Bitset) None() bool {
	return !b.Any()
}

// Len returns the number of bits the set currently addresses
// without growing. Len is always a multiple of 64.
func (b *Bitset) Len() int {
	return len(b.words) * wordBits
}

// NextSet returns the position of the first one bit at or after from.
// The second result is false when no such bit exists.
func (b *Bitset) NextSet(from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	w := from / wordBits
	if w >= len(b.words) {
		return 0, false
	}
	word := b.words[w] &^ ((1 << (uint(from) % wordBits)) - 1)
	for {
		if word != 0 {
			return w*wordBits + bits.TrailingZeros64(word), true
		}
		w++
		if w >= len(b.words) {
			return 0, false
		}
		word = b.words[w]
	}
}

// NextClear returns the position of the first zero bit at or after
// from, searching within [from, Len()). The second result is false
// when every addressed bit from that position on is one, or when
// from is at or past Len().
func (b *Bitset) NextClear(from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	w := from / wordBits
	if w >= len(b.words) {
		return 0, false
	}
	word := ^b.words[w] &^ ((1 << (uint(from) % wordBits)) - 1)
	for {
		if word != 0 {
			return w*wordBits + bits.TrailingZeros64(word), true
		}
		w++
		if w >= len(b.words) {
			return 0, false
		}
		word = ^b.words[w]
	}
}

// ensure grows storage so bit i is addressable.
func (b *Bitset) ensure(i int) {
	need := i/wordBits + 1
	if need <= len(b.words) {
		return
	}
	grown := make([]uint64, need)
	copy(grown, b.words)
	b.words = grown
}
