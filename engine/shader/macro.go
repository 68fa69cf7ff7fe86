// package shader holds the narrow interface to the external shader/material
// system: macro (shader variant flag) bookkeeping and reference-counted
// per-object shader data blocks. Program compilation and uniform upload are
// backend concerns and are not implemented here.
package shader

import (
	"sync"
)

// Macro is the registered index of a shader macro name. Macros are interned
// process-wide so that macro sets can be represented as bitsets and unioned
// in O(words) time.
type Macro uint32

var (
	macroMu    sync.RWMutex
	macroIDs   = make(map[string]Macro)
	macroNames []string
)

// DeclareMacro interns a macro name and returns its stable index. Calling
// it again with the same name returns the same index.
//
// Parameters:
//   - name: the macro name as it appears in shader source
//
// Returns:
//   - Macro: the interned macro index
func DeclareMacro(name string) Macro {
	macroMu.Lock()
	defer macroMu.Unlock()

	if m, ok := macroIDs[name]; ok {
		return m
	}
	m := Macro(len(macroNames))
	macroIDs[name] = m
	macroNames = append(macroNames, name)
	return m
}

// MacroName returns the name a macro index was declared with, or the empty
// string for an unknown index.
//
// Parameters:
//   - m: the macro index
//
// Returns:
//   - string: the declared name
func MacroName(m Macro) string {
	macroMu.RLock()
	defer macroMu.RUnlock()

	if int(m) >= len(macroNames) {
		return ""
	}
	return macroNames[m]
}

// MacroSet is a growable bitset of declared macros. The zero value is an
// empty set ready for use.
type MacroSet struct {
	words []uint64
}

// Add inserts a macro into the set.
//
// Parameters:
//   - m: the macro to add
func (s *MacroSet) Add(m Macro) {
	word := int(m >> 6)
	for len(s.words) <= word {
		s.words = append(s.words, 0)
	}
	s.words[word] |= 1 << (m & 63)
}

// Remove deletes a macro from the set. Removing an absent macro is a no-op.
//
// Parameters:
//   - m: the macro to remove
func (s *MacroSet) Remove(m Macro) {
	word := int(m >> 6)
	if word < len(s.words) {
		s.words[word] &^= 1 << (m & 63)
	}
}

// Has reports whether the set contains a macro.
//
// Parameters:
//   - m: the macro to test
//
// Returns:
//   - bool: true if present
func (s *MacroSet) Has(m Macro) bool {
	word := int(m >> 6)
	return word < len(s.words) && s.words[word]&(1<<(m&63)) != 0
}

// UnionWith merges every macro of other into the receiver.
//
// Parameters:
//   - other: the set to union in (nil safe)
func (s *MacroSet) UnionWith(other *MacroSet) {
	if other == nil {
		return
	}
	for len(s.words) < len(other.words) {
		s.words = append(s.words, 0)
	}
	for i, w := range other.words {
		s.words[i] |= w
	}
}

// SetFrom replaces the receiver's contents with a copy of other's.
//
// Parameters:
//   - other: the set to copy (nil clears the receiver)
func (s *MacroSet) SetFrom(other *MacroSet) {
	s.words = s.words[:0]
	if other == nil {
		return
	}
	s.words = append(s.words, other.words...)
}

// Clear empties the set without releasing its backing storage.
func (s *MacroSet) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// Count returns the number of macros in the set.
//
// Returns:
//   - int: the set cardinality
func (s *MacroSet) Count() int {
	n := 0
	for _, w := range s.words {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}

// Hash returns a 64-bit key for the set's contents, suitable for caching
// compiled program variants per macro combination.
//
// Returns:
//   - uint64: the FNV-1a hash of the set's words
func (s *MacroSet) Hash() uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	// Trailing zero words must not change the hash.
	top := len(s.words)
	for top > 0 && s.words[top-1] == 0 {
		top--
	}
	for _, w := range s.words[:top] {
		for i := 0; i < 8; i++ {
			h ^= (w >> (8 * i)) & 0xff
			h *= prime
		}
	}
	return h
}

// Equal reports whether two sets contain exactly the same macros.
//
// Parameters:
//   - other: the set to compare with (nil compares as empty)
//
// Returns:
//   - bool: true if equal
func (s *MacroSet) Equal(other *MacroSet) bool {
	var a, b []uint64
	a = s.words
	if other != nil {
		b = other.words
	}
	long, short := a, b
	if len(b) > len(a) {
		long, short = b, a
	}
	for i := range short {
		if long[i] != short[i] {
			return false
		}
	}
	for _, w := range long[len(short):] {
		if w != 0 {
			return false
		}
	}
	return true
}
