// Package cow implements an atomically reference-counted, copy-on-write
// string buffer. Clone is O(1) and allocation-free; mutation first proves
// the handle is the sole referent of its block (or splits off a private
// copy), so handles that alias a block never observe each other's edits.
// Committed content is valid UTF-8 at every observable point.
//
// The zero value is not usable; construct handles with New. Ownership is
// explicit: share with Clone, release with Drop. The last Drop returns the
// block to the allocation pool.
package cow

import (
	"unsafe"

	"github.com/quickwritereader/cowstr/block"
)

// maxRefCount is a soft ceiling on live handles per block, near the
// signed-range bound. Crossing it is a program defect, not a recoverable
// condition.
const maxRefCount = 1 << 62

// String is a two-word handle: the committed length plus the block
// pointer. Copying the struct directly bypasses the reference count; use
// Clone.
type String struct {
	len int
	b   *block.Block
}

// New builds a handle over a fresh block sized len(text)+additional, with
// text copied in. The extra capacity is reserve space for anticipated
// growth, left uncommitted. Panics if additional is negative.
func New(text string, additional int) String {
	if additional < 0 {
		panic("cow: negative additional capacity")
	}
	b := block.Alloc(len(text) + additional)
	copy(b.MutableBytes(), text)
	return String{len: len(text), b: b}
}

// Clone returns a new handle over the same block: no allocation, no byte
// copy, just a reference count increment. Panics if the count has reached
// maxRefCount.
func (s *String) Clone() String {
	if prev := s.b.IncRef(); prev >= maxRefCount {
		panic("cow: reference count exceeded maxRefCount")
	}
	return String{len: s.len, b: s.b}
}

// Drop releases this handle's reference; the last Drop frees the block.
// The handle must not be used afterwards.
func (s *String) Drop() {
	b := s.b
	s.b = nil
	if b.DecRef() != 1 {
		return
	}
	b.Dealloc()
}

// Len returns the committed length in bytes.
func (s *String) Len() int { return s.len }

// Cap returns the block's buffer capacity in bytes.
func (s *String) Cap() int { return s.b.Capacity() }

// Bytes returns the committed content. The slice aliases the block: it is
// invalidated by any mutating call and by Drop, and must be treated as
// read-only while other handles share the block.
func (s *String) Bytes() []byte {
	return s.b.Bytes()[:s.len:s.len]
}

// String returns the committed content as a string without copying, under
// the same aliasing contract as Bytes. The content is always valid UTF-8.
func (s *String) String() string {
	if s.len == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(s.b.Bytes()), s.len)
}

// EqualString reports whether the committed content equals t.
func (s *String) EqualString(t string) bool {
	return s.String() == t
}
