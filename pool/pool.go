// Package pool hands out word-aligned byte buffers in power-of-two size
// classes. It is the backing allocator for heap blocks: callers overlay a
// header containing atomics at offset 0, so every buffer starts on an
// 8-byte boundary regardless of target.
package pool

import (
	"math/bits"
	"sync"
	"unsafe"
)

// SizeClass lists the pooled allocation sizes, 64 B through 32 KiB.
var SizeClass = [...]int{64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768}

const (
	minClass = 64
	maxClass = 32768
)

// ClassIndex returns the index of the smallest class that fits n,
// or -1 if n is outside the pooled range.
func ClassIndex(n int) int {
	if n <= 0 || n > maxClass {
		return -1
	}
	idx := bits.Len(uint(n))
	if idx < 7 {
		return 0
	}
	if n&(n-1) == 0 {
		return idx - 7
	}
	return idx - 6
}

// Extent returns the number of bytes actually handed out for an n-byte
// request: the class size when pooled, n rounded up to a word otherwise.
// The mapping is a pure function of n, so a caller that can reproduce the
// request size later can Release without retaining the buffer length.
func Extent(n int) int {
	if idx := ClassIndex(n); idx >= 0 {
		return SizeClass[idx]
	}
	return alignWord(n)
}

func alignWord(n int) int { return (n + 7) &^ 7 }

// alignedBytes allocates n bytes (n a multiple of 8) over a []uint64
// backing array, guaranteeing 8-byte alignment of the base address.
func alignedBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	words := make([]uint64, n/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}

// Pool is a set of sync.Pools, one per size class.
type Pool struct {
	pools [len(SizeClass)]sync.Pool
}

func New() *Pool {
	var p Pool
	for i, sz := range SizeClass {
		size := sz
		p.pools[i].New = func() any {
			b := alignedBytes(size)
			return &b
		}
	}
	return &p
}

// Acquire returns a buffer of exactly Extent(n) bytes for an n-byte
// request. Contents are undefined; the caller initializes what it uses.
func (p *Pool) Acquire(n int) []byte {
	idx := ClassIndex(n)
	if idx < 0 {
		return alignedBytes(alignWord(n))
	}
	bufPtr := p.pools[idx].Get().(*[]byte)
	return *bufPtr
}

// Release returns a buffer to its class pool. The length must be the full
// extent Acquire handed out; anything not matching a class is left for
// the GC.
func (p *Pool) Release(buf []byte) {
	n := len(buf)
	if n < minClass || n > maxClass || n&(n-1) != 0 {
		return // not a pooled extent
	}
	p.pools[bits.Len(uint(n))-7].Put(&buf)
}
