// Package block implements the heap block behind a shared string buffer:
// a single pooled allocation holding an atomic reference count, a capacity
// field, and capacity bytes of inline storage immediately after the header.
// Length is not tracked here; each handle keeps its own committed length.
package block

import (
	"sync/atomic"
	"unsafe"

	"github.com/quickwritereader/cowstr/pool"
)

// Block is the header at the start of the allocation. The byte storage is
// not a field: it is the remainder of the pooled buffer the header was
// placed in. Capacity is fixed for the block's lifetime; growth always
// allocates a new block.
type Block struct {
	refs     atomic.Int64
	capacity int
}

const headerSize = int(unsafe.Sizeof(Block{}))

var backing = pool.New()

// Alloc returns a block with a reference count of 1 and the given buffer
// capacity, carved out of a pooled allocation of
// pool.Extent(headerSize+capacity) bytes. Buffer contents are undefined.
// Panics if capacity is negative.
func Alloc(capacity int) *Block {
	if capacity < 0 {
		panic("block: negative capacity")
	}
	raw := backing.Acquire(headerSize + capacity)
	b := (*Block)(unsafe.Pointer(unsafe.SliceData(raw)))
	b.refs.Store(1)
	b.capacity = capacity
	return b
}

// Dealloc returns the block's allocation to the pool. The extent is
// recomputed from the stored capacity and matches the number Alloc got,
// because pool.Extent is a pure function of the request size. The caller
// guarantees the reference count has reached zero and no handle still
// points at the block.
func (b *Block) Dealloc() {
	if debugChecks {
		assertf(b.refs.Load() == 0, "block: dealloc with refcount %d", b.refs.Load())
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(b)), pool.Extent(headerSize+b.capacity))
	backing.Release(raw)
}

// Capacity returns the size of the byte storage.
func (b *Block) Capacity() int { return b.capacity }

// Bytes returns the full capacity-length byte region. Treat as read-only
// while the block may be shared.
func (b *Block) Bytes() []byte {
	return unsafe.Slice(b.bufferPtr(), b.capacity)
}

// MutableBytes returns the byte region for writing. The caller must have
// established exclusivity first (TryExclusive, or a freshly allocated
// block nothing else has seen) and must keep any committed prefix valid
// UTF-8.
func (b *Block) MutableBytes() []byte {
	if debugChecks {
		assertf(b.refs.Load() <= 1, "block: mutable view of shared block, refcount %d", b.refs.Load())
	}
	return unsafe.Slice(b.bufferPtr(), b.capacity)
}

func (b *Block) bufferPtr() *byte {
	return (*byte)(unsafe.Add(unsafe.Pointer(b), headerSize))
}

// IncRef increments the reference count and returns the previous value.
func (b *Block) IncRef() int64 { return b.refs.Add(1) - 1 }

// DecRef decrements the reference count and returns the previous value.
// The caller that observes 1 released the last reference and must Dealloc.
// Go atomics are sequentially consistent, so the store/load ordering the
// final free depends on needs no extra fence here.
func (b *Block) DecRef() int64 { return b.refs.Add(-1) + 1 }

// TryExclusive attempts to claim sole ownership by swapping a count of 1
// to 0. On success the caller must ReleaseExclusive before the block can
// be shared or dropped again; the count must never rest at 0 while a
// handle exists.
func (b *Block) TryExclusive() bool { return b.refs.CompareAndSwap(1, 0) }

// ReleaseExclusive restores the count a successful TryExclusive parked at 0.
func (b *Block) ReleaseExclusive() { b.refs.Store(1) }

// Refs reports the current reference count. Inherently racy outside of
// quiescent states; meant for tests and diagnostics.
func (b *Block) Refs() int64 { return b.refs.Load() }
