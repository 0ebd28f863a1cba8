package filechannel

import (
	"unsafe"
)

// header is the fixed-size state block at the start of the mapped file.
// After Open it lives inside the mapping itself, so every mutation goes
// straight to the file. closed persists: a channel closed for writing
// stays closed across process restarts.
type header struct {
	headSize int64
	itemSize int64
	capacity int64
	recvIdx  int64
	count    int64
	closed   int64
}

func newHeader(capacity int, itemSize int) *header {
	h := &header{
		capacity: int64(capacity),
		itemSize: int64(itemSize),
	}
	h.headSize = int64(unsafe.Sizeof(*h))

	return h
}

func (h header) fileSize() int64 {
	return h.headSize + h.capacity*h.itemSize
}
