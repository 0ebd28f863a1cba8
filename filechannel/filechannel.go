// Package filechannel implements a buffered byte channel whose ring
// buffer lives in a memory-mapped file. Values sent into the channel
// survive process restarts until they are received, and a channel that
// was closed for writing stays closed when the file is reopened.
//
// Items have a fixed size, chosen when the file is created. Sends and
// receives follow the same blocking and close semantics as the in-memory
// channel, but they synchronize goroutines within one process only; the
// file must not be open in two processes at once.
package filechannel

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"

	"github.com/cschleiden/go-channel"
	"github.com/cschleiden/go-channel/internal/metrickeys"
	"github.com/cschleiden/go-channel/internal/mmaputil"
	"github.com/cschleiden/go-channel/metrics"
)

type FileChannel struct {
	data mmap.MMap
	file *os.File

	// head points into data once the file is mapped
	head     *header
	capacity int64
	itemSize int64

	readCond  sync.Cond
	writeCond sync.Cond

	// done marks the mapping as released; set by Close
	done bool

	logger  *slog.Logger
	metrics metrics.Client

	mu sync.Mutex
}

// Open maps the channel file at path, creating it when it does not
// exist. For an existing file the header is validated and has to match
// the requested capacity and item size. Both must be positive.
func Open(path string, capacity int, itemSize int, opts ...Option) (*FileChannel, error) {
	if capacity < 1 || itemSize < 1 {
		return nil, ErrCapacityRequired
	}

	options := applyOptions(opts...)

	ch := &FileChannel{
		head:    newHeader(capacity, itemSize),
		logger:  options.Logger,
		metrics: options.Metrics,
	}
	ch.readCond.L = &ch.mu
	ch.writeCond.L = &ch.mu

	created := false
	info, err := os.Stat(path)

	switch {
	case err == nil:
		if ch.file, err = os.OpenFile(path, os.O_RDWR, 0); err != nil {
			return nil, err
		}

		if err := ch.validateHead(info.Size()); err != nil {
			ch.file.Close()
			return nil, err
		}

	case os.IsNotExist(err):
		if ch.file, err = os.Create(path); err != nil {
			return nil, err
		}

		if err := ch.file.Truncate(ch.head.fileSize()); err != nil {
			ch.file.Close()
			return nil, err
		}

		created = true

	default:
		return nil, err
	}

	if ch.data, err = mmap.Map(ch.file, mmap.RDWR, 0); err != nil {
		ch.file.Close()
		return nil, err
	}

	if created {
		copy(ch.data[:ch.head.headSize], mmaputil.PointerToBytes(ch.head, int(ch.head.headSize)))

		if err := ch.data.Flush(); err != nil {
			ch.data.Unmap()
			ch.file.Close()
			return nil, err
		}
	}

	// From here on the header lives inside the mapping, every update
	// goes straight to the file
	ch.head = mmaputil.BytesToPointer[header](ch.data[:ch.head.headSize])
	ch.capacity = ch.head.capacity
	ch.itemSize = ch.head.itemSize

	ch.logger.Debug("file channel opened",
		"path", path,
		"capacity", capacity,
		"item_size", itemSize,
		"created", created,
		"buffered", ch.head.count,
		"closed", ch.head.closed != 0)

	return ch, nil
}

func (ch *FileChannel) validateHead(fileSize int64) error {
	if fileSize < ch.head.headSize {
		return fmt.Errorf("%w: file smaller than header", ErrCorruptFile)
	}

	if _, err := ch.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	b := make([]byte, ch.head.headSize)
	if _, err := io.ReadFull(ch.file, b); err != nil {
		return err
	}

	head := mmaputil.BytesToPointer[header](b)

	if head.headSize != ch.head.headSize {
		return fmt.Errorf("%w: unexpected header size %d", ErrCorruptFile, head.headSize)
	}

	if head.itemSize < 1 || head.capacity < 1 {
		return fmt.Errorf("%w: non-positive geometry", ErrCorruptFile)
	}

	if head.recvIdx < 0 || head.recvIdx >= head.capacity {
		return fmt.Errorf("%w: read index out of range", ErrCorruptFile)
	}

	if head.count < 0 || head.count > head.capacity {
		return fmt.Errorf("%w: count out of range", ErrCorruptFile)
	}

	if head.closed != 0 && head.closed != 1 {
		return fmt.Errorf("%w: invalid closed marker", ErrCorruptFile)
	}

	if fileSize != head.fileSize() {
		return fmt.Errorf("%w: file size does not match geometry", ErrCorruptFile)
	}

	if head.capacity != ch.head.capacity || head.itemSize != ch.head.itemSize {
		return ErrConfigMismatch
	}

	return nil
}

// Send appends p, blocking while the buffer is full. It fails with
// ErrItemSize when len(p) differs from the channel's item size, and
// with channel.ErrClosed once the channel is closed for writing, also
// when that happens while the send is blocked.
func (ch *FileChannel) Send(p []byte) error {
	if _, err := ch.send(p, true); err != nil {
		return err
	}

	ch.metrics.Counter(metrickeys.FileSend, nil, 1)
	return nil
}

// SendNonblocking appends p only if the buffer has room and reports
// whether the value was appended. Errors match Send's.
func (ch *FileChannel) SendNonblocking(p []byte) (bool, error) {
	sent, err := ch.send(p, false)
	if sent {
		ch.metrics.Counter(metrickeys.FileSend, nil, 1)
	}

	return sent, err
}

func (ch *FileChannel) send(p []byte, block bool) (bool, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.done || ch.head.closed != 0 {
		return false, channel.ErrClosed
	}

	if int64(len(p)) != ch.itemSize {
		return false, ErrItemSize
	}

	for ch.head.count == ch.head.capacity {
		if !block {
			return false, nil
		}

		ch.writeCond.Wait()

		// done guards head, the mapping may be gone
		if ch.done || ch.head.closed != 0 {
			return false, channel.ErrClosed
		}
	}

	copy(ch.slice(ch.wrap(ch.head.recvIdx+ch.head.count)), p)
	ch.head.count++

	ch.readCond.Signal()
	return true, nil
}

// Receive takes the oldest value, blocking until a value is available.
// The returned slice is a copy, the buffer slot is reusable as soon as
// Receive returns. The second result is false when the channel is
// closed for writing and drained, or when it was released with Close.
func (ch *FileChannel) Receive() ([]byte, bool) {
	b, _, received := ch.receive(true)
	if received {
		ch.metrics.Counter(metrickeys.FileReceive, nil, 1)
	}

	return b, received
}

// ReceiveNonblocking takes a value only if one is immediately
// available. ok reports whether the operation completed: true when a
// value was taken and also when the channel is closed and drained;
// received is true only in the first case.
func (ch *FileChannel) ReceiveNonblocking() (b []byte, ok bool, received bool) {
	b, ok, received = ch.receive(false)
	if received {
		ch.metrics.Counter(metrickeys.FileReceive, nil, 1)
	}

	return b, ok, received
}

func (ch *FileChannel) receive(block bool) ([]byte, bool, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	for {
		if ch.done {
			return nil, true, false
		}

		if ch.head.count > 0 {
			break
		}

		if ch.head.closed != 0 {
			return nil, true, false
		}

		if !block {
			return nil, false, false
		}

		ch.readCond.Wait()
	}

	b := make([]byte, ch.itemSize)
	copy(b, ch.slice(ch.head.recvIdx))
	ch.head.recvIdx = ch.wrap(ch.head.recvIdx + 1)
	ch.head.count--

	ch.writeCond.Signal()
	return b, true, true
}

// CloseWrite marks the channel as closed for writing and persists the
// marker, so the closure survives a restart. Buffered values remain
// receivable. Closing an already closed channel does nothing.
func (ch *FileChannel) CloseWrite() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.done || ch.head.closed != 0 {
		return
	}

	ch.head.closed = 1

	ch.readCond.Broadcast()
	ch.writeCond.Broadcast()
}

// Close flushes the mapping and releases the file. It does not close
// the channel for writing; reopening the file resumes where the process
// left off, CloseWrite is the terminal state. Blocked operations wake:
// sends fail with channel.ErrClosed and receives report the channel as
// drained. A second Close does nothing.
func (ch *FileChannel) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.done {
		return nil
	}

	ch.done = true

	ch.readCond.Broadcast()
	ch.writeCond.Broadcast()

	if err := ch.data.Flush(); err != nil {
		return err
	}

	if err := ch.data.Unmap(); err != nil {
		return err
	}

	ch.head = nil
	ch.data = nil

	ch.logger.Debug("file channel closed", "path", ch.file.Name())

	return ch.file.Close()
}

// Flush synchronizes the mapping with the backing file.
func (ch *FileChannel) Flush() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.done {
		return nil
	}

	return ch.data.Flush()
}

// Len reports the number of buffered values.
func (ch *FileChannel) Len() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.done {
		return 0
	}

	return int(ch.head.count)
}

// Cap reports the buffer capacity.
func (ch *FileChannel) Cap() int {
	return int(ch.capacity)
}

// ItemSize reports the fixed payload size.
func (ch *FileChannel) ItemSize() int {
	return int(ch.itemSize)
}

// Closed reports whether the channel is closed for writing.
func (ch *FileChannel) Closed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return ch.done || ch.head.closed != 0
}

func (ch *FileChannel) slice(index int64) []byte {
	index *= ch.itemSize
	index += ch.head.headSize
	return ch.data[index : index+ch.itemSize]
}

func (ch *FileChannel) wrap(index int64) int64 {
	return index % ch.capacity
}
