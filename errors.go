package channel

type channelError string

var _ error = channelError("")

func (err channelError) Error() string {
	return string(err)
}

const (
	// ErrClosed is the panic value of any send on a closed channel,
	// including sends that were already parked when Close was called.
	ErrClosed = channelError("send on closed channel")

	// ErrDoubleClose is the panic value of closing a channel twice.
	ErrDoubleClose = channelError("close of closed channel")

	// ErrNilChannel is the panic value of blocking operations and Close
	// on a nil channel.
	ErrNilChannel = channelError("operation on nil channel")

	// ErrCapacityRange is the panic value of creating a channel with a
	// negative capacity.
	ErrCapacityRange = channelError("capacity out of range")
)
