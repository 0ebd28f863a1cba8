package filechannel

type fileError string

var _ error = fileError("")

func (err fileError) Error() string {
	return string(err)
}

const (
	// ErrCapacityRequired is returned when creating a file channel
	// without a positive capacity or item size.
	ErrCapacityRequired = fileError("capacity and item size are mandatory")

	// ErrItemSize is returned by sends whose payload does not match the
	// channel's fixed item size.
	ErrItemSize = fileError("payload does not match item size")

	// ErrConfigMismatch is returned when an existing file was created
	// with a different capacity or item size.
	ErrConfigMismatch = fileError("file does not match requested configuration")

	// ErrCorruptFile is wrapped by all header validation failures.
	ErrCorruptFile = fileError("corrupt channel file")
)
