package types

type ConstError string

func (err ConstError) Error() string { return string(err) }

const (
	ErrInvalidVolume       ConstError = "invalid volume"
	ErrNotFound            ConstError = "file not found"
	ErrAlreadyExists       ConstError = "file already exists"
	ErrAlreadyOpen         ConstError = "file already open"
	ErrNameTooLong         ConstError = "file name too long"
	ErrInvalidName         ConstError = "invalid file name"
	ErrDirectoryFull       ConstError = "directory full"
	ErrExhausted           ConstError = "out of free blocks"
	ErrFileTooLarge        ConstError = "file too large"
	ErrInvalidHandle       ConstError = "invalid file handle"
	ErrInvalidOffset       ConstError = "invalid offset"
	ErrDescriptorTableFull ConstError = "descriptor table full"
	ErrOutOfRange          ConstError = "block out of range"
	ErrBadBuffer           ConstError = "buffer size does not match block count"
	ErrCorrupt             ConstError = "volume inconsistent"
)
