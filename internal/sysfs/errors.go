package sysfs

import "fmt"

// Kind classifies a read failure.
type Kind int

const (
	KindDirAccess Kind = iota + 1
	KindFileAccess
	KindFileRead
	KindConversionU64
	KindConversionU32
)

func (k Kind) String() string {
	switch k {
	case KindDirAccess:
		return "directory access"
	case KindFileAccess:
		return "file access"
	case KindFileRead:
		return "file read"
	case KindConversionU64:
		return "u64 conversion"
	case KindConversionU32:
		return "u32 conversion"
	default:
		return "unknown"
	}
}

// Error is returned by every FS method.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDirAccess:
		return fmt.Sprintf("failed to access directory %q: %v", e.Path, e.Err)
	case KindFileAccess:
		return fmt.Sprintf("failed to access/open file %q: %v", e.Path, e.Err)
	case KindFileRead:
		return fmt.Sprintf("failed to read file %q: %v", e.Path, e.Err)
	case KindConversionU64:
		return fmt.Sprintf("failed to convert content of %q to u64: %v", e.Path, e.Err)
	case KindConversionU32:
		return fmt.Sprintf("failed to convert content of %q to u32: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
