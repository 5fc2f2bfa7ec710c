package collector

import (
	"errors"
	"fmt"

	"github.com/sigreer/drives/internal/sysfs"
)

// Kind classifies a discovery failure.
type Kind int

const (
	KindDirAccess Kind = iota + 1
	KindDirEntry
	KindFileAccess
	KindFileRead
	KindFileType
	KindNameDecode
	KindPathAppend
	KindConversionU64
	KindConversionU32
	KindMountRead
)

func (k Kind) String() string {
	switch k {
	case KindDirAccess:
		return "failed to access directory"
	case KindDirEntry:
		return "failed to access dir entry"
	case KindFileAccess:
		return "failed to access/open file"
	case KindFileRead:
		return "failed to read file"
	case KindFileType:
		return "couldn't get file type for"
	case KindNameDecode:
		return "failed to get name for dir entry"
	case KindPathAppend:
		return "failed to append path"
	case KindConversionU64:
		return "failed to convert file content to u64"
	case KindConversionU32:
		return "failed to convert file content to u32"
	case KindMountRead:
		return "reading mounts failed"
	default:
		return "discovery failed"
	}
}

// Error aborts a discovery call. Path names the file or directory involved.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a discovery error of kind k.
func IsKind(err error, k Kind) bool {
	var derr *Error
	return errors.As(err, &derr) && derr.Kind == k
}

// classify turns a sysfs read error into a discovery error.
func classify(err error) error {
	var serr *sysfs.Error
	if !errors.As(err, &serr) {
		return &Error{Kind: KindFileRead, Err: err}
	}

	kind := KindFileRead
	switch serr.Kind {
	case sysfs.KindDirAccess:
		kind = KindDirAccess
	case sysfs.KindFileAccess:
		kind = KindFileAccess
	case sysfs.KindConversionU64:
		kind = KindConversionU64
	case sysfs.KindConversionU32:
		kind = KindConversionU32
	}
	return &Error{Kind: kind, Path: serr.Path, Err: serr.Err}
}
