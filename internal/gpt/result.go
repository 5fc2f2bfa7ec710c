package gpt

import (
	"encoding/json"
	"fmt"
)

// Status records why a UUID is or is not present.
type Status int

const (
	// StatusFeatureNotEnabled is the zero value: nobody looked.
	StatusFeatureNotEnabled Status = iota
	StatusUUID
	StatusNotAvailable
	StatusIOError
)

func (s Status) String() string {
	switch s {
	case StatusFeatureNotEnabled:
		return "feature_not_enabled"
	case StatusUUID:
		return "uuid"
	case StatusNotAvailable:
		return "not_available"
	case StatusIOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusFeatureNotEnabled, StatusUUID, StatusNotAvailable, StatusIOError} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown gpt status %q", s)
}

// Result is the outcome of a UUID lookup. UUID is set only for StatusUUID
// and Err only for StatusIOError.
type Result struct {
	Status Status
	UUID   string
	Err    error
}

func Found(uuid string) Result {
	return Result{Status: StatusUUID, UUID: uuid}
}

func Unavailable() Result {
	return Result{Status: StatusNotAvailable}
}

func Failed(err error) Result {
	return Result{Status: StatusIOError, Err: err}
}

func NotEnabled() Result {
	return Result{Status: StatusFeatureNotEnabled}
}

// Value returns the UUID and whether one was found.
func (r Result) Value() (string, bool) {
	return r.UUID, r.Status == StatusUUID
}

func (r Result) String() string {
	switch r.Status {
	case StatusUUID:
		return r.UUID
	case StatusIOError:
		return fmt.Sprintf("io error: %v", r.Err)
	case StatusNotAvailable:
		return "not available"
	default:
		return "gpt disabled"
	}
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Status string `json:"status"`
		UUID   string `json:"uuid,omitempty"`
		Error  string `json:"error,omitempty"`
	}{
		Status: r.Status.String(),
		UUID:   r.UUID,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
