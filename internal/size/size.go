// Package size converts kernel block counts (512-byte units) into
// human-readable quantities.
package size

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// BlockSize is the unit sysfs uses for every size attribute, regardless of
// the device's logical sector size.
const BlockSize = 512

// Unit is a display unit for a block count.
type Unit int

const (
	Blocks Unit = iota
	KiloByte
	MegaByte
	GigaByte
	TeraByte
)

// ShortName returns the suffix used in human-readable output.
func (u Unit) ShortName() string {
	switch u {
	case Blocks:
		return "Blocks"
	case KiloByte:
		return "KB"
	case MegaByte:
		return "MB"
	case GigaByte:
		return "GB"
	case TeraByte:
		return "TB"
	default:
		return "?"
	}
}

func (u Unit) String() string {
	return u.ShortName()
}

// factor is the number of blocks in one unit.
func (u Unit) factor() uint64 {
	switch u {
	case KiloByte:
		return 2
	case MegaByte:
		return 2048
	case GigaByte:
		return 2097152
	case TeraByte:
		return 2147483648
	default:
		return 1
	}
}

// suitableUnit picks the largest unit that keeps the value below 1024.
func suitableUnit(blocks uint64) Unit {
	switch {
	case blocks < 2048:
		return KiloByte
	case blocks < 2097152:
		return MegaByte
	case blocks < 2147483648:
		return GigaByte
	default:
		return TeraByte
	}
}

// Size is an immutable block count.
type Size struct {
	blocks uint64
}

// New wraps a raw count of 512-byte blocks.
func New(blocks uint64) Size {
	return Size{blocks: blocks}
}

// Blocks returns the raw block count.
func (s Size) Blocks() uint64 {
	return s.blocks
}

// Bytes returns the size in bytes.
func (s Size) Bytes() uint64 {
	return s.blocks * BlockSize
}

// ValueIn converts the size to unit, rounded half away from zero to two
// decimal places.
func (s Size) ValueIn(unit Unit) float64 {
	v := float64(s.blocks) / float64(unit.factor())
	return math.Round(v*100) / 100
}

// HumanReadable formats the size in the most suitable unit, e.g. "4 MB" or
// "3.19 MB".
func (s Size) HumanReadable() string {
	unit := suitableUnit(s.blocks)
	return fmt.Sprintf("%s %s", strconv.FormatFloat(s.ValueIn(unit), 'f', -1, 64), unit.ShortName())
}

func (s Size) String() string {
	return s.HumanReadable()
}

type sizeJSON struct {
	Blocks uint64 `json:"blocks"`
	Bytes  uint64 `json:"bytes"`
	Human  string `json:"human"`
}

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(sizeJSON{Blocks: s.blocks, Bytes: s.Bytes(), Human: s.HumanReadable()})
}

// UnmarshalJSON restores a Size from its block count; the derived fields
// are ignored.
func (s *Size) UnmarshalJSON(data []byte) error {
	var v sizeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.blocks = v.Blocks
	return nil
}
