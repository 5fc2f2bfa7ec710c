package size

import (
	"encoding/json"
	"regexp"
	"testing"
)

func TestBlocks(t *testing.T) {
	s := New(12345)
	if s.Blocks() != 12345 {
		t.Errorf("Blocks() = %d", s.Blocks())
	}
	if s.Bytes() != 12345*512 {
		t.Errorf("Bytes() = %d", s.Bytes())
	}
}

func TestValueIn(t *testing.T) {
	tests := []struct {
		blocks uint64
		unit   Unit
		want   float64
	}{
		{8192, KiloByte, 4096},
		{8192, MegaByte, 4},
		{1050624, MegaByte, 513},
		{1050624, GigaByte, 0.5},
		{999162511, MegaByte, 487872.32},
		{999162511, GigaByte, 476.44},
		{999162511, TeraByte, 0.47},
		{3, Blocks, 3},
		{3, KiloByte, 1.5},
	}

	for _, tt := range tests {
		got := New(tt.blocks).ValueIn(tt.unit)
		if got != tt.want {
			t.Errorf("New(%d).ValueIn(%s) = %v, want %v", tt.blocks, tt.unit, got, tt.want)
		}
	}
}

func TestValueInMonotonic(t *testing.T) {
	prev := -1.0
	for _, b := range []uint64{0, 1, 2, 100, 2047, 2048, 1 << 20, 1 << 30, 1 << 40} {
		v := New(b).ValueIn(MegaByte)
		if v < prev {
			t.Fatalf("ValueIn not monotonic at %d blocks: %v < %v", b, v, prev)
		}
		prev = v
	}
}

func TestHumanReadable(t *testing.T) {
	tests := []struct {
		blocks uint64
		want   string
	}{
		{8192, "4 MB"},
		{6532, "3.19 MB"},
		{1500, "750 KB"},
		{999162511, "476.44 GB"},
		{1050624, "513 MB"},
		{0, "0 KB"},
		{2047, "1023.5 KB"},
		{2048, "1 MB"},
		{2147483648, "1 TB"},
	}

	for _, tt := range tests {
		if got := New(tt.blocks).HumanReadable(); got != tt.want {
			t.Errorf("New(%d).HumanReadable() = %q, want %q", tt.blocks, got, tt.want)
		}
	}
}

func TestHumanReadableFormat(t *testing.T) {
	re := regexp.MustCompile(`^\d+(\.\d{1,2})? (Blocks|KB|MB|GB|TB)$`)
	for b := uint64(1); b < 1<<42; b = b*3 + 7 {
		got := New(b).HumanReadable()
		if !re.MatchString(got) {
			t.Fatalf("New(%d).HumanReadable() = %q does not match %s", b, got, re)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(New(8192))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"blocks":8192,"bytes":4194304,"human":"4 MB"}` {
		t.Errorf("Marshal = %s", data)
	}

	var s Size
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Blocks() != 8192 {
		t.Errorf("Unmarshal blocks = %d", s.Blocks())
	}
}
