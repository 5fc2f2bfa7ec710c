package sysfs

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func testFS() *FS {
	return New(fstest.MapFS{
		"sys/block/sda/removable":      {Data: []byte("1\n")},
		"sys/block/sdb/removable":      {Data: []byte("0\n")},
		"sys/block/sda/size":           {Data: []byte("976773168\n")},
		"sys/block/sda/bad":            {Data: []byte("12ab\n")},
		"sys/block/sda/sda1/partition": {Data: []byte("1\n")},
		"sys/block/sda/huge":           {Data: []byte("4294967296\n")},
		"sys/block/sda/device/model":   {Data: []byte("Samsung SSD 860 \n")},
	})
}

func TestReadBool(t *testing.T) {
	f := testFS()

	tests := []struct {
		path string
		want bool
	}{
		{"/sys/block/sda/removable", true},
		{"/sys/block/sdb/removable", false},
		{"/sys/block/sda/size", false},
	}
	for _, tt := range tests {
		got, err := f.ReadBool(tt.path)
		if err != nil {
			t.Fatalf("ReadBool(%s): %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("ReadBool(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReadBoolMissingIsError(t *testing.T) {
	_, err := testFS().ReadBool("/sys/block/sdc/removable")
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if serr.Kind != KindFileAccess {
		t.Errorf("Kind = %v, want %v", serr.Kind, KindFileAccess)
	}
	if serr.Path != "/sys/block/sdc/removable" {
		t.Errorf("Path = %q", serr.Path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected error to wrap fs.ErrNotExist")
	}
}

func TestReadNumbers(t *testing.T) {
	f := testFS()

	size, err := f.ReadUint64("/sys/block/sda/size")
	if err != nil {
		t.Fatal(err)
	}
	if size != 976773168 {
		t.Errorf("size = %d", size)
	}

	num, err := f.ReadUint32("/sys/block/sda/sda1/partition")
	if err != nil {
		t.Fatal(err)
	}
	if num != 1 {
		t.Errorf("partition = %d", num)
	}

	t.Run("u64 conversion", func(t *testing.T) {
		_, err := f.ReadUint64("/sys/block/sda/bad")
		var serr *Error
		if !errors.As(err, &serr) || serr.Kind != KindConversionU64 {
			t.Fatalf("expected u64 conversion error, got %v", err)
		}
	})

	t.Run("u32 overflow", func(t *testing.T) {
		_, err := f.ReadUint32("/sys/block/sda/huge")
		var serr *Error
		if !errors.As(err, &serr) || serr.Kind != KindConversionU32 {
			t.Fatalf("expected u32 conversion error, got %v", err)
		}
	})
}

func TestReadTextVerbatim(t *testing.T) {
	got, err := testFS().ReadText("/sys/block/sda/device/model")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Samsung SSD 860 \n" {
		t.Errorf("ReadText = %q", got)
	}
}

func TestListDir(t *testing.T) {
	f := testFS()

	entries, err := f.ListDir("/sys/block")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	_, err = f.ListDir("/sys/nope")
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != KindDirAccess || serr.Path != "/sys/nope" {
		t.Fatalf("expected dir access error for /sys/nope, got %v", err)
	}
}
