// Package gpt reads disk and partition GUIDs from a GUID Partition Table.
// It never fails: every problem is reported as a Result.
package gpt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sigreer/drives/internal/logger"
)

const (
	signature      = "EFI PART"
	minHeaderSize  = 92
	minEntrySize   = 128
	maxEntryBytes  = 4 << 20
	fallbackLBSize = 512
)

var errNoTable = errors.New("no usable partition table")

type header struct {
	Signature           [8]byte
	Revision            [4]byte
	HeaderSize          uint32
	CRC32               uint32
	_                   [4]byte
	CurrentLBA          uint64
	BackupLBA           uint64
	FirstUsableLBA      uint64
	LastUsableLBA       uint64
	DiskGUID            [16]byte
	PartitionEntryLBA   uint64
	NumPartEntries      uint32
	PartEntrySize       uint32
	PartEntryArrayCRC32 uint32
}

type entry struct {
	TypeGUID       [16]byte
	UniqueGUID     [16]byte
	FirstLBA       uint64
	LastLBA        uint64
	AttributeFlags uint64
	PartitionName  [72]byte
}

// Source produces the partition-table view of one block device.
type Source interface {
	Read(device string) Table
}

// Table is the GUID view of one device.
type Table struct {
	Disk Result

	entries map[uint32]string
	// entryErr is set when the header was valid but the entry array was not.
	entryErr *Result
}

// NewTable builds a Table for a disk with a readable partition table.
func NewTable(diskUUID string, entries map[uint32]string) Table {
	return Table{Disk: Found(diskUUID), entries: entries}
}

// Partition looks up the GUID of partition number n (1-based, as the
// kernel numbers GPT partitions).
func (t Table) Partition(n uint32) Result {
	if t.Disk.Status != StatusUUID {
		return t.Disk
	}
	if t.entryErr != nil {
		return *t.entryErr
	}
	if id, ok := t.entries[n]; ok {
		return Found(id)
	}
	return Unavailable()
}

// Disabled is the Source used when the GPT overlay is switched off.
type Disabled struct{}

func (Disabled) Read(string) Table {
	return Table{Disk: NotEnabled()}
}

// Reader opens <DevDir>/<device> read-only and parses its primary GPT.
type Reader struct {
	DevDir string
	log    logger.Logger
}

func NewReader(devDir string, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{DevDir: devDir, log: log}
}

func (r *Reader) Read(device string) Table {
	path := filepath.Join(r.DevDir, device)

	f, err := os.Open(path)
	if err != nil {
		r.log.Debug("gpt: cannot open device", "device", path, "error", err)
		return Table{Disk: Failed(err)}
	}
	defer f.Close()

	lbs := logicalBlockSize(f)

	hdr, err := readHeader(f, lbs)
	if err != nil {
		r.log.Debug("gpt: no primary header", "device", path, "error", err)
		if errors.Is(err, errNoTable) {
			return Table{Disk: Unavailable()}
		}
		return Table{Disk: Failed(err)}
	}

	t := Table{Disk: Found(guidString(hdr.DiskGUID))}

	entries, err := readEntries(f, hdr, lbs)
	switch {
	case errors.Is(err, errNoTable):
		r.log.Debug("gpt: partition entries unusable", "device", path, "error", err)
		res := Unavailable()
		t.entryErr = &res
	case err != nil:
		r.log.Debug("gpt: reading partition entries failed", "device", path, "error", err)
		res := Failed(err)
		t.entryErr = &res
	default:
		t.entries = entries
	}

	return t
}

// readHeader reads and validates the primary header at LBA 1.
func readHeader(f io.ReaderAt, lbs int64) (*header, error) {
	buf := make([]byte, lbs)
	n, err := f.ReadAt(buf, lbs)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n < minHeaderSize {
		return nil, fmt.Errorf("%w: device shorter than two blocks", errNoTable)
	}

	var hdr header
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoTable, err)
	}

	if string(hdr.Signature[:]) != signature {
		return nil, fmt.Errorf("%w: bad signature", errNoTable)
	}
	if hdr.HeaderSize < minHeaderSize || int(hdr.HeaderSize) > n {
		return nil, fmt.Errorf("%w: invalid header size %d", errNoTable, hdr.HeaderSize)
	}

	tmp := make([]byte, hdr.HeaderSize)
	copy(tmp, buf[:hdr.HeaderSize])
	binary.LittleEndian.PutUint32(tmp[16:20], 0)
	if crc := crc32.ChecksumIEEE(tmp); crc != hdr.CRC32 {
		return nil, fmt.Errorf("%w: header CRC mismatch: calculated 0x%08X, expected 0x%08X", errNoTable, crc, hdr.CRC32)
	}

	return &hdr, nil
}

// readEntries returns partition number -> unique GUID for every used slot.
func readEntries(f io.ReaderAt, hdr *header, lbs int64) (map[uint32]string, error) {
	if hdr.PartEntrySize < minEntrySize {
		return nil, fmt.Errorf("%w: entry size %d", errNoTable, hdr.PartEntrySize)
	}
	if hdr.PartitionEntryLBA < 2 || hdr.PartitionEntryLBA > 1<<48 {
		return nil, fmt.Errorf("%w: entry array at LBA %d", errNoTable, hdr.PartitionEntryLBA)
	}
	total := uint64(hdr.NumPartEntries) * uint64(hdr.PartEntrySize)
	if total > maxEntryBytes {
		return nil, fmt.Errorf("%w: entry array of %d bytes", errNoTable, total)
	}

	table := make([]byte, total)
	n, err := f.ReadAt(table, int64(hdr.PartitionEntryLBA)*lbs)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if uint64(n) < total {
		return nil, fmt.Errorf("%w: entry array truncated", errNoTable)
	}

	if crc := crc32.ChecksumIEEE(table); crc != hdr.PartEntryArrayCRC32 {
		return nil, fmt.Errorf("%w: entries CRC mismatch: calculated 0x%08X, expected 0x%08X", errNoTable, crc, hdr.PartEntryArrayCRC32)
	}

	entries := make(map[uint32]string)
	for i := uint32(0); i < hdr.NumPartEntries; i++ {
		off := uint64(i) * uint64(hdr.PartEntrySize)
		var e entry
		if err := binary.Read(bytes.NewReader(table[off:off+minEntrySize]), binary.LittleEndian, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", errNoTable, err)
		}
		if isAllZero(e.TypeGUID[:]) {
			continue
		}
		entries[i+1] = guidString(e.UniqueGUID)
	}

	return entries, nil
}

// guidString converts an on-disk mixed-endian GUID to its canonical form.
func guidString(b [16]byte) string {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:])
	return u.String()
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
