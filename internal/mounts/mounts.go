// Package mounts parses the kernel mount table (/proc/mounts format).
package mounts

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sigreer/drives/internal/sysfs"
)

// DefaultPath is the live mount table on Linux.
const DefaultPath = "/proc/mounts"

// Mount is one line of the mount table.
type Mount struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	Filesystem string `json:"filesystem"`
}

// Table is a snapshot of the mount table in file order.
type Table []Mount

// Parse reads whitespace-separated mount lines. Lines with fewer than three
// fields are skipped; fields past the third are ignored. Lines may be of any
// length: overlay mounts with many lower layers exceed a scanner's buffer.
func Parse(r io.Reader) (Table, error) {
	var table Table

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if fields := strings.Fields(line); len(fields) >= 3 {
			table = append(table, Mount{
				Device:     fields[0],
				Mountpoint: fields[1],
				Filesystem: fields[2],
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

// Read loads and parses the mount table at path.
func Read(files sysfs.FileAccess, path string) (Table, error) {
	content, err := files.ReadText(path)
	if err != nil {
		return nil, err
	}
	table, err := Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

// Find returns the mount for a kernel partition name such as "sda1".
// An entry whose device is exactly /dev/<name> wins; otherwise the first
// entry whose device contains name is used, which covers mapper and
// by-label style aliases.
func (t Table) Find(name string) (Mount, bool) {
	if name == "" {
		return Mount{}, false
	}

	exact := "/dev/" + name
	for _, m := range t {
		if m.Device == exact {
			return m, true
		}
	}

	for _, m := range t {
		if strings.Contains(m.Device, name) {
			return m, true
		}
	}

	return Mount{}, false
}
