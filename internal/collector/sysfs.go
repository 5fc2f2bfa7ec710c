package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/sigreer/drives/internal/gpt"
	"github.com/sigreer/drives/internal/logger"
	"github.com/sigreer/drives/internal/mounts"
	"github.com/sigreer/drives/internal/size"
	"github.com/sigreer/drives/internal/sysfs"
)

// Engine walks the device root and builds a Device snapshot. It keeps no
// state between calls, so every Discover re-reads the system.
type Engine struct {
	files sysfs.FileAccess
	gpt   gpt.Source
	opts  Options
	log   logger.Logger
}

// New creates an Engine. A nil source disables the GPT overlay and a nil
// logger discards output.
func New(files sysfs.FileAccess, source gpt.Source, opts Options, log logger.Logger) *Engine {
	if source == nil {
		source = gpt.Disabled{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{files: files, gpt: source, opts: opts, log: log}
}

// DiscoverDevices runs one discovery pass against the live system.
func DiscoverDevices(opts Options, log logger.Logger) ([]Device, error) {
	var source gpt.Source = gpt.Disabled{}
	if opts.GPT {
		source = gpt.NewReader(opts.DevDir, log)
	}
	return New(sysfs.Host(), source, opts, log).Discover()
}

// Discover returns every device under the device root in listing order.
// Listing, flag, size, partition number and mount table failures abort
// the call; model, serial and GPT problems are recorded on the result.
func (e *Engine) Discover() ([]Device, error) {
	root := e.opts.DeviceRoot

	entries, err := e.files.ListDir(root)
	if err != nil {
		return nil, classify(err)
	}

	devices := make([]Device, 0, len(entries))
	for _, entry := range entries {
		dev, err := e.collectDevice(root, entry)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}

	e.log.Debug("discovery finished", "root", root, "devices", len(devices))
	return devices, nil
}

// collectDevice gathers data for a single device directory
func (e *Engine) collectDevice(root string, entry fs.DirEntry) (*Device, error) {
	name, err := entryName(root, entry)
	if err != nil {
		return nil, err
	}
	devPath, err := appendPath(root, name)
	if err != nil {
		return nil, err
	}

	removable, err := e.files.ReadBool(path.Join(devPath, "removable"))
	if err != nil {
		return nil, classify(err)
	}

	blocks, err := e.files.ReadUint64(path.Join(devPath, "size"))
	if err != nil {
		return nil, classify(err)
	}

	partitions, err := e.findPartitions(devPath, name)
	if err != nil {
		return nil, err
	}

	if err := e.resolveMounts(partitions); err != nil {
		return nil, err
	}

	dev := &Device{
		Name:        name,
		Partitions:  partitions,
		IsRemovable: removable,
		Model:       e.readOptional(path.Join(devPath, "device", "model")),
		Serial:      e.readOptional(path.Join(devPath, "device", "serial")),
		Size:        size.New(blocks),
	}

	e.applyGPT(dev)

	e.log.Debug("device discovered", "device", name, "partitions", len(partitions), "removable", removable)
	return dev, nil
}

// findPartitions selects sub-directories of devPath named <devName>...
func (e *Engine) findPartitions(devPath, devName string) ([]Partition, error) {
	entries, err := e.files.ListDir(devPath)
	if err != nil {
		return nil, classify(err)
	}

	partitions := make([]Partition, 0)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			kind := KindFileType
			if errors.Is(err, fs.ErrNotExist) {
				kind = KindDirEntry
			}
			return nil, &Error{Kind: kind, Path: path.Join(devPath, entry.Name()), Err: err}
		}
		if !info.IsDir() {
			continue
		}

		name, err := entryName(devPath, entry)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(name, devName) {
			continue
		}

		partPath, err := appendPath(devPath, name)
		if err != nil {
			return nil, err
		}

		blocks, err := e.files.ReadUint64(path.Join(partPath, "size"))
		if err != nil {
			return nil, classify(err)
		}
		number, err := e.files.ReadUint32(path.Join(partPath, "partition"))
		if err != nil {
			return nil, classify(err)
		}

		partitions = append(partitions, Partition{
			Name:   name,
			Size:   size.New(blocks),
			Number: number,
		})
	}

	return partitions, nil
}

// resolveMounts reads the mount table once for all partitions of a device.
func (e *Engine) resolveMounts(partitions []Partition) error {
	if len(partitions) == 0 {
		return nil
	}

	table, err := mounts.Read(e.files, e.opts.MountTable)
	if err != nil {
		return &Error{Kind: KindMountRead, Path: e.opts.MountTable, Err: err}
	}

	for i := range partitions {
		if m, ok := table.Find(partitions[i].Name); ok {
			partitions[i].Mountpoint = &m
		}
	}
	return nil
}

// readOptional returns the trimmed content of name, or nil if it is
// missing, unreadable or empty.
func (e *Engine) readOptional(name string) *string {
	content, err := e.files.ReadText(name)
	if err != nil {
		e.log.Debug("optional attribute unavailable", "path", name, "error", err)
		return nil
	}
	value := strings.TrimSpace(content)
	if value == "" {
		return nil
	}
	return &value
}

func (e *Engine) applyGPT(dev *Device) {
	table := e.gpt.Read(dev.Name)
	dev.UUID = table.Disk
	for i := range dev.Partitions {
		dev.Partitions[i].PartUUID = table.Partition(dev.Partitions[i].Number)
	}
}

func entryName(dir string, entry fs.DirEntry) (string, error) {
	name := entry.Name()
	if !utf8.ValidString(name) {
		return "", &Error{Kind: KindNameDecode, Path: dir}
	}
	return name, nil
}

// appendPath joins a single directory entry name onto dir.
func appendPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return "", &Error{Kind: KindPathAppend, Path: dir, Err: fmt.Errorf("invalid entry name %q", name)}
	}
	return path.Join(dir, name), nil
}
