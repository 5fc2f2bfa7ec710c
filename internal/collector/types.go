package collector

import (
	"github.com/sigreer/drives/internal/gpt"
	"github.com/sigreer/drives/internal/mounts"
	"github.com/sigreer/drives/internal/size"
)

// Device is a block device found under the device root (sda, nvme0n1, ...)
type Device struct {
	Name        string      `json:"name"`
	Partitions  []Partition `json:"partitions"`
	IsRemovable bool        `json:"is_removable"`

	// from device/model and device/serial; nil for virtual devices
	Model  *string `json:"model,omitempty"`
	Serial *string `json:"serial,omitempty"`

	Size size.Size  `json:"size"`
	UUID gpt.Result `json:"uuid"`
}

// Partition is a sub-directory of a device whose name starts with the
// device name.
type Partition struct {
	Name string    `json:"name"`
	Size size.Size `json:"size"`
	// Number is the kernel's partition index; not necessarily contiguous.
	Number     uint32        `json:"number"`
	Mountpoint *mounts.Mount `json:"mountpoint,omitempty"`
	PartUUID   gpt.Result    `json:"part_uuid"`
}

// Options locates the system sources. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	DeviceRoot string
	MountTable string
	DevDir     string
	// GPT enables reading partition-table GUIDs from the raw device nodes.
	GPT bool
}

const (
	DefaultDeviceRoot = "/sys/block"
	DefaultDevDir     = "/dev"
)

func DefaultOptions() Options {
	return Options{
		DeviceRoot: DefaultDeviceRoot,
		MountTable: mounts.DefaultPath,
		DevDir:     DefaultDevDir,
		GPT:        true,
	}
}
