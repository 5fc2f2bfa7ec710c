package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sigreer/drives/internal/collector"
	"github.com/sigreer/drives/internal/logger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List block devices and their partitions",
	Run:   runList,
}

var sizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "Print the size of every partition",
	Run:   runSizes,
}

func init() {
	listCmd.Flags().Bool("json", false, "Output as JSON")
}

func discover() ([]collector.Device, logger.Logger) {
	cfg, log := setup()
	devices, err := collector.DiscoverDevices(cfg.Options(), log)
	if err != nil {
		fatal(log, "device discovery failed", err)
	}
	return devices, log
}

func runList(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	devices, log := discover()

	if jsonOut {
		if err := writeJSON(os.Stdout, devices); err != nil {
			fatal(log, "writing JSON", err)
		}
		return
	}
	printDevices(os.Stdout, devices, interactive())
}

func runSizes(cmd *cobra.Command, args []string) {
	devices, _ := discover()
	printSizes(os.Stdout, devices)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const deviceRow = "%-14s %-10s %-9s %-3s %-32s %-24s %s\n"

// printDevices writes one row per device followed by its partitions,
// indented. The header and ruler are written only when header is set.
func printDevices(w io.Writer, devices []collector.Device, header bool) {
	if header {
		fmt.Fprintf(w, deviceRow, "NAME", "SIZE", "BYTES", "RM", "MODEL / SERIAL", "MOUNT", "UUID")
		fmt.Fprintln(w, strings.Repeat("-", 110))
	}

	for _, d := range devices {
		removable := "no"
		if d.IsRemovable {
			removable = "yes"
		}
		fmt.Fprintf(w, deviceRow,
			d.Name, d.Size.HumanReadable(), humanize.IBytes(d.Size.Bytes()), removable,
			identity(d), "-", d.UUID)

		for _, p := range d.Partitions {
			mount := "-"
			if p.Mountpoint != nil {
				mount = fmt.Sprintf("%s (%s)", p.Mountpoint.Mountpoint, p.Mountpoint.Filesystem)
			}
			fmt.Fprintf(w, deviceRow,
				"  "+p.Name, p.Size.HumanReadable(), humanize.IBytes(p.Size.Bytes()), "",
				"", mount, p.PartUUID)
		}
	}

	if header {
		fmt.Fprintln(w, strings.Repeat("-", 110))
		fmt.Fprintf(w, "Devices: %d | Partitions: %d\n", len(devices), countPartitions(devices))
	}
}

func identity(d collector.Device) string {
	var parts []string
	if d.Model != nil {
		parts = append(parts, *d.Model)
	}
	if d.Serial != nil {
		parts = append(parts, *d.Serial)
	}
	if len(parts) == 0 {
		return "-"
	}
	s := strings.Join(parts, " / ")
	if r := []rune(s); len(r) > 32 {
		s = string(r[:29]) + "..."
	}
	return s
}

func countPartitions(devices []collector.Device) int {
	n := 0
	for _, d := range devices {
		n += len(d.Partitions)
	}
	return n
}

// printSizes writes "<partition> : <size>" for every partition.
func printSizes(w io.Writer, devices []collector.Device) {
	for _, d := range devices {
		for _, p := range d.Partitions {
			fmt.Fprintf(w, "%s : %s\n", p.Name, p.Size.HumanReadable())
		}
	}
}
