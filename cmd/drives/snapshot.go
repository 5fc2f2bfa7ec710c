package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sigreer/drives/internal/collector"
	"github.com/sigreer/drives/internal/db"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and inspect discovery snapshots",
	Long: `Store discovery results in the snapshot database.

Each snapshot records every device and partition with its size,
mountpoint and GPT identifiers at the time it was taken.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Discover devices and store the result",
	Run:   runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Run:   runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored snapshot",
	Args:  cobra.ExactArgs(1),
	Run:   runSnapshotShow,
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)

	snapshotListCmd.Flags().Int("limit", 20, "Maximum number of snapshots to show")
	snapshotShowCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSnapshotSave(cmd *cobra.Command, args []string) {
	cfg, log := setup()

	devices, err := collector.DiscoverDevices(cfg.Options(), log)
	if err != nil {
		fatal(log, "device discovery failed", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		fatal(log, "opening database", err)
	}
	defer database.Close()

	snap, err := database.SaveSnapshot(devices)
	if err != nil {
		fatal(log, "saving snapshot", err)
	}
	log.Debug("snapshot saved", "id", snap.ID, "path", database.Path())

	fmt.Printf("Saved snapshot %s (%d devices, %d partitions)\n",
		snap.ID, len(devices), countPartitions(devices))
}

func runSnapshotList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	cfg, log := setup()

	database, err := db.New(cfg.Database)
	if err != nil {
		fatal(log, "opening database", err)
	}
	defer database.Close()

	snaps, err := database.ListSnapshots(limit)
	if err != nil {
		fatal(log, "listing snapshots", err)
	}

	if len(snaps) == 0 {
		fmt.Println("No snapshots. Run 'drives snapshot save' to create one.")
		return
	}
	printSnapshots(os.Stdout, snaps, interactive())
}

func printSnapshots(w io.Writer, snaps []*db.SnapshotInfo, header bool) {
	const row = "%-36s  %-20s %-16s %7s %10s\n"
	if header {
		fmt.Fprintf(w, row, "ID", "TAKEN", "AGE", "DEVICES", "PARTITIONS")
		fmt.Fprintln(w, strings.Repeat("-", 95))
	}
	for _, s := range snaps {
		fmt.Fprintf(w, row,
			s.ID, s.TakenAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(s.TakenAt),
			fmt.Sprint(s.Devices), fmt.Sprint(s.Partitions))
	}
}

func runSnapshotShow(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	cfg, log := setup()

	database, err := db.New(cfg.Database)
	if err != nil {
		fatal(log, "opening database", err)
	}
	defer database.Close()

	snap, err := database.GetSnapshot(args[0])
	if err != nil {
		fatal(log, "loading snapshot", err)
	}
	if snap == nil {
		fmt.Fprintf(os.Stderr, "Snapshot not found: %s\n", args[0])
		os.Exit(1)
	}

	if jsonOut {
		if err := writeJSON(os.Stdout, snap); err != nil {
			fatal(log, "writing JSON", err)
		}
		return
	}

	fmt.Printf("Snapshot %s taken %s (%s)\n\n",
		snap.ID, snap.TakenAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(snap.TakenAt))
	printDevices(os.Stdout, snap.Devices, interactive())
}
