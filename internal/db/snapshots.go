package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sigreer/drives/internal/collector"
	"github.com/sigreer/drives/internal/gpt"
	"github.com/sigreer/drives/internal/mounts"
	"github.com/sigreer/drives/internal/size"
)

// Snapshot is a stored discovery result
type Snapshot struct {
	ID      string             `json:"id"`
	TakenAt time.Time          `json:"taken_at"`
	Devices []collector.Device `json:"devices"`
}

// SnapshotInfo summarises a snapshot without loading its devices
type SnapshotInfo struct {
	ID         string
	TakenAt    time.Time
	Devices    int
	Partitions int
}

// SaveSnapshot stores devices, in order, as a new snapshot.
func (d *DB) SaveSnapshot(devices []collector.Device) (*Snapshot, error) {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		TakenAt: time.Now().UTC(),
		Devices: devices,
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO snapshots (id, taken_at) VALUES (?, ?)", snap.ID, snap.TakenAt); err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i, dev := range devices {
		status, id, uuidErr := resultColumns(dev.UUID)
		res, err := tx.Exec(`
			INSERT INTO devices (
				snapshot_id, position, name, removable, model, serial, size_blocks,
				uuid_status, uuid, uuid_error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			snap.ID, i, dev.Name, dev.IsRemovable, nullPtr(dev.Model), nullPtr(dev.Serial),
			int64(dev.Size.Blocks()), status, id, uuidErr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert device %s: %w", dev.Name, err)
		}

		deviceID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}

		for j, part := range dev.Partitions {
			var mountDevice, mountpoint, filesystem sql.NullString
			if m := part.Mountpoint; m != nil {
				mountDevice = sql.NullString{String: m.Device, Valid: true}
				mountpoint = sql.NullString{String: m.Mountpoint, Valid: true}
				filesystem = sql.NullString{String: m.Filesystem, Valid: true}
			}

			status, id, uuidErr := resultColumns(part.PartUUID)
			_, err := tx.Exec(`
				INSERT INTO partitions (
					device_id, position, name, number, size_blocks,
					mount_device, mountpoint, filesystem,
					uuid_status, uuid, uuid_error
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				deviceID, j, part.Name, part.Number, int64(part.Size.Blocks()),
				mountDevice, mountpoint, filesystem,
				status, id, uuidErr,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to insert partition %s: %w", part.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return snap, nil
}

// ListSnapshots returns the most recent snapshots, newest first
func (d *DB) ListSnapshots(limit int) ([]*SnapshotInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(`
		SELECT s.id, s.taken_at,
			(SELECT COUNT(*) FROM devices d WHERE d.snapshot_id = s.id),
			(SELECT COUNT(*) FROM partitions p JOIN devices d ON p.device_id = d.id WHERE d.snapshot_id = s.id)
		FROM snapshots s
		ORDER BY s.taken_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.TakenAt, &info.Devices, &info.Partitions); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, &info)
	}

	return out, rows.Err()
}

// GetSnapshot loads a snapshot with its devices and partitions. It returns
// nil, nil when no snapshot has the given id.
func (d *DB) GetSnapshot(id string) (*Snapshot, error) {
	snap := Snapshot{ID: id}
	err := d.conn.QueryRow("SELECT taken_at FROM snapshots WHERE id = ?", id).Scan(&snap.TakenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	index, err := d.loadDevices(&snap)
	if err != nil {
		return nil, err
	}
	if err := d.loadPartitions(&snap, index); err != nil {
		return nil, err
	}

	return &snap, nil
}

// loadDevices fills snap.Devices and returns row id -> slice position.
func (d *DB) loadDevices(snap *Snapshot) (map[int64]int, error) {
	rows, err := d.conn.Query(`
		SELECT id, name, removable, model, serial, size_blocks, uuid_status, uuid, uuid_error
		FROM devices
		WHERE snapshot_id = ?
		ORDER BY position
	`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	index := make(map[int64]int)
	snap.Devices = []collector.Device{}
	for rows.Next() {
		var (
			rowID                 int64
			dev                   collector.Device
			model, serial         sql.NullString
			blocks                int64
			status                string
			devUUID, devUUIDError sql.NullString
		)
		err := rows.Scan(&rowID, &dev.Name, &dev.IsRemovable, &model, &serial, &blocks, &status, &devUUID, &devUUIDError)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		dev.Model = ptrString(model)
		dev.Serial = ptrString(serial)
		dev.Size = size.New(uint64(blocks))
		dev.Partitions = []collector.Partition{}
		if dev.UUID, err = scanResult(status, devUUID, devUUIDError); err != nil {
			return nil, err
		}

		index[rowID] = len(snap.Devices)
		snap.Devices = append(snap.Devices, dev)
	}

	return index, rows.Err()
}

func (d *DB) loadPartitions(snap *Snapshot, index map[int64]int) error {
	rows, err := d.conn.Query(`
		SELECT p.device_id, p.name, p.number, p.size_blocks,
			p.mount_device, p.mountpoint, p.filesystem,
			p.uuid_status, p.uuid, p.uuid_error
		FROM partitions p
		JOIN devices d ON p.device_id = d.id
		WHERE d.snapshot_id = ?
		ORDER BY d.position, p.position
	`, snap.ID)
	if err != nil {
		return fmt.Errorf("failed to query partitions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			deviceID                        int64
			part                            collector.Partition
			blocks                          int64
			mountDevice, mountpoint, fsType sql.NullString
			status                          string
			partUUID, partUUIDError         sql.NullString
		)
		err := rows.Scan(
			&deviceID, &part.Name, &part.Number, &blocks,
			&mountDevice, &mountpoint, &fsType,
			&status, &partUUID, &partUUIDError,
		)
		if err != nil {
			return fmt.Errorf("failed to scan partition row: %w", err)
		}

		part.Size = size.New(uint64(blocks))
		if mountDevice.Valid {
			part.Mountpoint = &mounts.Mount{
				Device:     mountDevice.String,
				Mountpoint: mountpoint.String,
				Filesystem: fsType.String,
			}
		}
		if part.PartUUID, err = scanResult(status, partUUID, partUUIDError); err != nil {
			return err
		}

		pos, ok := index[deviceID]
		if !ok {
			return fmt.Errorf("partition %s references unknown device %d", part.Name, deviceID)
		}
		snap.Devices[pos].Partitions = append(snap.Devices[pos].Partitions, part)
	}

	return rows.Err()
}

// resultColumns flattens a GPT lookup into its stored columns.
func resultColumns(r gpt.Result) (string, sql.NullString, sql.NullString) {
	var errMsg string
	if r.Err != nil {
		errMsg = r.Err.Error()
	}
	return r.Status.String(), nullString(r.UUID), nullString(errMsg)
}

func scanResult(status string, id, errMsg sql.NullString) (gpt.Result, error) {
	st, err := gpt.ParseStatus(status)
	if err != nil {
		return gpt.Result{}, err
	}
	r := gpt.Result{Status: st, UUID: id.String}
	if errMsg.Valid {
		r.Err = errors.New(errMsg.String)
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
