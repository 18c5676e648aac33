// Package library keeps workspace snapshots in a local bbolt database.
//
// Every workspace has its own bucket, keyed by the workspace ID, holding
// numbered snapshots. Snapshot numbers grow monotonically per workspace.
package library

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/gogpu/pixcil"
	"github.com/gogpu/pixcil/codec"
)

// ErrNotFound is returned for unknown workspaces and snapshots.
var ErrNotFound = errors.New("library: not found")

var (
	workspacesBucket = []byte("workspaces")
	namesBucket      = []byte("names")
)

// Entry describes the snapshots stored for one workspace.
type Entry struct {
	ID        uuid.UUID
	Name      string
	Snapshots int
	Latest    uint64
	SavedAt   time.Time
}

// Library is an open snapshot database. It is safe for concurrent use.
type Library struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Library, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("library: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(workspacesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(namesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("library: init %s: %w", path, err)
	}
	return &Library{db: db, now: time.Now}, nil
}

// Close releases the database.
func (l *Library) Close() error {
	return l.db.Close()
}

func seqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, seq)
}

// Save stores ws as a new snapshot and returns its number.
func (l *Library) Save(ws *pixcil.Workspace) (uint64, error) {
	data, err := codec.Marshal(ws)
	if err != nil {
		return 0, err
	}
	value := binary.BigEndian.AppendUint64(nil, uint64(l.now().UnixNano()))
	value = append(value, data...)

	id := ws.Config.ID
	var seq uint64
	err = l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(workspacesBucket).CreateBucketIfNotExists(id[:])
		if err != nil {
			return err
		}
		if seq, err = b.NextSequence(); err != nil {
			return err
		}
		if err := b.Put(seqKey(seq), value); err != nil {
			return err
		}
		return tx.Bucket(namesBucket).Put(id[:], []byte(ws.Config.Name))
	})
	if err != nil {
		return 0, fmt.Errorf("library: save %s: %w", id, err)
	}
	pixcil.Logger().Debug("snapshot saved", "id", id, "seq", seq, "bytes", len(data))
	return seq, nil
}

// Load returns the newest snapshot of workspace id.
func (l *Library) Load(id uuid.UUID) (*pixcil.Workspace, error) {
	return l.load(id, func(b *bolt.Bucket) []byte {
		_, v := b.Cursor().Last()
		return v
	})
}

// LoadSnapshot returns snapshot seq of workspace id.
func (l *Library) LoadSnapshot(id uuid.UUID, seq uint64) (*pixcil.Workspace, error) {
	return l.load(id, func(b *bolt.Bucket) []byte {
		return b.Get(seqKey(seq))
	})
}

func (l *Library) load(id uuid.UUID, pick func(*bolt.Bucket) []byte) (*pixcil.Workspace, error) {
	var data []byte
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(workspacesBucket).Bucket(id[:])
		if b == nil {
			return ErrNotFound
		}
		v := pick(b)
		if len(v) < 8 {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v[8:]...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("library: load %s: %w", id, err)
	}
	return codec.Unmarshal(data)
}

// List describes every stored workspace, in ID order.
func (l *Library) List() ([]Entry, error) {
	var entries []Entry
	err := l.db.View(func(tx *bolt.Tx) error {
		names := tx.Bucket(namesBucket)
		return tx.Bucket(workspacesBucket).ForEachBucket(func(k []byte) error {
			id, err := uuid.FromBytes(k)
			if err != nil {
				return fmt.Errorf("bad workspace key %x: %w", k, err)
			}
			e := Entry{ID: id, Name: string(names.Get(k))}
			b := tx.Bucket(workspacesBucket).Bucket(k)
			e.Snapshots = b.Stats().KeyN
			if last, v := b.Cursor().Last(); last != nil && len(v) >= 8 {
				e.Latest = binary.BigEndian.Uint64(last)
				e.SavedAt = time.Unix(0, int64(binary.BigEndian.Uint64(v)))
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep snapshots of workspace id and
// returns how many were deleted.
func (l *Library) Prune(id uuid.UUID, keep int) (int, error) {
	deleted := 0
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(workspacesBucket).Bucket(id[:])
		if b == nil {
			return ErrNotFound
		}
		excess := b.Stats().KeyN - max(keep, 0)
		var doomed [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil && len(doomed) < excess; k, _ = c.Next() {
			doomed = append(doomed, append([]byte(nil), k...))
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("library: prune %s: %w", id, err)
	}
	return deleted, nil
}

// Delete removes workspace id and all its snapshots.
func (l *Library) Delete(id uuid.UUID) error {
	err := l.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(workspacesBucket)
		if root.Bucket(id[:]) == nil {
			return ErrNotFound
		}
		if err := root.DeleteBucket(id[:]); err != nil {
			return err
		}
		return tx.Bucket(namesBucket).Delete(id[:])
	})
	if err != nil {
		return fmt.Errorf("library: delete %s: %w", id, err)
	}
	return nil
}
