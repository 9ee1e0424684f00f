package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketState  = []byte("state")
	bucketImages = []byte("images")
)

// BoltStore is the alternate single-file backend built on bbolt. It
// implements the same KVStore and BlobStore contracts as SQLiteStore so
// either can be swapped in through configuration.
type BoltStore struct {
	db *bolt.DB
}

var (
	_ KVStore   = (*BoltStore)(nil)
	_ BlobStore = (*BoltStore)(nil)
)

type boltBlobRecord struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// OpenBolt opens (and creates if missing) the Bolt database at path and
// ensures its buckets exist.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketState, bucketImages} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrStoreClosed
	}
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketState).Get([]byte(key))
		if raw != nil {
			value = string(raw)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, found, nil
}

func (s *BoltStore) Set(key, value string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Delete(key string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *BoltStore) PutBlob(_ context.Context, blob Blob) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if blob.ID == "" {
		return fmt.Errorf("put blob: id is empty")
	}
	raw, err := json.Marshal(boltBlobRecord{MIME: blob.MIME, Data: blob.Data})
	if err != nil {
		return fmt.Errorf("put blob %q: %w", blob.ID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImages).Put([]byte(blob.ID), raw)
	})
	if err != nil {
		return fmt.Errorf("put blob %q: %w", blob.ID, err)
	}
	return nil
}

func (s *BoltStore) GetBlob(_ context.Context, id string) (Blob, error) {
	if s == nil || s.db == nil {
		return Blob{}, ErrStoreClosed
	}
	var rec boltBlobRecord
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketImages).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return Blob{}, fmt.Errorf("get blob %q: %w", id, err)
	}
	if !found {
		return Blob{}, ErrNotFound
	}
	return Blob{ID: id, MIME: rec.MIME, Data: rec.Data}, nil
}

func (s *BoltStore) DeleteBlob(_ context.Context, id string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImages).Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", id, err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
