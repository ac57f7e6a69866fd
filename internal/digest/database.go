package digest

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "digests"

// DB defines the interface for database operations
type DB interface {
	// SaveDigest saves a digest to the database
	SaveDigest(digest *Digest) error

	// GetDigest retrieves a digest by ID
	GetDigest(id string) (*Digest, error)

	// ListDigests returns all digests, newest first
	ListDigests() ([]*Digest, error)

	// DeleteDigest removes a digest from the database
	DeleteDigest(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveDigest saves a digest to the database
func (b *BoltDB) SaveDigest(digest *Digest) error {
	data, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("marshaling digest: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(digest.ID), data)
	})
}

// GetDigest retrieves a digest by ID
func (b *BoltDB) GetDigest(id string) (*Digest, error) {
	var digest *Digest
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &digest)
	})
	if err != nil {
		return nil, err
	}
	return digest, nil
}

// ListDigests returns all digests, newest first
func (b *BoltDB) ListDigests() ([]*Digest, error) {
	digests := make([]*Digest, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var digest Digest
			if err := json.Unmarshal(v, &digest); err != nil {
				return fmt.Errorf("unmarshaling digest %s: %w", k, err)
			}
			digests = append(digests, &digest)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(digests, func(i, j int) bool {
		return digests[i].CreatedAt.After(digests[j].CreatedAt)
	})
	return digests, nil
}

// DeleteDigest removes a digest from the database
func (b *BoltDB) DeleteDigest(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
