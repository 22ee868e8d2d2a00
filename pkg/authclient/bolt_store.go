package authclient

import (
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var bktSession = []byte("session")

// BoltStore keeps the pair in a bbolt file so it survives process restarts.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the store file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session db")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bktSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create session bucket")
	}
	return &BoltStore{db: db}, nil
}

// Close releases the file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) SetPair(_ context.Context, pair Pair) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktSession)
		if err := b.Put([]byte(AccessTokenKey), []byte(pair.AccessToken)); err != nil {
			return err
		}
		return b.Put([]byte(RefreshTokenKey), []byte(pair.RefreshToken))
	})
}

func (s *BoltStore) Access(_ context.Context) (string, error) {
	return s.get(AccessTokenKey)
}

func (s *BoltStore) Refresh(_ context.Context) (string, error) {
	return s.get(RefreshTokenKey)
}

func (s *BoltStore) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktSession)
		if err := b.Delete([]byte(AccessTokenKey)); err != nil {
			return err
		}
		return b.Delete([]byte(RefreshTokenKey))
	})
}

func (s *BoltStore) get(key string) (string, error) {
	var val string
	err := s.db.View(func(tx *bolt.Tx) error {
		// the slice is only valid inside the transaction
		val = string(tx.Bucket(bktSession).Get([]byte(key)))
		return nil
	})
	return val, err
}
