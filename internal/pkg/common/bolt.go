package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/samber/do/v2"
	bolt "go.etcd.io/bbolt"
)

const (
	WagersBucket          = "wagers"
	ScorecardsBucket      = "scorecards"
	TournamentsBucket     = "tournaments"
	ReferencePointsBucket = "reference-points"
	ShotsBucket           = "shots"
)

var (
	ErrBucketNotFound = errors.New("bucket doesn't exist")
	ErrNotFound       = errors.New("record not found")
)

type DatabaseService struct {
	DB *bolt.DB
}

func NewDatabaseService(i do.Injector) (*DatabaseService, error) {
	dataDir := do.MustInvokeNamed[string](i, "data-dir")

	return OpenDatabase(dataDir)
}

// OpenDatabase opens fairway.db under dataDir and creates every bucket.
func OpenDatabase(dataDir string) (*DatabaseService, error) {
	err := os.MkdirAll(dataDir, 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create database path: %w", err)
	}

	dbPath := path.Join(dataDir, "fairway.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{
			WagersBucket,
			ScorecardsBucket,
			TournamentsBucket,
			ReferencePointsBucket,
			ShotsBucket,
		} {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to initialize database buckets: %w", err)
	}

	return &DatabaseService{
		DB: db,
	}, nil
}

func (s *DatabaseService) Shutdown() error {
	//nolint:wrapcheck
	return s.DB.Close()
}

func Bucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}

	return bucket, nil
}

func Key(parts ...string) []byte {
	return []byte(strings.Join(parts, "/"))
}

// GetJSON decodes the value under key into v, returning ErrNotFound when the
// key is absent.
func GetJSON(tx *bolt.Tx, bucket string, key []byte, v any) error {
	b, err := Bucket(tx, bucket)
	if err != nil {
		return err
	}

	data := b.Get(key)
	if data == nil {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", bucket, key, err)
	}

	return nil
}

func PutJSON(tx *bolt.Tx, bucket string, key []byte, v any) error {
	b, err := Bucket(tx, bucket)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", bucket, key, err)
	}

	err = b.Put(key, data)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", bucket, key, err)
	}

	return nil
}

// ScanJSON decodes every value whose key starts with prefix.
func ScanJSON[T any](tx *bolt.Tx, bucket string, prefix []byte, fn func(T) error) error {
	b, err := Bucket(tx, bucket)
	if err != nil {
		return err
	}

	c := b.Cursor()

	for k, data := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, data = c.Next() {
		var v T

		err := json.Unmarshal(data, &v)
		if err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", bucket, k, err)
		}

		err = fn(v)
		if err != nil {
			return err
		}
	}

	return nil
}
