package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
)

const receiptsBucket = "receipts"

// boltEnvelope is the stored form of one receipt: the record, the raw
// payload, and who submitted it.
type boltEnvelope struct {
	Record  receipt.Record `json:"record"`
	Name    string         `json:"name"`
	Data    []byte         `json:"data"`
	AddedBy string         `json:"added_by,omitempty"`
}

// BoltStore keeps receipts in an embedded bbolt database keyed by external
// id. It is the default store for single-user deployments.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database file.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(receiptsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating receipts bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save implements Store.
func (s *BoltStore) Save(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error {
	envelope := boltEnvelope{
		Record:  record,
		Name:    content.Name(),
		Data:    content.Data(),
		AddedBy: user.Name,
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("marshaling receipt: %w", err)
		}
		return tx.Bucket([]byte(receiptsBucket)).Put(itob(record.ExternalID), data)
	})
}

// ContentByExternalID implements Store.
func (s *BoltStore) ContentByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error) {
	var content *receipt.Content
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(receiptsBucket)).Get(itob(externalID))
		if data == nil {
			return ErrNotFound
		}
		var envelope boltEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("unmarshaling receipt: %w", err)
		}
		c := receipt.NewContent(envelope.Name, envelope.Data)
		content = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// FindByDetails implements Store. The scan keeps the most recent match by
// document timestamp.
func (s *BoltStore) FindByDetails(ctx context.Context, predicate links.Predicate) (*receipt.Record, error) {
	if len(predicate) == 0 {
		return nil, nil
	}

	var newest *receipt.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(receiptsBucket)).ForEach(func(k, v []byte) error {
			var envelope boltEnvelope
			if err := json.Unmarshal(v, &envelope); err != nil {
				return fmt.Errorf("unmarshaling receipt: %w", err)
			}
			if !detailsSatisfy(envelope.Record.Details, predicate) {
				return nil
			}
			if newest == nil || envelope.Record.Timestamp.After(newest.Timestamp) {
				record := envelope.Record
				newest = &record
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return newest, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
