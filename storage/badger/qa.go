package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

// QARepository implements storage.QARepository for BadgerDB.
type QARepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.QARepository = (*QARepository)(nil)

// NewQARepository creates a new QARepository.
func NewQARepository(backend *Backend) (*QARepository, error) {
	idSeq, err := backend.GetSequence(qaItemIDSeq)
	if err != nil {
		return nil, err
	}

	return &QARepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *QARepository) Close() error {
	return r.idSeq.Release()
}

// AddQAItems adds one or more items to the knowledge base.
func (r *QARepository) AddQAItems(ctx context.Context, items ...*core.QAItem) ([]*core.QAItem, error) {
	for _, item := range items {
		if err := core.ValidateQAItem(item); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			questionKey := makeQAQuestionKey(item.Question)
			exists, err := keyExists(tx, questionKey)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: question %q", storage.ErrDuplicateKey, item.Question)
			}

			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			item.Id = core.ID(id)
			item.CreatedAt = time.Now().UTC()
			item.UpdatedAt = item.CreatedAt

			// Store primary record
			if err := tx.Set(makeQAItemKey(item.Id), storage.MarshalQAItem(item)); err != nil {
				return err
			}

			// Update question index
			if err := tx.Set(questionKey, storage.MarshalID(item.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// UpdateQAItems replaces the question and answer of existing items.
func (r *QARepository) UpdateQAItems(ctx context.Context, items ...*core.QAItem) ([]*core.QAItem, error) {
	for _, item := range items {
		if err := core.ValidateQAItem(item); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeQAItemKey(item.Id)

			// Read old item to detect question changes
			old, err := readQAItem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			item.CreatedAt = old.CreatedAt
			item.UpdatedAt = time.Now().UTC()

			// Re-index when the canonical question changed
			oldQuestionKey := makeQAQuestionKey(old.Question)
			newQuestionKey := makeQAQuestionKey(item.Question)
			if string(oldQuestionKey) != string(newQuestionKey) {
				exists, err := keyExists(tx, newQuestionKey)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%w: question %q", storage.ErrDuplicateKey, item.Question)
				}
				if err := tx.Delete(oldQuestionKey); err != nil {
					return err
				}
				if err := tx.Set(newQuestionKey, storage.MarshalID(item.Id)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalQAItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteQAItems removes items by their IDs.
func (r *QARepository) DeleteQAItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeQAItemKey(id)

			// Read item to get the question for index cleanup
			item, err := readQAItem(tx, key)
			if err != nil {
				return err
			}
			if item == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeQAQuestionKey(item.Question)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetQAItem retrieves a single item by ID.
func (r *QARepository) GetQAItem(ctx context.Context, id core.ID) (*core.QAItem, error) {
	var result *core.QAItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readQAItem(tx, makeQAItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindQAItemByQuestion looks an item up through the question index.
func (r *QARepository) FindQAItemByQuestion(ctx context.Context, question string) (*core.QAItem, error) {
	var result *core.QAItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeQAQuestionKey(question))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var id core.ID
		if err := entry.Value(func(val []byte) error {
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readQAItem(tx, makeQAItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListQAItems returns every item ordered by ID ascending.
func (r *QARepository) ListQAItems(ctx context.Context) ([]*core.QAItem, error) {
	return r.scan(ctx, false, 0)
}

// GetRecentQAItems returns up to limit items, highest ID first.
func (r *QARepository) GetRecentQAItems(ctx context.Context, limit int) ([]*core.QAItem, error) {
	if limit <= 0 {
		return []*core.QAItem{}, nil
	}
	return r.scan(ctx, true, limit)
}

// CountQAItems returns the number of stored items.
func (r *QARepository) CountQAItems(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(qaItemPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// scan walks the primary item keys in ID order. A limit of 0 means no limit.
func (r *QARepository) scan(ctx context.Context, reverse bool, limit int) ([]*core.QAItem, error) {
	results := []*core.QAItem{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(qaItemPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = reverse
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := prefix
		if reverse {
			start = prefixEnd(prefix)
		}

		for iter.Seek(start); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var item *core.QAItem
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalQAItem(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, item)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)
	return results, err
}

// Helper functions

// readQAItem reads an item from the transaction; nil if absent.
func readQAItem(tx *badger.Txn, key []byte) (*core.QAItem, error) {
	entry, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var item *core.QAItem
	err = entry.Value(func(val []byte) error {
		var unmarshalErr error
		item, unmarshalErr = storage.UnmarshalQAItem(val)
		return unmarshalErr
	})
	return item, err
}

func keyExists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}
