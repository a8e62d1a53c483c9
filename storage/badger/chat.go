package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

// ChatRepository implements storage.ChatRepository for BadgerDB.
type ChatRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(backend *Backend) (*ChatRepository, error) {
	idSeq, err := backend.GetSequence(chatRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChatRepository) Close() error {
	return r.idSeq.Release()
}

// AddChatRecords adds one or more chat records to storage.
func (r *ChatRepository) AddChatRecords(ctx context.Context, records ...*core.ChatRecord) ([]*core.ChatRecord, error) {
	now := time.Now().UTC()
	for _, record := range records {
		if record != nil && record.Timestamp.IsZero() {
			record.Timestamp = now
		}
		if err := core.ValidateChatRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			// Always generate new ID from sequence
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			record.Id = core.ID(id)
			record.InsertedAt = now

			// Store primary record
			if err := tx.Set(makeChatRecordKey(record.Id), storage.MarshalChatRecord(record)); err != nil {
				return err
			}

			// Update conversation index
			convKey := makeConversationKey(record.Conversation, record.Timestamp, record.Id)
			if err := tx.Set(convKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// GetChatRecord retrieves a single chat record by ID.
func (r *ChatRepository) GetChatRecord(ctx context.Context, id core.ID) (*core.ChatRecord, error) {
	var result *core.ChatRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChatRecord(tx, makeChatRecordKey(id))
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

// GetConversation returns up to limit messages of a conversation, newest
// first. A limit <= 0 returns every message.
func (r *ChatRepository) GetConversation(ctx context.Context, conversation string, limit int) ([]*core.ChatRecord, error) {
	results := []*core.ChatRecord{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.walkConversation(ctx, tx, conversation, func(key []byte, id core.ID) (bool, error) {
			record, err := readChatRecord(tx, makeChatRecordKey(id))
			if err != nil {
				return false, err
			}
			if record != nil {
				results = append(results, record)
			}
			return limit <= 0 || len(results) < limit, nil
		})
	}, false)
	return results, err
}

// DeleteConversation removes every message of a conversation.
func (r *ChatRepository) DeleteConversation(ctx context.Context, conversation string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		var keys [][]byte
		err := r.walkConversation(ctx, tx, conversation, func(key []byte, id core.ID) (bool, error) {
			keys = append(keys, key, makeChatRecordKey(id))
			return true, nil
		})
		if err != nil {
			return err
		}

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// walkConversation visits the conversation index newest first until fn
// returns false. Keys passed to fn are copies.
func (r *ChatRepository) walkConversation(ctx context.Context, tx *badger.Txn, conversation string, fn func(key []byte, id core.ID) (bool, error)) error {
	prefix := makeConversationPrefix(conversation)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefixEnd(prefix)); iter.ValidForPrefix(prefix); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Read the ID from the index
		var recordID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			recordID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		more, err := fn(iter.Item().KeyCopy(nil), recordID)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}

// readChatRecord reads a chat record from the transaction.
func readChatRecord(tx *badger.Txn, key []byte) (*core.ChatRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ChatRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalChatRecord(val)
		return unmarshalErr
	})
	return record, err
}
