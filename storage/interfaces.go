package storage

import (
	"context"

	"github.com/poiesic/faqmatch/core"
)

// QARepository provides operations for managing the knowledge base.
// Implementations must be thread-safe and support concurrent access.
type QARepository interface {
	// AddQAItems adds one or more items to the knowledge base.
	// Generates new IDs from a sequence and sets CreatedAt/UpdatedAt.
	// Returns ErrDuplicateKey if an item's question is already stored.
	AddQAItems(ctx context.Context, items ...*core.QAItem) ([]*core.QAItem, error)

	// UpdateQAItems replaces the question and answer of existing items.
	// Updates the UpdatedAt timestamp automatically; CreatedAt is preserved.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateQAItems(ctx context.Context, items ...*core.QAItem) ([]*core.QAItem, error)

	// DeleteQAItems removes items by their IDs.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteQAItems(ctx context.Context, ids ...core.ID) error

	// GetQAItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetQAItem(ctx context.Context, id core.ID) (*core.QAItem, error)

	// FindQAItemByQuestion looks an item up by question, ignoring case and
	// spacing differences. Returns ErrNotFound if no item matches.
	FindQAItemByQuestion(ctx context.Context, question string) (*core.QAItem, error)

	// ListQAItems returns every item ordered by ID ascending.
	ListQAItems(ctx context.Context) ([]*core.QAItem, error)

	// GetRecentQAItems returns up to limit items, most recently added first.
	GetRecentQAItems(ctx context.Context, limit int) ([]*core.QAItem, error)

	// CountQAItems returns the number of stored items.
	CountQAItems(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// ChatRepository provides operations for managing conversation transcripts.
type ChatRepository interface {
	// AddChatRecords appends one or more messages.
	// Generates new IDs from a sequence and sets InsertedAt.
	AddChatRecords(ctx context.Context, records ...*core.ChatRecord) ([]*core.ChatRecord, error)

	// GetChatRecord retrieves a single message by ID.
	// Returns ErrNotFound if the message doesn't exist.
	GetChatRecord(ctx context.Context, id core.ID) (*core.ChatRecord, error)

	// GetConversation returns up to limit messages of a conversation,
	// newest first. A limit <= 0 returns every message.
	GetConversation(ctx context.Context, conversation string, limit int) ([]*core.ChatRecord, error)

	// DeleteConversation removes every message of a conversation.
	DeleteConversation(ctx context.Context, conversation string) error

	// Close releases resources held by the repository.
	Close() error
}
