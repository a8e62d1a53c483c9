package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CanonicalQuestion folds a question into the form used for duplicate
// detection: lowercased, trimmed, inner whitespace collapsed to one space.
func CanonicalQuestion(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// QuestionFingerprint identifies a question independently of case and spacing.
func QuestionFingerprint(question string) ID {
	return IDFromContent(CanonicalQuestion(question))
}

// Role identifies the author of a chat message.
type Role int

const (
	// RoleUser is a person asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant is the matcher answering them.
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// QAItem is one question/answer pair of the knowledge base.
type QAItem struct {
	Id        ID
	Question  string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatRecord is a single message of a conversation transcript.
type ChatRecord struct {
	Id           ID
	Conversation string
	Role         Role
	Contents     string
	Timestamp    time.Time // When the message was sent
	InsertedAt   time.Time // When the record was inserted into the database
	MatchedItem  ID        // Knowledge base item behind an assistant reply, 0 if none
	Score        float64   // Similarity of MatchedItem to the question
}

// Match is one ranked corpus position with its similarity to the query.
type Match struct {
	Index int
	Score float64
}
