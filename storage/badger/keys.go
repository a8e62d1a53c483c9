package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/faqmatch/core"
)

// Key prefixes for different data types. Every prefix ends in ':' so no
// prefix is a prefix of another, nor of a sequence name.
const (
	qaItemPrefix       = "qaitem:"
	qaQuestionPrefix   = "qaquestion:"
	qaItemIDSeq        = "qaitemseq"
	chatRecordPrefix   = "chatrec:"
	chatConvPrefix     = "chatconv:"
	chatRecordIDSeq    = "chatrecseq"
	conversationSuffix = 0x00
)

// appendUint64 writes v in BigEndian order so lexicographic sort matches
// numeric order.
func appendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

// makeQAItemKey generates a key for a QA item by ID.
// Format: prefix + id
func makeQAItemKey(id core.ID) []byte {
	return appendUint64([]byte(qaItemPrefix), uint64(id))
}

// makeQAQuestionKey generates the question fingerprint index key.
// Format: prefix + fingerprint
func makeQAQuestionKey(question string) []byte {
	return appendUint64([]byte(qaQuestionPrefix), uint64(core.QuestionFingerprint(question)))
}

// makeChatRecordKey generates a key for a chat record by ID.
// Format: prefix + id
func makeChatRecordKey(id core.ID) []byte {
	return appendUint64([]byte(chatRecordPrefix), uint64(id))
}

// makeConversationPrefix generates the common prefix of a conversation's
// index keys.
// Format: prefix + conversation + NUL
func makeConversationPrefix(conversation string) []byte {
	buf := make([]byte, 0, len(chatConvPrefix)+len(conversation)+1+16)
	buf = append(buf, chatConvPrefix...)
	buf = append(buf, conversation...)
	return append(buf, conversationSuffix)
}

// makeConversationKey generates a composite key for the conversation index.
// Format: prefix + conversation + NUL + timestamp + id
func makeConversationKey(conversation string, timestamp time.Time, id core.ID) []byte {
	buf := makeConversationPrefix(conversation)
	buf = appendUint64(buf, uint64(timestamp.UnixMicro()))
	return appendUint64(buf, uint64(id))
}

// prefixEnd returns a key that sorts after every key made of prefix plus up
// to 16 more bytes. Reverse iterators seek to it.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix), len(prefix)+16)
	copy(end, prefix)
	for range 16 {
		end = append(end, 0xFF)
	}
	return end
}
