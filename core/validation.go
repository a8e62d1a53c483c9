// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinQAFieldLength is the minimum length, in characters, of a stored
// question or answer.
const MinQAFieldLength = 3

// ValidateChatRecord validates a ChatRecord according to domain rules.
//
// Validation rules:
//   - Conversation must be set and must not contain NUL
//   - Contents must not be empty
//   - Role must be valid (User or Assistant)
//   - Timestamp must not be in the future
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - MatchedItem and Score (only set on assistant replies)
func ValidateChatRecord(record *ChatRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChatRecord)
	}

	if err := ValidateConversation(record.Conversation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChatRecord, err)
	}

	if record.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatRecord, ErrEmptyContent)
	}

	if err := ValidateRole(record.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChatRecord, err)
	}

	if !IsValidTimestamp(record.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidChatRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateQAItem validates a knowledge base entry.
// Question and answer must both hold at least MinQAFieldLength characters
// once surrounding whitespace is removed.
func ValidateQAItem(item *QAItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidQAItem)
	}
	if err := checkLength(item.Question, MinQAFieldLength, 0); err != nil {
		return fmt.Errorf("%w: question: %w", ErrInvalidQAItem, err)
	}
	if err := checkLength(item.Answer, MinQAFieldLength, 0); err != nil {
		return fmt.Errorf("%w: answer: %w", ErrInvalidQAItem, err)
	}
	return nil
}

// ValidateQuestion checks a user question against length bounds counted in
// characters after trimming. A max of 0 disables the upper bound.
func ValidateQuestion(question string, min, max int) error {
	if err := checkLength(question, min, max); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuestion, err)
	}
	return nil
}

// ValidateConversation validates a conversation identifier.
func ValidateConversation(conversation string) error {
	if conversation == "" {
		return fmt.Errorf("%w: empty", ErrInvalidConversation)
	}
	if strings.ContainsRune(conversation, 0) {
		return fmt.Errorf("%w: contains NUL", ErrInvalidConversation)
	}
	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}

func checkLength(text string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < min {
		return fmt.Errorf("%w: %d < %d", ErrTextTooShort, n, min)
	}
	if max > 0 && n > max {
		return fmt.Errorf("%w: %d > %d", ErrTextTooLong, n, max)
	}
	return nil
}
