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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChatRecord indicates a ChatRecord failed validation.
	ErrInvalidChatRecord = errors.New("invalid chat record")

	// ErrInvalidQAItem indicates a QAItem failed validation.
	ErrInvalidQAItem = errors.New("invalid question/answer item")

	// ErrInvalidQuestion indicates a user question failed validation.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidConversation indicates a missing or malformed conversation id.
	ErrInvalidConversation = errors.New("invalid conversation id")

	// ErrTextTooShort indicates a text is below its minimum length.
	ErrTextTooShort = errors.New("text too short")

	// ErrTextTooLong indicates a text exceeds its maximum length.
	ErrTextTooLong = errors.New("text too long")
)
