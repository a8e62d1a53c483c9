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


package storage

import (
	"fmt"

	"github.com/poiesic/faqmatch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalQAItem serializes a QAItem to bytes.
func MarshalQAItem(item *core.QAItem) []byte {
	buf := make([]byte, core.QAItemMUS.Size(*item))
	core.QAItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalQAItem deserializes a QAItem from bytes.
func UnmarshalQAItem(data []byte) (*core.QAItem, error) {
	item, _, err := core.QAItemMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: qa item: %w", ErrSerializationFailed, err)
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

// MarshalChatRecord serializes a ChatRecord to bytes.
func MarshalChatRecord(record *core.ChatRecord) []byte {
	buf := make([]byte, core.ChatRecordMUS.Size(*record))
	core.ChatRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalChatRecord deserializes a ChatRecord from bytes.
func UnmarshalChatRecord(data []byte) (*core.ChatRecord, error) {
	record, _, err := core.ChatRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chat record: %w", ErrSerializationFailed, err)
	}
	record.Timestamp = record.Timestamp.UTC()
	record.InsertedAt = record.InsertedAt.UTC()
	return &record, nil
}
