package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

func newTestChatRepo(t *testing.T) storage.ChatRepository {
	t.Helper()
	qaRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	t.Cleanup(func() {
		chatRepo.Close()
		qaRepo.Close()
		backend.Close()
	})
	return chatRepo
}

func TestChatRecordBasics(t *testing.T) {
	chatRepo := newTestChatRepo(t)
	ctx := context.Background()

	record := &core.ChatRecord{
		Conversation: "c1",
		Role:         core.RoleUser,
		Contents:     "O que é comunicação?",
		Timestamp:    time.Now().UTC(),
	}

	added, err := chatRepo.AddChatRecords(ctx, record)
	if err != nil {
		t.Fatalf("Failed to add chat record: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := chatRepo.GetChatRecord(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get chat record: %v", err)
	}
	if retrieved.Contents != "O que é comunicação?" {
		t.Fatalf("Expected 'O que é comunicação?', got '%s'", retrieved.Contents)
	}
	if retrieved.Role != core.RoleUser {
		t.Fatalf("Expected role %v, got %v", core.RoleUser, retrieved.Role)
	}
}

func TestAddChatRecords_DefaultsTimestamp(t *testing.T) {
	chatRepo := newTestChatRepo(t)

	added, err := chatRepo.AddChatRecords(context.Background(), &core.ChatRecord{
		Conversation: "c1",
		Role:         core.RoleUser,
		Contents:     "olá",
	})
	if err != nil {
		t.Fatalf("Failed to add chat record: %v", err)
	}
	if !added[0].Timestamp.Equal(added[0].InsertedAt) {
		t.Fatalf("Expected Timestamp to default to InsertedAt, got %v", added[0].Timestamp)
	}
}

func TestGetChatRecord_NotFound(t *testing.T) {
	chatRepo := newTestChatRepo(t)

	_, err := chatRepo.GetChatRecord(context.Background(), core.ID(42))
	if err != storage.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetConversation(t *testing.T) {
	chatRepo := newTestChatRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	var records []*core.ChatRecord
	for i, text := range []string{"primeira", "segunda", "terceira", "quarta"} {
		records = append(records, &core.ChatRecord{
			Conversation: "c1",
			Role:         core.RoleUser,
			Contents:     text,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		})
	}
	// Another conversation whose name extends c1
	records = append(records, &core.ChatRecord{
		Conversation: "c10",
		Role:         core.RoleUser,
		Contents:     "outra conversa",
		Timestamp:    base.Add(10 * time.Minute),
	})

	if _, err := chatRepo.AddChatRecords(ctx, records...); err != nil {
		t.Fatalf("Failed to add chat records: %v", err)
	}

	all, err := chatRepo.GetConversation(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(all))
	}
	expected := []string{"quarta", "terceira", "segunda", "primeira"}
	for i, rec := range all {
		if rec.Contents != expected[i] {
			t.Errorf("Record %d: expected %q, got %q", i, expected[i], rec.Contents)
		}
	}

	limited, err := chatRepo.GetConversation(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if len(limited) != 2 || limited[0].Contents != "quarta" || limited[1].Contents != "terceira" {
		t.Fatalf("Expected the two newest records, got %d", len(limited))
	}

	missing, err := chatRepo.GetConversation(ctx, "nope", 10)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if missing == nil || len(missing) != 0 {
		t.Fatalf("Expected empty non-nil slice, got %v", missing)
	}
}

func TestDeleteConversation(t *testing.T) {
	chatRepo := newTestChatRepo(t)
	ctx := context.Background()

	added, err := chatRepo.AddChatRecords(ctx,
		&core.ChatRecord{Conversation: "c1", Role: core.RoleUser, Contents: "pergunta"},
		&core.ChatRecord{Conversation: "c1", Role: core.RoleAssistant, Contents: "resposta"},
		&core.ChatRecord{Conversation: "c2", Role: core.RoleUser, Contents: "fica"},
	)
	if err != nil {
		t.Fatalf("Failed to add chat records: %v", err)
	}

	if err := chatRepo.DeleteConversation(ctx, "c1"); err != nil {
		t.Fatalf("Failed to delete conversation: %v", err)
	}

	remaining, err := chatRepo.GetConversation(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected 0 records, got %d", len(remaining))
	}
	if _, err := chatRepo.GetChatRecord(ctx, added[0].Id); err != storage.ErrNotFound {
		t.Fatalf("Expected primary record to be deleted, got %v", err)
	}

	other, err := chatRepo.GetConversation(ctx, "c2", 0)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("Expected 1 record in c2, got %d", len(other))
	}

	// Deleting an unknown conversation is a no-op
	if err := chatRepo.DeleteConversation(ctx, "nope"); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
}

func TestAddChatRecords_Invalid(t *testing.T) {
	chatRepo := newTestChatRepo(t)
	ctx := context.Background()

	_, err := chatRepo.AddChatRecords(ctx,
		&core.ChatRecord{Conversation: "c1", Role: core.RoleUser, Contents: "válida"},
		&core.ChatRecord{Conversation: "c1", Role: core.RoleUser},
	)
	if !errors.Is(err, core.ErrInvalidChatRecord) {
		t.Fatalf("Expected ErrInvalidChatRecord, got %v", err)
	}

	records, err := chatRepo.GetConversation(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("Expected nothing written, got %d records", len(records))
	}
}
