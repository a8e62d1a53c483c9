package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "accented content", content: "O que é comunicação?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestCanonicalQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"already canonical", "o que é feedback?", "o que é feedback?"},
		{"case folded", "O Que É Feedback?", "o que é feedback?"},
		{"whitespace collapsed", "  o   que\té \n feedback? ", "o que é feedback?"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalQuestion(tt.question); got != tt.want {
				t.Errorf("CanonicalQuestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuestionFingerprint(t *testing.T) {
	if QuestionFingerprint("O que é feedback?") != QuestionFingerprint("  o que  é FEEDBACK? ") {
		t.Error("QuestionFingerprint() differs for questions that only differ in case and spacing")
	}
	if QuestionFingerprint("O que é feedback?") == QuestionFingerprint("O que é a mensagem?") {
		t.Error("QuestionFingerprint() collides for different questions")
	}
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "user"},
		{RoleAssistant, "assistant"},
		{Role(0), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}
