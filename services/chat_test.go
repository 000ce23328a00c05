package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"indiflow-dashboard-api/models"
)

func TestAskRecordsConversation(t *testing.T) {
	chat := NewChatService(ChatOpts{})
	sess := NewSession(time.Now())
	sess.apply(Snapshot{Stats: models.DashboardStats{TotalUsers: 42, ActiveToday: 5}})

	reply, err := chat.Ask(context.Background(), sess, "  How many users?  ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.Role != models.ChatRoleAssistant || reply.ID == "" {
		t.Errorf("reply = %+v", reply)
	}
	if !strings.Contains(reply.Content, "42") {
		t.Errorf("reply content = %q", reply.Content)
	}

	if _, err := chat.Ask(context.Background(), sess, "zzz"); err != nil {
		t.Fatalf("second Ask: %v", err)
	}

	history := sess.ChatHistory()
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	wantRoles := []models.ChatRole{models.ChatRoleUser, models.ChatRoleAssistant, models.ChatRoleUser, models.ChatRoleAssistant}
	for i, msg := range history {
		if msg.Role != wantRoles[i] {
			t.Errorf("history[%d].Role = %q, want %q", i, msg.Role, wantRoles[i])
		}
	}
	if history[0].Content != "How many users?" {
		t.Errorf("question not trimmed: %q", history[0].Content)
	}
	if history[3].Content != HelpMessage {
		t.Errorf("unmatched question should get help text")
	}
	if history[0].ID == history[1].ID {
		t.Error("message IDs must be unique")
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	sess := NewSession(time.Now())
	_, err := NewChatService(ChatOpts{}).Ask(context.Background(), sess, "   ")
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("err = %v, want ErrEmptyQuestion", err)
	}
	if len(sess.ChatHistory()) != 0 {
		t.Error("empty question must not be recorded")
	}
}

func TestAskWaitsForDelay(t *testing.T) {
	chat := NewChatService(ChatOpts{Delay: 30 * time.Millisecond})
	start := time.Now()
	if _, err := chat.Ask(context.Background(), NewSession(start), "route stats"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("answered after %v, want at least the delay", elapsed)
	}
}

func TestAskCancelledDuringDelay(t *testing.T) {
	chat := NewChatService(ChatOpts{Delay: time.Minute})
	sess := NewSession(time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := chat.Ask(ctx, sess, "traffic")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	history := sess.ChatHistory()
	if len(history) != 1 || history[0].Role != models.ChatRoleUser {
		t.Errorf("history = %+v, want only the question", history)
	}
}
