package services

import (
	"context"
	"strings"
	"time"

	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultChatDelay paces assistant answers so they read like a reply.
const DefaultChatDelay = 800 * time.Millisecond

type ChatOpts struct {
	Delay  time.Duration
	Logger *zap.Logger
	Now    func() time.Time
}

type ChatService struct {
	delay time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewChatService(opts ChatOpts) *ChatService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ChatService{delay: opts.Delay, log: logger.OrNop(opts.Logger), now: now}
}

// Ask records the question, answers it from the session's cached data and
// records the answer. Cancelling ctx during the pacing delay drops the
// answer but keeps the question in the history.
func (c *ChatService) Ask(ctx context.Context, sess *Session, question string) (models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.ChatMessage{}, ErrEmptyQuestion
	}

	sess.appendChat(models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.ChatRoleUser,
		Content:   question,
		Timestamp: c.now(),
	})

	topic := Classify(question)
	reply := Respond(question, sess.Snapshot(), c.now())

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			c.log.Warn("chat answer abandoned", zap.String("session", sess.ID), zap.Error(ctx.Err()))
			return models.ChatMessage{}, ctx.Err()
		case <-timer.C:
		}
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.ChatRoleAssistant,
		Content:   reply,
		Timestamp: c.now(),
	}
	sess.appendChat(msg)
	chatAnswers.WithLabelValues(topic).Inc()
	return msg, nil
}
