// File: internal/services/turn/orchestrator.go
package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/citizenslab/citizens-chat/internal/domain"
	conversationrepo "github.com/citizenslab/citizens-chat/internal/repository/conversation"
	"github.com/citizenslab/citizens-chat/internal/services/llm"
	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

// FallbackReply is persisted as the assistant message whenever generation
// fails, so a conversation never ends on a dangling user message.
const FallbackReply = "I apologize, but I'm having trouble generating a response right now. Please try again later."

// Result pairs the two messages committed by one turn.
type Result struct {
	UserMessage      *domain.Message `json:"user_message"`
	AssistantMessage *domain.Message `json:"assistant_message"`
}

// Orchestrator drives one conversation turn: validate, persist the user
// message, generate a reply, persist the reply (or the fallback). Safe for
// concurrent use; turns on the same conversation serialize on a
// per-conversation lock so their message pairs never interleave.
type Orchestrator struct {
	config        *Config
	conversations ConversationStore
	messages      MessageStore
	builder       *prompt.Builder
	generator     llm.Generator
	locks         *conversationLocks
	logger        Logger
}

func NewOrchestrator(
	config *Config,
	conversations ConversationStore,
	messages MessageStore,
	generator llm.Generator,
	logger Logger,
) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid turn config: %w", err)
	}

	return &Orchestrator{
		config:        config,
		conversations: conversations,
		messages:      messages,
		builder:       prompt.NewBuilder(config.SystemInstruction),
		generator:     generator,
		locks:         newConversationLocks(),
		logger:        logger,
	}, nil
}

// HandleTurn is the sole entry point. The caller must have authenticated
// userID; ownership of the conversation is re-checked here before any write.
// Generation failures never surface as errors: the fallback reply is
// persisted instead. Only validation and store failures are returned.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, conversationID uint, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("handle_turn", "message content must not be empty")
	}
	if conversationID == 0 {
		return nil, NewValidationError("handle_turn", "invalid conversation ID")
	}

	lock := o.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conversation, err := o.conversations.FindByID(ctx, conversationID)
	if err != nil {
		// A missing conversation is the caller's problem; anything else means
		// the store itself failed and must not look like a bad request.
		if errors.Is(err, conversationrepo.ErrConversationNotFound) {
			return nil, NewUnauthorizedError(userID, conversationID)
		}
		return nil, NewStoreError("find_conversation", "failed to load conversation", err)
	}
	if conversation == nil || conversation.UserID != userID {
		return nil, NewUnauthorizedError(userID, conversationID)
	}

	userMessage, err := o.messages.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Content:        text,
	})
	if err != nil {
		return nil, NewStoreError("persist_user_message", "failed to persist user message", err)
	}
	if touchErr := o.conversations.TouchUpdatedAt(ctx, conversationID); touchErr != nil {
		o.logger.Warn("failed to touch conversation", "conversation_id", conversationID, "error", touchErr)
	}

	history, err := o.messages.FindByConversationID(ctx, conversationID)
	if err != nil {
		// The user message is already committed. Persist the fallback reply
		// (best effort) so the log stays gap-free, then surface the outage.
		o.persistAssistant(ctx, conversationID, FallbackReply)
		return nil, NewStoreError("read_history", "failed to read conversation history", err)
	}

	replyText := o.generateReply(ctx, history, userMessage, text)

	assistantMessage, err := o.persistAssistant(ctx, conversationID, replyText)
	if err != nil {
		return nil, NewStoreError("persist_assistant_message", "failed to persist assistant message", err)
	}

	return &Result{UserMessage: userMessage, AssistantMessage: assistantMessage}, nil
}

// generateReply builds the prompt and invokes the backend under the
// configured timeout. Every failure mode, including a panicking backend,
// collapses into the fallback reply.
func (o *Orchestrator) generateReply(ctx context.Context, history []domain.Message, userMessage *domain.Message, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("generation backend panicked", "panic", r)
			reply = FallbackReply
		}
	}()

	// The just-appended user message came back in the history read; drop it
	// so the prompt carries the new message exactly once, as the trailing
	// user turn.
	priorHistory := history[:0:0]
	for _, msg := range history {
		if msg.ID == userMessage.ID {
			continue
		}
		priorHistory = append(priorHistory, msg)
	}

	p := o.builder.Build(priorHistory, text)

	genCtx, cancel := context.WithTimeout(ctx, o.config.GenerationTimeout)
	defer cancel()

	replyText, err := o.generator.Generate(genCtx, p, llm.Options{
		MaxTokens:   o.config.MaxTokens,
		Temperature: o.config.Temperature,
	})
	if err != nil {
		o.logger.Warn("generation failed, using fallback reply",
			"conversation_id", userMessage.ConversationID, "error", err)
		return FallbackReply
	}

	o.logger.Info("generation completed",
		"conversation_id", userMessage.ConversationID, "reply_length", len(replyText))
	return replyText
}

func (o *Orchestrator) persistAssistant(ctx context.Context, conversationID uint, content string) (*domain.Message, error) {
	assistantMessage, err := o.messages.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        content,
	})
	if err != nil {
		o.logger.Error("failed to persist assistant message", "conversation_id", conversationID, "error", err)
		return nil, err
	}
	if touchErr := o.conversations.TouchUpdatedAt(ctx, conversationID); touchErr != nil {
		o.logger.Warn("failed to touch conversation", "conversation_id", conversationID, "error", touchErr)
	}
	return assistantMessage, nil
}
