package chatcore

import (
	"context"
	"sync"
	"time"
)

// ConversationStore persists conversations and feedback.
type ConversationStore interface {
	// Get retrieves a conversation by ID. Returns ErrConversationNotFound
	// when no such conversation exists.
	Get(ctx context.Context, id string) (*Conversation, error)

	// Create starts a new conversation for a business type.
	Create(ctx context.Context, businessType string) (*Conversation, error)

	// AddMessage appends a message to a conversation.
	AddMessage(ctx context.Context, conversationID string, msg Message) error

	// AddFeedback records end-user feedback for a message.
	AddFeedback(ctx context.Context, fb Feedback) error
}

// memoryStore is an in-memory conversation store.
type memoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	feedback      map[string][]Feedback
}

// NewMemoryStore creates a new in-memory conversation store.
func NewMemoryStore() ConversationStore {
	return &memoryStore{
		conversations: make(map[string]*Conversation),
		feedback:      make(map[string][]Feedback),
	}
}

func (s *memoryStore) Get(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}

	// Return a snapshot so callers cannot mutate the stored conversation,
	// and concurrent AddMessage calls cannot race with the caller's reads.
	copied := *conv
	copied.Messages = append([]Message(nil), conv.Messages...)
	return &copied, nil
}

func (s *memoryStore) Create(ctx context.Context, businessType string) (*Conversation, error) {
	now := time.Now()
	conv := &Conversation{
		ID:           NewConversationID(),
		BusinessType: businessType,
		Messages:     make([]Message, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.ID] = conv
	return conv, nil
}

func (s *memoryStore) AddMessage(ctx context.Context, conversationID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}

	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now()
	return nil
}

func (s *memoryStore) AddFeedback(ctx context.Context, fb Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb.CreatedAt = time.Now()
	s.feedback[fb.MessageID] = append(s.feedback[fb.MessageID], fb)
	return nil
}
