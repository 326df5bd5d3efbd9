package chatcore

import (
	"time"

	"github.com/google/uuid"

	"github.com/IvoBelohlav/chatcore/handler"
)

// Source identifies which pipeline stage produced a response.
type Source string

const (
	SourceGreeting   Source = "greeting"
	SourceQA         Source = "qa"
	SourceComparison Source = "comparison"
	SourceHandler    Source = "handler"
	SourceFallback   Source = "fallback"
	SourceError      Source = "error"
)

// RequestContext is an open bag of caller-supplied context values.
type RequestContext map[string]any

// String returns the string value for key, or "" when absent or not a string.
func (c RequestContext) String(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value for key. JSON decoding produces float64, so
// both forms are accepted.
func (c RequestContext) Int(key string) (int, bool) {
	switch v := c[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Bool returns the boolean value for key, or false when absent.
func (c RequestContext) Bool(key string) bool {
	v, _ := c[key].(bool)
	return v
}

// Request is one query to resolve.
type Request struct {
	// Query is the end user's message. Required.
	Query string `json:"query"`

	// BusinessType selects the tenant configuration. Required for the
	// comparison and handler stages; greetings and FAQ work without it.
	BusinessType string `json:"businessType,omitempty"`

	// Category optionally narrows the handler to a specialization.
	Category string `json:"category,omitempty"`

	// Language is the query language tag. Two-letter aliases are
	// canonicalized; unknown tags fall back to the default language.
	Language string `json:"language,omitempty"`

	// ConversationID continues an existing conversation when set.
	ConversationID string `json:"conversationId,omitempty"`

	// ProductIDs are explicit catalog references, used by the comparison
	// stage when the caller already knows which products are discussed.
	ProductIDs []string `json:"productIds,omitempty"`

	// Context carries optional caller-supplied values.
	Context RequestContext `json:"context,omitempty"`
}

// ResolvedResponse is the pipeline's terminal output. Immutable once built.
type ResolvedResponse struct {
	Reply             string                    `json:"reply"`
	Source            Source                    `json:"source"`
	FollowupQuestions []string                  `json:"followupQuestions,omitempty"`
	Comparison        *handler.ComparisonResult `json:"comparison,omitempty"`
	ConversationID    string                    `json:"conversationId,omitempty"`
	Language          string                    `json:"language,omitempty"`
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Source    Source    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation groups the messages of one widget session.
type Conversation struct {
	ID           string    `json:"id"`
	BusinessType string    `json:"businessType,omitempty"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Feedback is an end-user rating of one assistant message.
type Feedback struct {
	MessageID string    `json:"messageId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewConversationID generates a conversation identifier.
func NewConversationID() string {
	return uuid.New().String()
}

// NewMessageID generates a message identifier.
func NewMessageID() string {
	return uuid.New().String()
}
