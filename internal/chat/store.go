// Package chat persists conversations and their messages for the
// assistant. Conversations are scoped to a user the same way tasks
// are: the user id is part of every lookup.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskchat/taskchat/internal/instrumentation"
)

// ErrConversationNotFound is returned when a conversation does not
// exist for the given user.
var ErrConversationNotFound = errors.New("conversation not found")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one chat thread owned by a user.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single utterance in a conversation. Intent and Language
// are recorded on user messages for analytics; assistant messages carry
// the language they were rendered in.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Intent         string    `json:"intent,omitempty"`
	Language       string    `json:"language,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists conversations and messages.
type Store interface {
	CreateConversation(ctx context.Context, userID string) (*Conversation, error)
	GetConversation(ctx context.Context, userID string, id uuid.UUID) (*Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)

	// AppendMessage inserts a message. Callers must have verified
	// conversation ownership via GetConversation first.
	AppendMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, userID string, conversationID uuid.UUID) ([]*Message, error)
}

// Querier is the subset of pgxpool.Pool the chat store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the PostgreSQL-backed chat store.
type PGStore struct {
	db      Querier
	metrics *instrumentation.Metrics
}

// NewPGStore creates a PostgreSQL chat store. metrics may be nil.
func NewPGStore(db Querier, metrics *instrumentation.Metrics) *PGStore {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &PGStore{db: db, metrics: metrics}
}

func (s *PGStore) observe(ctx context.Context, op string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil && !errors.Is(err, ErrConversationNotFound) {
		status = instrumentation.StatusError
	}
	s.metrics.RecordStoreOperation(ctx, instrumentation.ServiceChat, op, status, time.Since(start))
}

// CreateConversation starts a new conversation for the user.
func (s *PGStore) CreateConversation(ctx context.Context, userID string) (*Conversation, error) {
	start := time.Now()

	c := &Conversation{ID: uuid.New(), UserID: userID}
	row := s.db.QueryRow(ctx, `
		INSERT INTO conversations (id, user_id)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`,
		c.ID, userID,
	)
	err := row.Scan(&c.CreatedAt, &c.UpdatedAt)
	s.observe(ctx, instrumentation.OperationCreate, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}
	return c, nil
}

// GetConversation returns the conversation if it belongs to the user.
func (s *PGStore) GetConversation(ctx context.Context, userID string, id uuid.UUID) (*Conversation, error) {
	start := time.Now()

	var c Conversation
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrConversationNotFound
	}
	s.observe(ctx, instrumentation.OperationGet, start, err)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns the user's conversations, most recently
// active first.
func (s *PGStore) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	start := time.Now()

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC, id`,
		userID,
	)
	if err != nil {
		s.observe(ctx, instrumentation.OperationList, start, err)
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			s.observe(ctx, instrumentation.OperationList, start, err)
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		s.observe(ctx, instrumentation.OperationList, start, err)
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	s.observe(ctx, instrumentation.OperationList, start, nil)
	return out, nil
}

// AppendMessage inserts a message and bumps the conversation's
// updated_at.
func (s *PGStore) AppendMessage(ctx context.Context, m *Message) error {
	start := time.Now()

	row := s.db.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, role, content, intent, language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.ConversationID, m.Role, m.Content, m.Intent, m.Language,
	)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		s.observe(ctx, instrumentation.OperationCreate, start, err)
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err := s.db.Exec(ctx, `
		UPDATE conversations SET updated_at = now() WHERE id = $1`,
		m.ConversationID,
	)
	s.observe(ctx, instrumentation.OperationCreate, start, err)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages in order, only when
// the conversation belongs to the user.
func (s *PGStore) ListMessages(ctx context.Context, userID string, conversationID uuid.UUID) ([]*Message, error) {
	start := time.Now()

	// Ownership enforced by the join
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.conversation_id, m.role, m.content, m.intent, m.language, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.conversation_id = $1 AND c.user_id = $2
		ORDER BY m.id`,
		conversationID, userID,
	)
	if err != nil {
		s.observe(ctx, instrumentation.OperationList, start, err)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Intent, &m.Language, &m.CreatedAt); err != nil {
			s.observe(ctx, instrumentation.OperationList, start, err)
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		s.observe(ctx, instrumentation.OperationList, start, err)
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	s.observe(ctx, instrumentation.OperationList, start, nil)
	return out, nil
}
