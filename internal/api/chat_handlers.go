package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taskchat/taskchat/internal/chat"
	"github.com/taskchat/taskchat/internal/logging"
	"github.com/taskchat/taskchat/internal/tasks"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// chatPayload is the data half of a chat response.
type chatPayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Reply          string    `json:"reply"`
	Intent         string    `json:"intent"`
	Language       string    `json:"language"`
}

// handleChat runs one conversation turn: resolve or create the
// conversation, record the user message, ask the agent, record and
// return its reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "Invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "message is required"))
		return
	}

	ctx := r.Context()

	var conversation *chat.Conversation
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "conversation_id must be a UUID"))
			return
		}
		conversation, err = s.deps.Chat().GetConversation(ctx, userID, id)
		if errors.Is(err, chat.ErrConversationNotFound) {
			writeEnvelope(w, http.StatusNotFound, tasks.Fail(tasks.ErrCodeNotFound, "Conversation not found"))
			return
		}
		if err != nil {
			s.deps.Logger().Error("failed to load conversation", logging.UserHash(userID), logging.Err(err))
			writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeDatabase, "Failed to load conversation. Please try again."))
			return
		}
	} else {
		var err error
		conversation, err = s.deps.Chat().CreateConversation(ctx, userID)
		if err != nil {
			s.deps.Logger().Error("failed to create conversation", logging.UserHash(userID), logging.Err(err))
			writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeDatabase, "Failed to start conversation. Please try again."))
			return
		}
		s.deps.Metrics().IncrementActiveConversations(ctx)
	}

	reply := s.deps.Agent().Respond(ctx, userID, req.Message)

	userMsg := &chat.Message{
		ConversationID: conversation.ID,
		Role:           chat.RoleUser,
		Content:        req.Message,
		Intent:         string(reply.Intent),
		Language:       reply.Language,
	}
	if err := s.deps.Chat().AppendMessage(ctx, userMsg); err != nil {
		s.deps.Logger().Error("failed to record user message", logging.UserHash(userID), logging.Err(err))
	}

	assistantMsg := &chat.Message{
		ConversationID: conversation.ID,
		Role:           chat.RoleAssistant,
		Content:        reply.Text,
		Language:       reply.Language,
	}
	if err := s.deps.Chat().AppendMessage(ctx, assistantMsg); err != nil {
		s.deps.Logger().Error("failed to record assistant message", logging.UserHash(userID), logging.Err(err))
	}

	writeEnvelope(w, http.StatusOK, tasks.OK(&chatPayload{
		ConversationID: conversation.ID,
		Reply:          reply.Text,
		Intent:         string(reply.Intent),
		Language:       reply.Language,
	}, "OK"))
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	conversations, err := s.deps.Chat().ListConversations(r.Context(), userID)
	if err != nil {
		s.deps.Logger().Error("failed to list conversations", logging.UserHash(userID), logging.Err(err))
		writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeDatabase, "Failed to retrieve conversations. Please try again."))
		return
	}
	if conversations == nil {
		conversations = []*chat.Conversation{}
	}

	writeEnvelope(w, http.StatusOK, tasks.OK(conversations, "OK"))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	conversationID, err := uuid.Parse(r.PathValue("conversation_id"))
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "conversation_id must be a UUID"))
		return
	}

	// Distinguish an unknown conversation from one with no messages
	if _, err := s.deps.Chat().GetConversation(r.Context(), userID, conversationID); err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			writeEnvelope(w, http.StatusNotFound, tasks.Fail(tasks.ErrCodeNotFound, "Conversation not found"))
			return
		}
		s.deps.Logger().Error("failed to load conversation", logging.UserHash(userID), logging.Err(err))
		writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeDatabase, "Failed to retrieve messages. Please try again."))
		return
	}

	messages, err := s.deps.Chat().ListMessages(r.Context(), userID, conversationID)
	if err != nil {
		s.deps.Logger().Error("failed to list messages", logging.UserHash(userID), logging.Err(err))
		writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeDatabase, "Failed to retrieve messages. Please try again."))
		return
	}
	if messages == nil {
		messages = []*chat.Message{}
	}

	writeEnvelope(w, http.StatusOK, tasks.OK(messages, "OK"))
}
