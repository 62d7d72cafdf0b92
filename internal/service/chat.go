package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
)

// ChatStatus reports whether the librarian can answer
func (s *Service) ChatStatus(ctx context.Context) (*api.ChatStatus, error) {
	return s.rest.ChatStatus(ctx)
}

// IndexCampaign rebuilds the librarian's index of a campaign
func (s *Service) IndexCampaign(ctx context.Context, campaignID int) (string, error) {
	msg, err := s.rest.IndexCampaign(ctx, campaignID)
	if err != nil {
		return "", fmt.Errorf("failed to index campaign %d: %w", campaignID, err)
	}
	internal.LogDebug("indexed campaign %d for the librarian", campaignID)
	return msg, nil
}

// Conversation is a running chat with the librarian about one campaign.
// Every question is sent along with the turns before it.
type Conversation struct {
	s          *Service
	campaignID int
	sessionID  *int
	personaID  *int
	history    []api.ChatMessage
}

// ConversationOption narrows what a conversation is about
type ConversationOption func(*Conversation)

// AboutSession focuses the conversation on one session
func AboutSession(id int) ConversationOption {
	return func(c *Conversation) {
		if id > 0 {
			c.sessionID = &id
		}
	}
}

// AboutPersona focuses the conversation on one persona
func AboutPersona(id int) ConversationOption {
	return func(c *Conversation) {
		if id > 0 {
			c.personaID = &id
		}
	}
}

// WithHistory resumes a conversation from earlier turns
func WithHistory(history []api.ChatMessage) ConversationOption {
	return func(c *Conversation) {
		c.history = slices.Clone(history)
	}
}

// NewConversation starts a conversation about a campaign
func (s *Service) NewConversation(campaignID int, opts ...ConversationOption) *Conversation {
	c := &Conversation{s: s, campaignID: campaignID}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends question with the conversation so far. The question and answer
// join the history only when the librarian answers.
func (c *Conversation) Ask(ctx context.Context, question string) (*api.ChatReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question cannot be empty")
	}

	messages := append(slices.Clone(c.history), api.ChatMessage{Role: api.ChatRoleUser, Content: question})
	reply, err := c.s.rest.AskLibrarian(ctx, api.ChatRequest{
		Messages:   messages,
		CampaignID: c.campaignID,
		SessionID:  c.sessionID,
		PersonaID:  c.personaID,
	})
	if err != nil {
		return nil, fmt.Errorf("librarian did not answer: %w", err)
	}

	c.history = append(messages, api.ChatMessage{Role: api.ChatRoleAssistant, Content: reply.Response})
	return reply, nil
}

// History returns the turns so far, oldest first
func (c *Conversation) History() []api.ChatMessage {
	return slices.Clone(c.history)
}

// Reset forgets every turn
func (c *Conversation) Reset() {
	c.history = nil
}
