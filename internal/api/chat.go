package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Librarian chat roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation with the librarian
type ChatMessage struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ChatRequest asks the librarian about a campaign. The whole conversation
// is sent every time; the last message is the question.
type ChatRequest struct {
	Messages   []ChatMessage `json:"messages"`
	CampaignID int           `json:"campaign_id"`
	SessionID  *int          `json:"session_id,omitempty"`
	PersonaID  *int          `json:"persona_id,omitempty"`
}

// ChatReply is the librarian's answer and the archive entries it drew on,
// as "type:id" strings
type ChatReply struct {
	Response       string   `json:"response"`
	ContextSources []string `json:"context_sources"`
}

// ChatStatus describes the language model behind the librarian
type ChatStatus struct {
	Status          string   `json:"status"`
	Host            string   `json:"host"`
	ConfiguredModel string   `json:"configured_model"`
	AvailableModels []string `json:"available_models,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Online reports whether the model answered the backend's probe
func (s *ChatStatus) Online() bool {
	return s.Status == "online"
}

// ChatStatus checks whether the librarian's model is reachable
func (c *Client) ChatStatus(ctx context.Context) (*ChatStatus, error) {
	var status ChatStatus
	if err := c.do(ctx, http.MethodGet, "/api/chat/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AskLibrarian sends a conversation to the librarian and returns its answer
func (c *Client) AskLibrarian(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("ask librarian: no messages")
	}
	var reply ChatReply
	if err := c.doWith(ctx, c.uploadClient, http.MethodPost, "/api/chat/librarian", nil, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// IndexCampaign rebuilds the librarian's search index for a campaign. The
// backend answers once indexing has finished.
func (c *Client) IndexCampaign(ctx context.Context, campaignID int) (string, error) {
	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/api/chat/index/%d", campaignID)
	if err := c.doWith(ctx, c.uploadClient, http.MethodPost, path, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
