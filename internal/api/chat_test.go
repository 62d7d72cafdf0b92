package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/quest-log/internal"
)

func TestClient_ChatStatus(t *testing.T) {
	b := seededBackend(t)
	c := NewClient(b.URL(), time.Second)
	ctx := context.Background()

	status, err := c.ChatStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Online())
	assert.Equal(t, "llama3.2", status.ConfiguredModel)
	assert.Equal(t, []string{"llama3.2", "nomic-embed-text"}, status.AvailableModels)

	b.SetChatOffline("connection refused")
	status, err = c.ChatStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Online())
	assert.Equal(t, "connection refused", status.Error)
	assert.Empty(t, status.AvailableModels)
}

func TestClient_AskLibrarianSendsConversation(t *testing.T) {
	b := seededBackend(t)
	c := NewClient(b.URL(), time.Second)

	reply, err := c.AskLibrarian(context.Background(), ChatRequest{
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "Who is Mira?"},
			{Role: ChatRoleAssistant, Content: "A rogue."},
			{Role: ChatRoleUser, Content: "Where is she now?"},
		},
		CampaignID: 1,
		PersonaID:  intPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, `You asked "Where is she now?". We have exchanged 3 message(s).`, reply.Response)
	assert.Empty(t, reply.ContextSources)

	bodies := b.Bodies("POST /api/chat/librarian")
	require.Len(t, bodies, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(bodies[0], &sent))
	assert.EqualValues(t, 1, sent["campaign_id"])
	assert.EqualValues(t, 20, sent["persona_id"])
	assert.NotContains(t, sent, "session_id")
	assert.Len(t, sent["messages"], 3)
}

func TestClient_AskLibrarianRequiresMessages(t *testing.T) {
	b := seededBackend(t)
	c := NewClient(b.URL(), time.Second)

	_, err := c.AskLibrarian(context.Background(), ChatRequest{CampaignID: 1})
	require.Error(t, err)
	assert.Zero(t, b.Calls("POST /api/chat/librarian"))
}

func TestClient_AskLibrarianUnavailable(t *testing.T) {
	b := seededBackend(t)
	c := NewClient(b.URL(), time.Second)
	b.SetChatOffline("Ollama is not running")

	_, err := c.AskLibrarian(context.Background(), ChatRequest{
		Messages:   []ChatMessage{{Role: ChatRoleUser, Content: "Hello?"}},
		CampaignID: 1,
	})
	var apiErr *internal.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Ollama is not running", apiErr.Detail)
}

func TestClient_IndexCampaignThenCite(t *testing.T) {
	b := seededBackend(t)
	c := NewClient(b.URL(), time.Second)
	ctx := context.Background()

	msg, err := c.IndexCampaign(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Campaign 1 indexed successfully.", msg)
	assert.True(t, b.Indexed(1))

	reply, err := c.AskLibrarian(ctx, ChatRequest{
		Messages:   []ChatMessage{{Role: ChatRoleUser, Content: "What happened at the lighthouse?"}},
		CampaignID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"session:10"}, reply.ContextSources)
}

func TestClient_IndexCampaignFailure(t *testing.T) {
	b := seededBackend(t)
	c := NewClient(b.URL(), time.Second)
	b.Fail("POST /api/chat/index/1", http.StatusInternalServerError, "embedding model missing")

	_, err := c.IndexCampaign(context.Background(), 1)
	var apiErr *internal.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "embedding model missing", apiErr.Detail)
}
