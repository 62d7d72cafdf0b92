package testutil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FakeChatMessage is one turn of a librarian conversation
type FakeChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SetChatOffline makes the chat status report the model as unreachable
// with reason. An empty reason brings it back online.
func (b *FakeBackend) SetChatOffline(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatOffline = reason
}

// Indexed reports whether a campaign was indexed for the librarian
func (b *FakeBackend) Indexed(campaignID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexed[campaignID]
}

func (b *FakeBackend) chatStatus(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := gin.H{
		"status":           "online",
		"host":             "http://localhost:11434",
		"configured_model": "llama3.2",
		"available_models": []string{"llama3.2", "nomic-embed-text"},
	}
	if b.chatOffline != "" {
		out = gin.H{
			"status":           "offline",
			"host":             "http://localhost:11434",
			"configured_model": "llama3.2",
			"error":            b.chatOffline,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) chatIndex(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.indexed[id] = true
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("Campaign %d indexed successfully.", id)})
}

// chatLibrarian answers by echoing the last question and the length of the
// conversation, citing the campaign's sessions once it is indexed
func (b *FakeBackend) chatLibrarian(c *gin.Context) {
	var req struct {
		Messages   []FakeChatMessage `json:"messages"`
		CampaignID *int              `json:"campaign_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CampaignID == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
			"loc": []any{"body", "campaign_id"}, "msg": "field required", "type": "value_error.missing",
		}}})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No messages provided"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.chatOffline != "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": b.chatOffline})
		return
	}

	sources := make([]string, 0)
	if b.indexed[*req.CampaignID] {
		for _, id := range sortedKeys(b.sessions) {
			if b.sessions[id].CampaignID == *req.CampaignID {
				sources = append(sources, fmt.Sprintf("session:%d", id))
			}
		}
	}
	last := req.Messages[len(req.Messages)-1]
	c.JSON(http.StatusOK, gin.H{
		"response":        fmt.Sprintf("You asked %q. We have exchanged %d message(s).", strings.TrimSpace(last.Content), len(req.Messages)),
		"context_sources": sources,
	})
}
