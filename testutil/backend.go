package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// The fake backend keeps its own record types so it can reproduce the real
// backend's wire quirks: REST personas carry aliases as a JSON string, while
// GraphQL returns them as an array.

// FakeCampaign is a stored campaign
type FakeCampaign struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Summary     *string `json:"summary"`
	CreatedAt   string  `json:"created_at"`
}

// FakeSession is a stored session. Highlights, LowPoints and
// MemorableQuotes hold legacy strings.
type FakeSession struct {
	ID              int     `json:"id"`
	CampaignID      int     `json:"campaign_id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	Summary         *string `json:"summary"`
	ErrorMessage    *string `json:"error_message"`
	CreatedAt       string  `json:"created_at"`
	Highlights      *string `json:"highlights,omitempty"`
	LowPoints       *string `json:"low_points,omitempty"`
	MemorableQuotes *string `json:"memorable_quotes,omitempty"`
}

// FakePersona is a stored persona
type FakePersona struct {
	ID               int      `json:"id"`
	CampaignID       int      `json:"campaign_id"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Description      string   `json:"description"`
	VoiceDescription *string  `json:"voice_description"`
	Summary          *string  `json:"summary"`
	PlayerName       *string  `json:"player_name"`
	Gender           *string  `json:"gender"`
	Race             *string  `json:"race"`
	ClassName        *string  `json:"class_name"`
	Level            *int     `json:"level"`
	Status           string   `json:"status"`
	Faction          *string  `json:"faction"`
	Alignment        *string  `json:"alignment"`
	Aliases          []string `json:"aliases"`
}

// FakeHighlight is a stored highlight
type FakeHighlight struct {
	ID         int     `json:"id"`
	Text       string  `json:"text"`
	Name       *string `json:"name"`
	Type       string  `json:"type"`
	SessionID  int     `json:"session_id"`
	PersonaID  *int    `json:"persona_id"`
	CampaignID int     `json:"campaign_id"`
}

// FakeQuote is a stored quote
type FakeQuote struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	SpeakerName *string `json:"speaker_name"`
	SessionID   int     `json:"session_id"`
	PersonaID   *int    `json:"persona_id"`
	CampaignID  int     `json:"campaign_id"`
}

// FakeMoment is a stored moment
type FakeMoment struct {
	ID          int    `json:"id"`
	SessionID   int    `json:"session_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Upload records one multipart upload the backend received
type Upload struct {
	Path      string
	Name      string
	FileNames []string
}

type failure struct {
	status int
	detail string
}

// FakeBackend is an in-memory stand-in for the Quest Log backend, serving
// both the REST routes and /graphql
type FakeBackend struct {
	Server *httptest.Server

	mu         sync.Mutex
	nextID     int
	campaigns  map[int]*FakeCampaign
	sessions   map[int]*FakeSession
	personas   map[int]*FakePersona
	highlights map[int]*FakeHighlight
	quotes     map[int]*FakeQuote
	moments    map[int]*FakeMoment

	statusQueue map[int][]string
	indexed     map[int]bool
	chatOffline string
	failures    map[string]failure
	calls       map[string]int
	bodies      map[string][]json.RawMessage
	uploads     []Upload
}

// NewFakeBackend starts a fake backend that is closed when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &FakeBackend{
		nextID:      1000,
		campaigns:   map[int]*FakeCampaign{},
		sessions:    map[int]*FakeSession{},
		personas:    map[int]*FakePersona{},
		highlights:  map[int]*FakeHighlight{},
		quotes:      map[int]*FakeQuote{},
		moments:     map[int]*FakeMoment{},
		statusQueue: map[int][]string{},
		indexed:     map[int]bool{},
		failures:    map[string]failure{},
		calls:       map[string]int{},
		bodies:      map[string][]json.RawMessage{},
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the REST base URL
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// GraphQLURL returns the GraphQL endpoint
func (b *FakeBackend) GraphQLURL() string {
	return b.Server.URL + "/graphql"
}

// AddCampaign stores a campaign
func (b *FakeBackend) AddCampaign(c FakeCampaign) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.CreatedAt == "" {
		c.CreatedAt = "2024-03-09T19:30:00"
	}
	b.campaigns[c.ID] = &c
}

// AddSession stores a session
func (b *FakeBackend) AddSession(s FakeSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.CreatedAt == "" {
		s.CreatedAt = "2024-03-09T19:30:00"
	}
	if s.Status == "" {
		s.Status = "completed"
	}
	b.sessions[s.ID] = &s
}

// AddPersona stores a persona
func (b *FakeBackend) AddPersona(p FakePersona) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Aliases == nil {
		p.Aliases = []string{}
	}
	if p.Status == "" {
		p.Status = "Alive"
	}
	b.personas[p.ID] = &p
}

// AddHighlight stores a highlight
func (b *FakeBackend) AddHighlight(h FakeHighlight) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.highlights[h.ID] = &h
}

// AddQuote stores a quote
func (b *FakeBackend) AddQuote(q FakeQuote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[q.ID] = &q
}

// AddMoment stores a moment
func (b *FakeBackend) AddMoment(m FakeMoment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moments[m.ID] = &m
}

// QueueStatuses makes successive session reads report statuses in order.
// The last status sticks.
func (b *FakeBackend) QueueStatuses(sessionID int, statuses ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusQueue[sessionID] = append(b.statusQueue[sessionID], statuses...)
}

// Fail makes every call to route answer with status and a FastAPI style
// detail. Routes are "METHOD /path/prefix" for REST and "graphql:Operation"
// for GraphQL.
func (b *FakeBackend) Fail(route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, detail: detail}
}

// Recover clears a failure set with Fail
func (b *FakeBackend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Calls returns how many times route was hit
func (b *FakeBackend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// Bodies returns the JSON bodies (GraphQL variables for GraphQL routes)
// received by route
func (b *FakeBackend) Bodies(route string) []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]json.RawMessage(nil), b.bodies[route]...)
}

// Uploads returns the multipart uploads received
func (b *FakeBackend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Persona returns a stored persona
func (b *FakeBackend) Persona(id int) (FakePersona, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.personas[id]
	if !ok {
		return FakePersona{}, false
	}
	return *p, true
}

// Highlight returns a stored highlight
func (b *FakeBackend) Highlight(id int) (FakeHighlight, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.highlights[id]
	if !ok {
		return FakeHighlight{}, false
	}
	return *h, true
}

// Session returns a stored session
func (b *FakeBackend) Session(id int) (FakeSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return FakeSession{}, false
	}
	return *s, true
}

func (b *FakeBackend) router() *gin.Engine {
	r := gin.New()
	r.Use(b.record())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Quest Log API is running"})
	})

	r.GET("/campaigns/", b.listCampaigns)
	r.POST("/campaigns/", b.createCampaign)
	r.GET("/campaigns/:id", b.getCampaign)
	r.DELETE("/campaigns/:id", b.deleteCampaign)
	r.POST("/campaigns/:id/generate_summary", b.generateSummary)

	r.GET("/sessions/", b.listSessions)
	r.GET("/sessions/:id", b.getSession)
	r.DELETE("/sessions/:id", b.deleteSession)
	r.POST("/sessions/:id/regenerate", b.regenerateSession)

	r.GET("/personas/", b.listPersonas)
	r.GET("/personas/:id", b.getPersona)
	r.DELETE("/personas/:id", b.deletePersona)
	r.POST("/personas/merge", b.mergePersonas)

	r.GET("/highlights/", b.listHighlights)
	r.GET("/quotes/", b.listQuotes)

	r.GET("/moments/", b.listMoments)
	r.GET("/moments/:id", b.getMoment)
	r.PUT("/moments/:id", b.updateMoment)
	r.DELETE("/moments/:id", b.deleteMoment)

	r.POST("/import_session_text/", b.importText)
	r.POST("/import_local_session/", b.importLocal)
	r.POST("/upload_session/", b.uploadSession)
	r.POST("/reupload_session/:id", b.reuploadSession)

	r.GET("/api/chat/status", b.chatStatus)
	r.POST("/api/chat/librarian", b.chatLibrarian)
	r.POST("/api/chat/index/:id", b.chatIndex)

	r.POST("/graphql", b.graphql)
	return r
}

// record counts calls, keeps JSON bodies and applies injected failures for
// REST routes. GraphQL routes are handled per operation in graphql.
func (b *FakeBackend) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/graphql" {
			c.Next()
			return
		}
		route := c.Request.Method + " " + c.Request.URL.Path

		var body []byte
		if strings.HasPrefix(c.ContentType(), "application/json") {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(strings.NewReader(string(body)))
		}

		b.mu.Lock()
		b.calls[route]++
		if len(body) > 0 {
			b.bodies[route] = append(b.bodies[route], json.RawMessage(body))
		}
		var hit *failure
		for prefix, f := range b.failures {
			if strings.HasPrefix(route, prefix) {
				f := f
				hit = &f
				break
			}
		}
		b.mu.Unlock()

		if hit != nil {
			c.AbortWithStatusJSON(hit.status, gin.H{"detail": hit.detail})
			return
		}
		c.Next()
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
			"loc": []any{"path", "id"}, "msg": "value is not a valid integer", "type": "type_error.integer",
		}}})
		return 0, false
	}
	return id, true
}

func campaignFilter(c *gin.Context) int {
	id, _ := strconv.Atoi(c.Query("campaign_id"))
	return id
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": what + " not found"})
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (b *FakeBackend) newID() int {
	b.nextID++
	return b.nextID
}

func (b *FakeBackend) listCampaigns(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FakeCampaign, 0, len(b.campaigns))
	for _, id := range sortedKeys(b.campaigns) {
		out = append(out, *b.campaigns[id])
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) createCampaign(c *gin.Context) {
	var in FakeCampaign
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
			"loc": []any{"body", "name"}, "msg": "field required", "type": "value_error.missing",
		}}})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	in.ID = b.newID()
	in.CreatedAt = "2024-03-09T19:30:00"
	b.campaigns[in.ID] = &in
	c.JSON(http.StatusOK, in)
}

func (b *FakeBackend) getCampaign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	campaign, ok := b.campaigns[id]
	if !ok {
		notFound(c, "Campaign")
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (b *FakeBackend) deleteCampaign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.campaigns[id]; !ok {
		notFound(c, "Campaign")
		return
	}
	delete(b.campaigns, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (b *FakeBackend) generateSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	campaign, ok := b.campaigns[id]
	if !ok {
		notFound(c, "Campaign")
		return
	}
	summary := "A generated summary of " + campaign.Name
	campaign.Summary = &summary
	c.JSON(http.StatusOK, gin.H{"message": "Campaign summary generation started"})
}

func (b *FakeBackend) listSessions(c *gin.Context) {
	campaignID := campaignFilter(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FakeSession, 0)
	for _, id := range sortedKeys(b.sessions) {
		s := b.sessions[id]
		if campaignID == 0 || s.CampaignID == campaignID {
			out = append(out, *s)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) getSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		notFound(c, "Session")
		return
	}
	if queue := b.statusQueue[id]; len(queue) > 0 {
		s.Status = queue[0]
		if len(queue) > 1 {
			b.statusQueue[id] = queue[1:]
		}
	}
	c.JSON(http.StatusOK, s)
}

func (b *FakeBackend) deleteSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[id]; !ok {
		notFound(c, "Session")
		return
	}
	delete(b.sessions, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (b *FakeBackend) regenerateSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		notFound(c, "Session")
		return
	}
	s.Status = "processing"
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "processing"})
}

// restPersona renders a persona the way the REST table model does, with
// aliases serialized into a string
func restPersona(p *FakePersona) gin.H {
	aliases, _ := json.Marshal(p.Aliases)
	return gin.H{
		"id":                p.ID,
		"campaign_id":       p.CampaignID,
		"name":              p.Name,
		"role":              p.Role,
		"description":       p.Description,
		"voice_description": p.VoiceDescription,
		"summary":           p.Summary,
		"player_name":       p.PlayerName,
		"gender":            p.Gender,
		"race":              p.Race,
		"class_name":        p.ClassName,
		"level":             p.Level,
		"status":            p.Status,
		"faction":           p.Faction,
		"alignment":         p.Alignment,
		"aliases":           string(aliases),
	}
}

func (b *FakeBackend) listPersonas(c *gin.Context) {
	campaignID := campaignFilter(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]gin.H, 0)
	for _, id := range sortedKeys(b.personas) {
		p := b.personas[id]
		if campaignID == 0 || p.CampaignID == campaignID {
			out = append(out, restPersona(p))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) getPersona(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.personas[id]
	if !ok {
		notFound(c, "Persona")
		return
	}
	out := restPersona(p)
	out["highlights"] = b.personaHighlightsLocked(id)
	out["quotes"] = b.personaQuotesLocked(id)
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) deletePersona(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.personas[id]; !ok {
		notFound(c, "Persona")
		return
	}
	delete(b.personas, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (b *FakeBackend) mergePersonas(c *gin.Context) {
	var req struct {
		TargetPersonaID int `json:"target_persona_id"`
		SourcePersonaID int `json:"source_persona_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	target, okT := b.personas[req.TargetPersonaID]
	source, okS := b.personas[req.SourcePersonaID]
	if !okT || !okS {
		notFound(c, "One or both personas")
		return
	}
	for _, h := range b.highlights {
		if h.PersonaID != nil && *h.PersonaID == source.ID {
			h.PersonaID = &target.ID
		}
	}
	for _, q := range b.quotes {
		if q.PersonaID != nil && *q.PersonaID == source.ID {
			q.PersonaID = &target.ID
		}
	}
	if source.Summary != nil {
		merged := fmt.Sprintf("[Merged from %s] %s", source.Name, *source.Summary)
		if target.Summary != nil {
			merged = *target.Summary + "\n" + merged
		}
		target.Summary = &merged
	}
	if target.VoiceDescription == nil {
		target.VoiceDescription = source.VoiceDescription
	}
	delete(b.personas, source.ID)
	c.JSON(http.StatusOK, restPersona(target))
}

func (b *FakeBackend) personaHighlightsLocked(personaID int) []FakeHighlight {
	out := make([]FakeHighlight, 0)
	for _, id := range sortedKeys(b.highlights) {
		h := b.highlights[id]
		if h.PersonaID != nil && *h.PersonaID == personaID {
			out = append(out, *h)
		}
	}
	return out
}

func (b *FakeBackend) personaQuotesLocked(personaID int) []FakeQuote {
	out := make([]FakeQuote, 0)
	for _, id := range sortedKeys(b.quotes) {
		q := b.quotes[id]
		if q.PersonaID != nil && *q.PersonaID == personaID {
			out = append(out, *q)
		}
	}
	return out
}

func (b *FakeBackend) listHighlights(c *gin.Context) {
	campaignID := campaignFilter(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FakeHighlight, 0)
	for _, id := range sortedKeys(b.highlights) {
		h := b.highlights[id]
		if campaignID == 0 || h.CampaignID == campaignID {
			out = append(out, *h)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) listQuotes(c *gin.Context) {
	campaignID := campaignFilter(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FakeQuote, 0)
	for _, id := range sortedKeys(b.quotes) {
		q := b.quotes[id]
		if campaignID == 0 || q.CampaignID == campaignID {
			out = append(out, *q)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) listMoments(c *gin.Context) {
	campaignID := campaignFilter(c)
	sessionID, _ := strconv.Atoi(c.Query("session_id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FakeMoment, 0)
	for _, id := range sortedKeys(b.moments) {
		m := b.moments[id]
		s, ok := b.sessions[m.SessionID]
		if campaignID != 0 && (!ok || s.CampaignID != campaignID) {
			continue
		}
		if sessionID != 0 && m.SessionID != sessionID {
			continue
		}
		out = append(out, *m)
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) getMoment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.moments[id]
	if !ok {
		notFound(c, "Moment")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (b *FakeBackend) updateMoment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in FakeMoment
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.moments[id]
	if !ok {
		notFound(c, "Moment")
		return
	}
	m.Title = in.Title
	m.Description = in.Description
	m.Type = in.Type
	c.JSON(http.StatusOK, m)
}

func (b *FakeBackend) deleteMoment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.moments[id]; !ok {
		notFound(c, "Moment")
		return
	}
	delete(b.moments, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (b *FakeBackend) importText(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		Content    string `json:"content"`
		CampaignID int    `json:"campaign_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.createImported(c, req.CampaignID, req.Name, 0)
}

func (b *FakeBackend) importLocal(c *gin.Context) {
	var req struct {
		Name       string   `json:"name"`
		CampaignID int      `json:"campaign_id"`
		FilePaths  []string `json:"file_paths"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.createImported(c, req.CampaignID, req.Name, len(req.FilePaths))
}

func (b *FakeBackend) createImported(c *gin.Context, campaignID int, name string, fileCount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.campaigns[campaignID]; !ok {
		notFound(c, "Campaign")
		return
	}
	s := &FakeSession{
		ID:         b.newID(),
		CampaignID: campaignID,
		Name:       name,
		Status:     "uploaded",
		CreatedAt:  "2024-03-09T19:30:00",
	}
	b.sessions[s.ID] = s
	out := gin.H{"session_id": s.ID, "status": s.Status}
	if fileCount > 0 {
		out["file_count"] = fileCount
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) readUpload(c *gin.Context) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
			"loc": []any{"body", "files"}, "msg": "field required", "type": "value_error.missing",
		}}})
		return nil, false
	}
	names := make([]string, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		names = append(names, fh.Filename)
	}
	return names, true
}

func (b *FakeBackend) uploadSession(c *gin.Context) {
	names, ok := b.readUpload(c)
	if !ok {
		return
	}
	campaignID, _ := strconv.Atoi(c.Query("campaign_id"))
	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{Path: c.Request.URL.Path, Name: c.Query("name"), FileNames: names})
	b.mu.Unlock()
	b.createImported(c, campaignID, c.Query("name"), len(names))
}

func (b *FakeBackend) reuploadSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	names, ok := b.readUpload(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		notFound(c, "Session")
		return
	}
	b.uploads = append(b.uploads, Upload{Path: c.Request.URL.Path, FileNames: names})
	s.Status = "processing"
	c.JSON(http.StatusOK, gin.H{"session_id": id, "status": s.Status, "file_count": len(names)})
}
