package testutil

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

var operationName = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

type graphqlRequest struct {
	Query     string                     `json:"query"`
	Variables map[string]json.RawMessage `json:"variables"`
}

// detectOperation names the operation a request carries. Named operations
// use their name; anonymous ones built from Go structs are matched on the
// field they select.
func detectOperation(query string) string {
	if m := operationName.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	switch {
	case strings.Contains(query, "delete_highlight("):
		return "DeleteHighlight"
	case strings.Contains(query, "delete_quote("):
		return "DeleteQuote"
	case strings.Contains(query, "campaigns{"), strings.Contains(query, "campaigns {"):
		return "Campaigns"
	}
	return ""
}

func (b *FakeBackend) graphql(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
		return
	}
	op := detectOperation(req.Query)
	route := "graphql:" + op

	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls[route]++
	vars, _ := json.Marshal(req.Variables)
	b.bodies[route] = append(b.bodies[route], vars)

	if f, ok := b.failures[route]; ok {
		if f.status != http.StatusOK {
			c.JSON(f.status, gin.H{"detail": f.detail})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": nil, "errors": []gin.H{{"message": f.detail}}})
		return
	}

	data, err := b.resolveLocked(op, req.Variables)
	if err != "" {
		c.JSON(http.StatusOK, gin.H{"data": nil, "errors": []gin.H{{"message": err}}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func intVar(vars map[string]json.RawMessage, name string) int {
	var v int
	_ = json.Unmarshal(vars[name], &v)
	return v
}

func optStringVar(vars map[string]json.RawMessage, name string) *string {
	raw, ok := vars[name]
	if !ok {
		return nil
	}
	var v *string
	_ = json.Unmarshal(raw, &v)
	return v
}

func (b *FakeBackend) resolveLocked(op string, vars map[string]json.RawMessage) (gin.H, string) {
	id := intVar(vars, "id")

	switch op {
	case "Ping":
		return gin.H{"__typename": "Query"}, ""

	case "Campaigns":
		out := make([]gin.H, 0, len(b.campaigns))
		for _, cid := range sortedKeys(b.campaigns) {
			c := b.campaigns[cid]
			out = append(out, gin.H{"id": c.ID, "name": c.Name, "description": c.Description, "summary": c.Summary})
		}
		return gin.H{"campaigns": out}, ""

	case "GetCampaignDashboard":
		c, ok := b.campaigns[id]
		if !ok {
			return gin.H{"campaign": nil}, ""
		}
		return gin.H{"campaign": b.dashboardLocked(c)}, ""

	case "GetCampaignPersonas":
		c, ok := b.campaigns[id]
		if !ok {
			return gin.H{"campaign": nil}, ""
		}
		personas := make([]gin.H, 0)
		for _, pid := range sortedKeys(b.personas) {
			if p := b.personas[pid]; p.CampaignID == c.ID {
				personas = append(personas, b.graphPersonaLocked(p, true))
			}
		}
		return gin.H{"campaign": gin.H{"id": c.ID, "name": c.Name, "personas": personas}}, ""

	case "GetSessionDetails":
		s, ok := b.sessions[id]
		if !ok {
			return gin.H{"session": nil}, ""
		}
		return gin.H{"session": b.graphSessionLocked(s)}, ""

	case "GetPersonaDetails":
		p, ok := b.personas[id]
		if !ok {
			return gin.H{"persona": nil}, ""
		}
		return gin.H{"persona": b.graphPersonaLocked(p, true)}, ""

	case "CreatePersona":
		var in FakePersona
		if err := json.Unmarshal(vars["input"], &in); err != nil {
			return nil, err.Error()
		}
		in.ID = b.newID()
		if in.Aliases == nil {
			in.Aliases = []string{}
		}
		if in.Status == "" {
			in.Status = "Alive"
		}
		b.personas[in.ID] = &in
		return gin.H{"create_persona": b.graphPersonaLocked(&in, false)}, ""

	case "UpdatePersona":
		p, ok := b.personas[id]
		if !ok {
			return gin.H{"update_persona": nil}, ""
		}
		var in FakePersona
		if err := json.Unmarshal(vars["input"], &in); err != nil {
			return nil, err.Error()
		}
		if in.Name == "" || in.Role == "" {
			return nil, "PersonaInput requires name and role"
		}
		// Omitted fields keep their stored value
		p.Name, p.Role = in.Name, in.Role
		if in.Description != "" {
			p.Description = in.Description
		}
		if in.Status != "" {
			p.Status = in.Status
		}
		for _, f := range []struct{ dst, src **string }{
			{&p.VoiceDescription, &in.VoiceDescription},
			{&p.PlayerName, &in.PlayerName},
			{&p.Gender, &in.Gender},
			{&p.Race, &in.Race},
			{&p.ClassName, &in.ClassName},
			{&p.Faction, &in.Faction},
			{&p.Alignment, &in.Alignment},
		} {
			if *f.src != nil {
				*f.dst = *f.src
			}
		}
		if in.Level != nil {
			p.Level = in.Level
		}
		if in.Aliases != nil {
			p.Aliases = in.Aliases
		}
		return gin.H{"update_persona": b.graphPersonaLocked(p, false)}, ""

	case "UpdateSession":
		s, ok := b.sessions[id]
		if !ok {
			return gin.H{"update_session": nil}, ""
		}
		if name := optStringVar(vars, "name"); name != nil {
			s.Name = *name
		}
		if summary := optStringVar(vars, "summary"); summary != nil {
			s.Summary = summary
		}
		return gin.H{"update_session": gin.H{
			"id": s.ID, "name": s.Name, "summary": s.Summary, "status": s.Status, "campaign_id": s.CampaignID,
		}}, ""

	case "RefineSessionSummary":
		s, ok := b.sessions[id]
		if !ok {
			return gin.H{"refine_session_summary": nil}, ""
		}
		refined := "Refined summary"
		if s.Summary != nil {
			refined = "Refined: " + *s.Summary
		}
		s.Summary = &refined
		return gin.H{"refine_session_summary": refined}, ""

	case "UpdateHighlight":
		h, ok := b.highlights[id]
		if !ok {
			return gin.H{"update_highlight": nil}, ""
		}
		var in struct {
			Text      string `json:"text"`
			Type      string `json:"type"`
			PersonaID *int   `json:"persona_id"`
		}
		if err := json.Unmarshal(vars["input"], &in); err != nil {
			return nil, err.Error()
		}
		h.Text, h.Type, h.PersonaID = in.Text, in.Type, in.PersonaID
		return gin.H{"update_highlight": h}, ""

	case "DeleteHighlight":
		_, ok := b.highlights[id]
		delete(b.highlights, id)
		return gin.H{"delete_highlight": ok}, ""

	case "UpdateQuote":
		q, ok := b.quotes[id]
		if !ok {
			return gin.H{"update_quote": nil}, ""
		}
		var in struct {
			Text        string  `json:"text"`
			SpeakerName *string `json:"speaker_name"`
			PersonaID   *int    `json:"persona_id"`
		}
		if err := json.Unmarshal(vars["input"], &in); err != nil {
			return nil, err.Error()
		}
		q.Text, q.SpeakerName, q.PersonaID = in.Text, in.SpeakerName, in.PersonaID
		return gin.H{"update_quote": q}, ""

	case "DeleteQuote":
		_, ok := b.quotes[id]
		delete(b.quotes, id)
		return gin.H{"delete_quote": ok}, ""
	}

	return nil, "unknown operation"
}

func (b *FakeBackend) dashboardLocked(c *FakeCampaign) gin.H {
	sessions := make([]gin.H, 0)
	names := map[int]string{}
	for _, sid := range sortedKeys(b.sessions) {
		s := b.sessions[sid]
		if s.CampaignID != c.ID {
			continue
		}
		names[s.ID] = s.Name
		sessions = append(sessions, gin.H{
			"id": s.ID, "name": s.Name, "status": s.Status, "summary": s.Summary,
			"created_at": s.CreatedAt, "campaign_id": s.CampaignID,
		})
	}

	personas := make([]gin.H, 0)
	for _, pid := range sortedKeys(b.personas) {
		if p := b.personas[pid]; p.CampaignID == c.ID {
			personas = append(personas, b.graphPersonaLocked(p, false))
		}
	}

	moments := make([]gin.H, 0)
	for _, mid := range sortedKeys(b.moments) {
		m := b.moments[mid]
		name, ok := names[m.SessionID]
		if !ok {
			continue
		}
		moments = append(moments, gin.H{
			"id": m.ID, "title": m.Title, "description": m.Description,
			"type": m.Type, "session_id": m.SessionID, "session_name": name,
		})
	}

	return gin.H{
		"id": c.ID, "name": c.Name, "description": c.Description, "summary": c.Summary,
		"sessions": sessions, "personas": personas, "moments": moments,
	}
}

func (b *FakeBackend) graphPersonaLocked(p *FakePersona, withArtifacts bool) gin.H {
	out := gin.H{
		"id": p.ID, "campaign_id": p.CampaignID, "name": p.Name, "role": p.Role,
		"description": p.Description, "voice_description": p.VoiceDescription,
		"summary": p.Summary, "player_name": p.PlayerName, "gender": p.Gender,
		"race": p.Race, "class_name": p.ClassName, "level": p.Level, "status": p.Status,
		"faction": p.Faction, "alignment": p.Alignment, "aliases": p.Aliases,
	}
	if withArtifacts {
		out["highlights"] = b.personaHighlightsLocked(p.ID)
		out["quotes"] = b.personaQuotesLocked(p.ID)
	}
	return out
}

func (b *FakeBackend) graphSessionLocked(s *FakeSession) gin.H {
	highlights := make([]FakeHighlight, 0)
	for _, hid := range sortedKeys(b.highlights) {
		if h := b.highlights[hid]; h.SessionID == s.ID {
			highlights = append(highlights, *h)
		}
	}
	quotes := make([]FakeQuote, 0)
	for _, qid := range sortedKeys(b.quotes) {
		if q := b.quotes[qid]; q.SessionID == s.ID {
			quotes = append(quotes, *q)
		}
	}
	return gin.H{
		"id": s.ID, "name": s.Name, "status": s.Status, "summary": s.Summary,
		"created_at": s.CreatedAt, "campaign_id": s.CampaignID,
		"highlights": highlights, "quotes": quotes,
	}
}
