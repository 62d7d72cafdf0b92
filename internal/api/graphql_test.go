package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/testutil"
)

func newGraphQL(t *testing.T, b *testutil.FakeBackend) *GraphQLClient {
	t.Helper()
	return NewGraphQLClient(b.GraphQLURL(), &http.Client{Timeout: 5 * time.Second})
}

func TestGraphQL_PingAndCampaigns(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)
	ctx := context.Background()

	require.NoError(t, g.Ping(ctx))
	assert.Equal(t, 1, b.Calls("graphql:Ping"))

	campaigns, err := g.Campaigns(ctx)
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, "Coastal horror", campaigns[0].Description)
	assert.Equal(t, 1, b.Calls("graphql:Campaigns"))
}

func TestGraphQL_CampaignDashboard(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)

	dash, err := g.CampaignDashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Curse of the Drowned King", dash.Name)
	require.Len(t, dash.Sessions, 1)
	require.Len(t, dash.Personas, 2)
	assert.Equal(t, internal.AliasList{"Red"}, dash.Personas[0].Aliases)
	require.Len(t, dash.Moments, 1)
	assert.Equal(t, "The Lighthouse", lo.FromPtr(dash.Moments[0].SessionName))

	_, err = g.CampaignDashboard(context.Background(), 404)
	assert.True(t, internal.IsNotFound(err))
}

func TestGraphQL_SessionHasStructuredArtifacts(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)

	s, err := g.Session(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, s.Highlights.IsStructured())

	resolved := internal.ResolveSession(s)
	require.Len(t, resolved.High, 1)
	require.Len(t, resolved.Low, 1)
	assert.Equal(t, "Struck true", resolved.High[0].Text)
	assert.False(t, resolved.High[0].Legacy, "structured records beat the legacy string")
	require.Len(t, resolved.Quotes, 1)

	_, err = g.Session(context.Background(), 999)
	assert.True(t, internal.IsNotFound(err))
}

func TestGraphQL_CampaignPersonas(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)

	personas, err := g.CampaignPersonas(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, personas, 2)
	masked := personas[1]
	assert.Equal(t, "The Masked Woman", masked.Name)
	assert.Len(t, internal.ResolvePersona(&masked).Quotes, 1)
}

func TestGraphQL_UpdatePersonaSendsFullAliasList(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)
	ctx := context.Background()

	p, err := g.Persona(ctx, 20)
	require.NoError(t, err)
	p.Aliases = internal.AliasList(internal.AddAlias(p.Aliases, "Scarlet"))

	updated, err := g.UpdatePersona(ctx, p.ID, PersonaInputFrom(*p))
	require.NoError(t, err)
	assert.Equal(t, internal.AliasList{"Red", "Scarlet"}, updated.Aliases)

	stored, _ := b.Persona(20)
	assert.Equal(t, []string{"Red", "Scarlet"}, stored.Aliases)

	bodies := b.Bodies("graphql:UpdatePersona")
	require.Len(t, bodies, 1)
	var vars struct {
		ID    int `json:"id"`
		Input struct {
			Name    string   `json:"name"`
			Aliases []string `json:"aliases"`
		} `json:"input"`
	}
	require.NoError(t, json.Unmarshal(bodies[0], &vars))
	assert.Equal(t, 20, vars.ID)
	assert.Equal(t, "Mira", vars.Input.Name)
	assert.Equal(t, []string{"Red", "Scarlet"}, vars.Input.Aliases)
}

func TestGraphQL_PersonaInputFromSendsEmptyAliases(t *testing.T) {
	in := PersonaInputFrom(internal.Persona{Name: "Bram", Role: internal.RolePC})
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Bram", "role": "PC", "aliases": []}`, string(data))
}

func TestGraphQL_CreatePersona(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)

	created, err := g.CreatePersona(context.Background(), PersonaInput{
		Name:       "Grubnik",
		Role:       internal.RoleMonster,
		CampaignID: intPtr(1),
		Aliases:    []string{"Grub"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsAdversary())

	stored, ok := b.Persona(created.ID)
	require.True(t, ok)
	assert.Equal(t, 1, stored.CampaignID)
}

func TestGraphQL_SessionEdits(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)
	ctx := context.Background()

	updated, err := g.UpdateSession(ctx, 10, strPtr("The Drowned Light"), nil)
	require.NoError(t, err)
	assert.Equal(t, "The Drowned Light", updated.Name)

	refined, err := g.RefineSessionSummary(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Refined summary", refined)

	stored, _ := b.Session(10)
	assert.Equal(t, "The Drowned Light", stored.Name)
	assert.Equal(t, "Refined summary", *stored.Summary)
}

func TestGraphQL_HighlightAndQuoteEdits(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)
	ctx := context.Background()

	h, err := g.UpdateHighlight(ctx, 30, HighlightInput{Text: "Struck very true", Type: "low", PersonaID: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, internal.HighlightLow, h.Type)

	q, err := g.UpdateQuote(ctx, 40, QuoteInput{Text: "Halt!", SpeakerName: strPtr("Guard")})
	require.NoError(t, err)
	assert.Equal(t, "Guard", *q.SpeakerName)

	require.NoError(t, g.DeleteHighlight(ctx, 30))
	_, ok := b.Highlight(30)
	assert.False(t, ok)
	assert.Equal(t, 1, b.Calls("graphql:DeleteHighlight"))

	err = g.DeleteHighlight(ctx, 30)
	assert.True(t, internal.IsNotFound(err), "second delete reports the highlight missing")

	require.NoError(t, g.DeleteQuote(ctx, 40))
	assert.True(t, internal.IsNotFound(g.DeleteQuote(ctx, 40)))

	_, err = g.UpdateHighlight(ctx, 999, HighlightInput{Text: "x", Type: "high"})
	assert.True(t, internal.IsNotFound(err))
}

func TestGraphQL_ErrorsSurface(t *testing.T) {
	b := seededBackend(t)
	g := newGraphQL(t, b)

	b.Fail("graphql:GetSessionDetails", http.StatusOK, "resolver exploded")
	_, err := g.Session(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GetSessionDetails")
	assert.False(t, internal.IsNotFound(err))

	b.Recover("graphql:GetSessionDetails")
	_, err = g.Session(context.Background(), 10)
	assert.NoError(t, err)
}
