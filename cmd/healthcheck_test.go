package cmd

import (
	"net/http"
	"testing"

	"github.com/iksnae/quest-log/testutil"
)

func TestHealthcheckCommand(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "healthcheck", "--verbose")
	if err != nil {
		t.Fatalf("healthcheck failed: %v\n%s", err, out)
	}
	assertContains(t, out,
		"Configuration loaded",
		"REST: "+b.URL(),
		"GraphQL: "+b.GraphQLURL(),
		"REST API reachable",
		"Quest Log API is running",
		"GraphQL endpoint reachable",
		"Found 1 campaign(s)",
		"Backend is healthy",
	)
}

func TestHealthcheckCommand_GraphQLDown(t *testing.T) {
	b := seeded(t)
	b.Fail("graphql:Ping", http.StatusBadGateway, "upstream unavailable")

	out, err := run(t, b, "", "healthcheck")
	if err == nil {
		t.Fatal("healthcheck should fail when GraphQL is down")
	}
	assertContains(t, out, "REST API reachable", "GraphQL endpoint unreachable", "Backend is not fully reachable")
}

func TestHealthcheckCommand_Unreachable(t *testing.T) {
	b := testutil.NewFakeBackend(t)
	url := b.URL()
	b.Server.Close()

	out, err := run(t, nil, "", "healthcheck", "--api-url", url, "--timeout", "1s")
	if err == nil {
		t.Fatal("healthcheck should fail against a closed server")
	}
	assertContains(t, out, "REST API unreachable")
	if b.Calls("GET /campaigns/") != 0 {
		t.Error("campaigns should not be listed when REST is down")
	}
}

func TestHealthcheckVerboseFlag(t *testing.T) {
	if healthcheckCmd.Flag("verbose") == nil {
		t.Error("healthcheck command should have --verbose flag")
	}
	if healthcheckCmd.Flags().ShorthandLookup("v") == nil {
		t.Error("healthcheck command should have -v flag")
	}
}
