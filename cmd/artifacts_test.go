package cmd

import (
	"net/http"
	"strings"
	"testing"
)

func TestHighlightList(t *testing.T) {
	b := seeded(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"highlight", "list"},
			want: []string{"Highlights (1)", "Struck true", "Low points (1)", "Fell in the sea"},
		},
		{
			name:    "low only",
			args:    []string{"highlight", "list", "--type", "low"},
			want:    []string{"Fell in the sea"},
			notWant: []string{"Struck true"},
		},
		{
			name:    "search",
			args:    []string{"highlight", "list", "-s", "SEA"},
			want:    []string{"Fell in the sea"},
			notWant: []string{"Struck true"},
		},
		{
			name: "no match",
			args: []string{"highlight", "list", "-s", "dragon"},
			want: []string{"No highlights found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, b, "", append([]string{"-c", "1"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			assertContains(t, out, tt.want...)
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output should not contain %q", nw)
				}
			}
		})
	}

	if _, err := run(t, b, "", "-c", "1", "highlight", "list", "--type", "sideways"); err == nil {
		t.Error("an unknown --type should fail")
	}
}

func TestHighlightEdit(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "highlight", "edit", "30", "--low")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Updated low 30")

	h, _ := b.Highlight(30)
	if h.Type != "low" || h.Text != "Struck true" || h.PersonaID == nil || *h.PersonaID != 21 {
		t.Errorf("stored highlight = %+v", h)
	}
}

func TestHighlightEdit_ClearPersona(t *testing.T) {
	b := seeded(t)

	if _, err := run(t, b, "", "-c", "1", "highlight", "edit", "31", "--text", "Fell in the harbour", "--persona", "0"); err != nil {
		t.Fatal(err)
	}
	h, _ := b.Highlight(31)
	if h.Text != "Fell in the harbour" || h.Type != "low" || h.PersonaID != nil {
		t.Errorf("stored highlight = %+v", h)
	}
}

func TestHighlightEdit_Unknown(t *testing.T) {
	b := seeded(t)

	_, err := run(t, b, "", "-c", "1", "highlight", "edit", "99", "--low")
	if err == nil || !strings.Contains(err.Error(), "highlight 99 is not in campaign 1") {
		t.Errorf("err = %v", err)
	}
}

func TestHighlightDelete_Failure(t *testing.T) {
	b := seeded(t)
	b.Fail("graphql:DeleteHighlight", http.StatusOK, "database is locked")

	_, err := run(t, b, "", "-c", "1", "highlight", "delete", "30")
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("err = %v", err)
	}
	if _, ok := b.Highlight(30); !ok {
		t.Error("highlight 30 should survive a failed delete")
	}
}

func TestQuoteList(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "quote", "list")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Quotes (2)", "Who goes there?", "Follow the light", "Keeper")
}

func TestQuoteBook(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "quote", "book", "--search", "masked")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Quotes (1)", "Who goes there?", "The Masked Woman")
	if strings.Contains(out, "Follow the light") {
		t.Error("search should drop Mira's quote")
	}
}

func TestQuoteEdit(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "quote", "edit", "41", "--speaker", "")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Updated quote 41")

	bodies := b.Bodies("graphql:UpdateQuote")
	if len(bodies) != 1 {
		t.Fatalf("UpdateQuote called %d times", len(bodies))
	}
	body := string(bodies[0])
	if !strings.Contains(body, `"speaker_name":null`) || !strings.Contains(body, "Follow the light") {
		t.Errorf("variables = %s", body)
	}
}

func TestQuoteDelete(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "quote", "delete", "40")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Deleted quote 40")
	if b.Calls("graphql:DeleteQuote") != 1 {
		t.Error("DeleteQuote not called")
	}
}

func TestMomentList(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "moment", "list")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Pratfall", "funny", "Rule of cool", "highlight")

	out, err = run(t, b, "", "moment", "list", "--session", "11")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Rule of cool")
	if strings.Contains(out, "Pratfall") {
		t.Error("session filter should drop session 10's moment")
	}

	if _, err := run(t, b, "", "moment", "list"); err == nil {
		t.Error("moment list needs a campaign or a session")
	}
}

func TestMomentEdit(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "moment", "edit", "50", "--title", "Grand pratfall")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Updated moment 50: Grand pratfall")

	bodies := b.Bodies("PUT /moments/50")
	if len(bodies) != 1 || !strings.Contains(string(bodies[0]), `"type":"funny"`) {
		t.Errorf("moment body = %s", bodies)
	}
}

func TestMomentDelete(t *testing.T) {
	b := seeded(t)

	out, err := run(t, b, "", "-c", "1", "moment", "delete", "51")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Deleted moment 51")
	if b.Calls("DELETE /moments/51") != 1 {
		t.Error("delete not sent")
	}
}
