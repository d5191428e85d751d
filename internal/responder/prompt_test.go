package responder_test

import (
	"strings"
	"testing"

	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
)

func TestBuildPrompt(t *testing.T) {
	req := responder.Request{
		Message:   "Do you deliver on Fridays?",
		Dialect:   "egyptian",
		BrandName: "Cairo Bikes",
		Knowledge: []string{
			"Deliveries run Saturday through Thursday.",
			"Orders above 500 EGP ship free.",
		},
	}

	prompt := responder.BuildPrompt(req)

	mustContain := []string{
		"Cairo Bikes",
		"egyptian",
		"[1] Deliveries run Saturday through Thursday.",
		"[2] Orders above 500 EGP ship free.",
		"Visitor: Do you deliver on Fridays?",
	}

	for _, s := range mustContain {
		if !contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
}

func TestBuildPrompt_WithHistory(t *testing.T) {
	req := responder.Request{
		Message: "And in red?",
		History: []responder.HistoryTurn{
			{Role: "user", Content: "Do you have the city bike in stock?"},
			{Role: "assistant", Content: "Yes, the city bike is in stock."},
		},
	}

	prompt := responder.BuildPrompt(req)

	mustContain := []string{
		"user: Do you have the city bike in stock?",
		"assistant: Yes, the city bike is in stock.",
		"Visitor: And in red?",
	}

	for _, s := range mustContain {
		if !contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
}

func TestBuildPrompt_NoBrandFallsBack(t *testing.T) {
	prompt := responder.BuildPrompt(responder.Request{Message: "hi"})

	if !contains(prompt, "the business") {
		t.Error("prompt should fall back to a generic brand name")
	}
	if contains(prompt, "Reference content:") {
		t.Error("prompt should omit the reference section when there is no knowledge")
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
