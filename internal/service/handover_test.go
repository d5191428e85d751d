package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesHandoverIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"direct ask", "I want to talk to a human", true},
		{"agent keyword", "can I speak with an AGENT?", true},
		{"real person phrase", "is there a real person I can talk to", true},
		{"arabic employee", "عايز اكلم موظف", true},
		{"arabic customer service", "محتاج خدمة العملاء", true},
		{"plain question", "what are your opening hours?", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesHandoverIntent(tt.message))
		})
	}
}

func TestSuppliesHandoverDetails(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"real details", "My order 1923 arrived broken, I need a replacement", true},
		{"name and issue", "Sara, billing problem", true},
		{"two words", "billing issue", true},
		{"bare keyword repeat", "human", false},
		{"short keyword repeat", "talk to someone", false},
		{"single word", "help", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuppliesHandoverDetails(tt.message))
		})
	}
}

func TestScriptedMessagesFollowDialect(t *testing.T) {
	assert.Contains(t, AskDetailsMessage("en"), "connect you")
	assert.Contains(t, AskDetailsMessage("egyptian"), "موظفينا")
	assert.Contains(t, HandoverCompleteMessage("en"), "passed to our team")
	assert.Contains(t, HandoverCompleteMessage("ar"), "فريقنا")
	assert.Contains(t, WaitingForAgentMessage("en"), "hold on")
	assert.Contains(t, WaitingForAgentMessage("gulf"), "الانتظار")
}
