package service

import (
	"testing"

	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMatchesLeadIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"booking", "I want to book an appointment", true},
		{"pricing", "what is the price of the premium plan?", true},
		{"arabic booking", "عايز حجز موعد", true},
		{"plain question", "what are your opening hours?", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesLeadIntent(tt.message))
		})
	}
}

func TestExtractContactInfo(t *testing.T) {
	t.Run("name and phone in one message", func(t *testing.T) {
		data := &domain.PreChatData{}
		updated := ExtractContactInfo(data, "My name is Sara Ahmed, 0101 234 5678")

		assert.True(t, updated)
		if assert.NotNil(t, data.Name) {
			assert.Equal(t, "Sara Ahmed", *data.Name)
		}
		if assert.NotNil(t, data.Phone) {
			assert.Equal(t, "01012345678", *data.Phone)
		}
		assert.True(t, data.Complete())
	})

	t.Run("phone only", func(t *testing.T) {
		data := &domain.PreChatData{}
		updated := ExtractContactInfo(data, "you can call me on +20 100 555 0123")

		assert.True(t, updated)
		assert.Nil(t, data.Name)
		assert.NotNil(t, data.Phone)
		assert.False(t, data.Complete())
	})

	t.Run("arabic name introduction", func(t *testing.T) {
		data := &domain.PreChatData{}
		updated := ExtractContactInfo(data, "انا كريم ورقمي 0109 876 5432")

		assert.True(t, updated)
		if assert.NotNil(t, data.Name) {
			assert.Equal(t, "كريم ورقمي", *data.Name)
		}
		assert.NotNil(t, data.Phone)
	})

	t.Run("nothing extractable", func(t *testing.T) {
		data := &domain.PreChatData{}
		updated := ExtractContactInfo(data, "do you have this in blue?")

		assert.False(t, updated)
		assert.Nil(t, data.Name)
		assert.Nil(t, data.Phone)
	})

	t.Run("existing fields are kept", func(t *testing.T) {
		name := "Omar"
		data := &domain.PreChatData{Name: &name}
		ExtractContactInfo(data, "my name is Youssef, 0112 345 6789")

		assert.Equal(t, "Omar", *data.Name)
		assert.NotNil(t, data.Phone)
	})

	t.Run("nil data is a no-op", func(t *testing.T) {
		assert.False(t, ExtractContactInfo(nil, "my name is Adam"))
	})
}
