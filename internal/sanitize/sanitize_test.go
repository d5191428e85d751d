package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_StripsMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple tag", "Hello <b>world</b>", "Hello world"},
		{"script block", "Hi <script>alert(1)</script> there", "Hi alert(1) there"},
		{"script scheme", `Click javascript:alert(1) now`, "Click alert(1) now"},
		{"data scheme", "See data:text/html;base64,xyz here", "See text/html;base64,xyz here"},
		{"bare word", "enable javascript please", "enable  please"},
		{"rating marker", "Answer here [[rate this answer]]", "Answer here"},
		{"plain text untouched", "Our store opens at 9am.", "Our store opens at 9am."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input, "en").Text)
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello <b>world</b>",
		"Click javascript:alert(1) now [[rating]]",
		"Plain answer with no issues.",
		"",
		`{"answer":"From the envelope","sources":["faq"]}`,
		`{"answer":"{\"answer\":\"We ship within 3 days.\"}"}`,
	}

	for _, input := range inputs {
		once := Sanitize(input, "en")
		twice := Sanitize(once.Text, "en")
		assert.Equal(t, once.Text, twice.Text, "sanitize must be idempotent for %q", input)
	}
}

func TestSanitize_EnvelopeExtraction(t *testing.T) {
	raw := `{"answer":"We ship within 3 days.","sources":["shipping-faq","policy"]}`

	result := Sanitize(raw, "en")
	assert.Equal(t, "We ship within 3 days.", result.Text)
	assert.Equal(t, []string{"shipping-faq", "policy"}, result.Sources)
	assert.False(t, result.Substitute)
}

func TestSanitize_NestedEnvelopeUnwrapsFully(t *testing.T) {
	raw := `{"answer":"{\"answer\":\"We ship within 3 days.\"}","sources":["shipping-faq"]}`

	result := Sanitize(raw, "en")
	assert.Equal(t, "We ship within 3 days.", result.Text)
	assert.Equal(t, []string{"shipping-faq"}, result.Sources)
}

func TestSanitize_EmptySubstitutesFallback(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		result := Sanitize("   ", "en")
		assert.True(t, result.Substitute)
		assert.Equal(t, FallbackMessage("en"), result.Text)
		assert.NotEmpty(t, result.Text)
	})

	t.Run("arabic dialect", func(t *testing.T) {
		result := Sanitize("<br/>", "egyptian")
		assert.True(t, result.Substitute)
		assert.Equal(t, FallbackMessage("egyptian"), result.Text)
	})

	t.Run("only markup", func(t *testing.T) {
		result := Sanitize("<div><span></span></div>", "en")
		assert.True(t, result.Substitute)
	})
}

func TestValidate_WrongLanguage(t *testing.T) {
	issues := Validate("This reply is in English.", "gulf", nil)
	assert.Contains(t, issues, IssueWrongLanguage)

	issues = Validate("مرحباً بك", "gulf", nil)
	assert.NotContains(t, issues, IssueWrongLanguage)

	// Non-Arabic contexts never flag language.
	issues = Validate("Plain English.", "en", nil)
	assert.NotContains(t, issues, IssueWrongLanguage)
}

func TestValidate_KnowledgeUnused(t *testing.T) {
	knowledge := []string{"Orders ship within three business days from Cairo."}

	issues := Validate("We usually ship orders within three business days.", "en", knowledge)
	assert.NotContains(t, issues, IssueKnowledgeUnused)

	issues = Validate("I like turtles.", "en", knowledge)
	assert.Contains(t, issues, IssueKnowledgeUnused)

	// No knowledge provided: nothing to flag.
	issues = Validate("I like turtles.", "en", nil)
	assert.Empty(t, issues)
}
