// Package sanitize normalizes and validates upstream answers before they
// are persisted or delivered. Every assistant turn passes through here; the
// pipeline never delivers raw provider output.
package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	markupTags    = regexp.MustCompile(`<[^>]*>`)
	scriptSchemes = regexp.MustCompile(`(?i)(javascript|data)\s*:`)
	scriptWord    = regexp.MustCompile(`(?i)\bjavascript\b`)
	ratingMarkers = regexp.MustCompile(`(?i)\[\[\s*rat(?:e|ing)[^\]]*\]\]`)
	arabicScript  = regexp.MustCompile(`\p{Arabic}`)
)

// Result is a sanitized answer with citation metadata pulled out of any
// upstream envelope.
type Result struct {
	Text       string
	Sources    []string
	Substitute bool
}

// envelope is the structured payload some providers wrap answers in
type envelope struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// Sanitize strips markup and unsafe content from a raw answer. When nothing
// survives, the dialect-aware fallback apology is substituted so the
// pipeline never delivers an empty assistant turn. Sanitizing already-clean
// text is a no-op.
func Sanitize(raw, dialect string) Result {
	text := raw
	var sources []string

	// A serialized envelope is unwrapped first; its citations ride along
	// separately instead of being rendered verbatim. Providers sometimes
	// double-wrap, so unwrapping repeats until the answer is plain text.
	// Each unwrap strictly shrinks the text, so the loop terminates.
	for {
		ans, srcs, ok := extractEnvelope(text)
		if !ok {
			break
		}
		text = ans
		if len(srcs) > 0 {
			sources = srcs
		}
	}

	text = markupTags.ReplaceAllString(text, "")
	text = scriptSchemes.ReplaceAllString(text, "")
	text = scriptWord.ReplaceAllString(text, "")
	text = ratingMarkers.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if text == "" {
		return Result{Text: FallbackMessage(dialect), Sources: nil, Substitute: true}
	}

	return Result{Text: text, Sources: sources}
}

func extractEnvelope(raw string) (string, []string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return "", nil, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil || env.Answer == "" {
		return "", nil, false
	}

	return env.Answer, env.Sources, true
}

// FallbackMessage returns the fixed apology-and-handover-offer text for a
// dialect. Arabic dialects get the Arabic rendition.
func FallbackMessage(dialect string) string {
	switch dialect {
	case "ar", "egyptian", "gulf", "levantine", "msa":
		return "عذراً، لم أتمكن من الإجابة على سؤالك الآن. هل تود التحدث مع أحد موظفينا؟"
	default:
		return "Sorry, I couldn't come up with an answer just now. Would you like to talk to one of our team members?"
	}
}

// Issue is an advisory validation finding. Issues never block delivery;
// they feed the continuous-improvement pipeline through the logs.
type Issue string

const (
	IssueWrongLanguage   Issue = "wrong_language"
	IssueKnowledgeUnused Issue = "knowledge_unused"
)

// Validate inspects a sanitized answer against its context and returns any
// advisory issues.
func Validate(text, dialect string, knowledge []string) []Issue {
	var issues []Issue

	if isArabicDialect(dialect) && !arabicScript.MatchString(text) {
		issues = append(issues, IssueWrongLanguage)
	}

	if len(knowledge) > 0 && !usesKnowledge(text, knowledge) {
		issues = append(issues, IssueKnowledgeUnused)
	}

	return issues
}

// LogIssues records advisory findings for later review
func LogIssues(conversationID string, issues []Issue) {
	for _, issue := range issues {
		log.Info().
			Str("conversation_id", conversationID).
			Str("issue", string(issue)).
			Msg("answer validation issue")
	}
}

func isArabicDialect(dialect string) bool {
	switch dialect {
	case "ar", "egyptian", "gulf", "levantine", "msa":
		return true
	}
	return false
}

// usesKnowledge checks for lexical overlap between the answer and any
// provided chunk. Overlap of a single significant word counts; this is a
// weak advisory signal, not a grounding proof.
func usesKnowledge(text string, knowledge []string) bool {
	answerWords := significantWords(text)
	for _, chunk := range knowledge {
		for word := range significantWords(chunk) {
			if answerWords[word] {
				return true
			}
		}
	}
	return false
}

func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if len([]rune(w)) > 3 {
			words[w] = true
		}
	}
	return words
}
