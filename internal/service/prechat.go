package service

import (
	"regexp"
	"strings"

	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
)

// Lead-intent keywords that trigger the contact-collection sub-flow when a
// tenant has it enabled. English and Arabic.
var leadKeywords = []string{
	"book",
	"booking",
	"appointment",
	"reserve",
	"price",
	"quote",
	"order",
	"buy",
	"حجز",
	"موعد",
	"سعر",
	"اشتري",
	"اطلب",
}

var (
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-]{6,14}\d`)
	namePattern  = regexp.MustCompile(`(?i)(?:my name is|i am|i'm|this is|انا|أنا|اسمي)\s+([\p{L}]+(?:\s+[\p{L}]+)?)`)
)

// MatchesLeadIntent reports whether a message signals buying/booking intent
func MatchesLeadIntent(message string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range leadKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// ContactRequestMessage is the scripted ask for name and phone number
func ContactRequestMessage(dialect string) string {
	if isArabic(dialect) {
		return "يسعدنا مساعدتك! من فضلك شاركنا اسمك ورقم هاتفك حتى يتواصل معك فريقنا."
	}
	return "Happy to help! Please share your name and phone number so our team can reach you."
}

// ExtractContactInfo opportunistically fills missing pre-chat fields from a
// message. It returns whether anything new was captured. Extraction never
// blocks the turn; a non-matching message just leaves the fields empty.
func ExtractContactInfo(data *domain.PreChatData, message string) bool {
	if data == nil {
		return false
	}

	updated := false

	if data.Phone == nil {
		if m := phonePattern.FindString(message); m != "" {
			phone := strings.Join(strings.Fields(m), "")
			data.Phone = &phone
			updated = true
		}
	}

	if data.Name == nil {
		if m := namePattern.FindStringSubmatch(message); len(m) > 1 {
			name := strings.TrimSpace(m[1])
			data.Name = &name
			updated = true
		}
	}

	return updated
}
