package service

import (
	"strings"
)

// Handover-intent keywords, English and Arabic. Matching is substring-based
// on the lowercased message so inflected forms still hit.
var handoverKeywords = []string{
	"agent",
	"human",
	"support",
	"representative",
	"real person",
	"talk to someone",
	"موظف",
	"انسان",
	"إنسان",
	"بشري",
	"خدمة العملاء",
	"اتكلم مع حد",
}

// MatchesHandoverIntent reports whether a message asks for a human agent
func MatchesHandoverIntent(message string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range handoverKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// SuppliesHandoverDetails reports whether a reply to the ask-details prompt
// actually carries details. Anything with substance counts; a bare repeat of
// the handover keywords does not.
func SuppliesHandoverDetails(message string) bool {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return false
	}
	if MatchesHandoverIntent(trimmed) && len(strings.Fields(trimmed)) <= 3 {
		return false
	}
	return len(strings.Fields(trimmed)) >= 2 || strings.Contains(trimmed, ",")
}

// AskDetailsMessage is the scripted prompt asking the visitor for their
// name and a summary of their issue before handing over.
func AskDetailsMessage(dialect string) string {
	if isArabic(dialect) {
		return "بالتأكيد، سأوصلك بأحد موظفينا. من فضلك أخبرني باسمك وملخص قصير لمشكلتك."
	}
	return "Of course, I'll connect you with one of our team members. Please share your name and a short summary of your issue."
}

// HandoverCompleteMessage confirms the handover after details arrive
func HandoverCompleteMessage(dialect string) string {
	if isArabic(dialect) {
		return "شكراً لك، تم تحويل المحادثة إلى فريقنا وسيرد عليك أحد الموظفين قريباً."
	}
	return "Thank you. Your conversation has been passed to our team and someone will be with you shortly."
}

// WaitingForAgentMessage is returned while the visitor waits for a human
func WaitingForAgentMessage(dialect string) string {
	if isArabic(dialect) {
		return "محادثتك مع فريقنا الآن، يرجى الانتظار حتى يرد عليك أحد الموظفين."
	}
	return "Your conversation is with our team now. Please hold on while an agent gets back to you."
}

func isArabic(dialect string) bool {
	switch dialect {
	case "ar", "egyptian", "gulf", "levantine", "msa":
		return true
	}
	return false
}
