package responder

import (
	"fmt"
	"strings"
)

// BuildPrompt assembles the support-agent prompt for one visitor turn.
// Knowledge chunks are numbered so providers can cite them back.
func BuildPrompt(req Request) string {
	var b strings.Builder

	brand := req.BrandName
	if brand == "" {
		brand = "the business"
	}

	fmt.Fprintf(&b, "You are a customer support assistant for %s.\n", brand)
	b.WriteString("Answer concisely and only from the reference content below. If the reference content does not cover the question, say you don't know and offer to connect the visitor with the team.\n")

	if req.Dialect != "" {
		fmt.Fprintf(&b, "Reply in the visitor's language, using the %s dialect where applicable.\n", req.Dialect)
	}

	if len(req.Knowledge) > 0 {
		b.WriteString("\nReference content:\n")
		for i, chunk := range req.Knowledge {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, chunk)
		}
	}

	if len(req.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&b, "\nVisitor: %s\nAssistant:", req.Message)

	return b.String()
}

// SystemInstruction is the fixed system message for chat-style providers
const SystemInstruction = "You are a helpful customer support assistant. Answer from the provided reference content only. Be brief and polite."
