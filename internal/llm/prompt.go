package llm

import "strings"

// RenderPrompt flattens a Request into a single prompt for backends that
// take one text input per call.
func RenderPrompt(req *Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString(strings.TrimSpace(req.System))
		b.WriteString("\n\n")
	}

	b.WriteString("Conversation history:\n")
	if len(req.History) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, m := range req.History {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	b.WriteString("\nCurrent input: ")
	b.WriteString(req.Input)
	b.WriteString("\nYour labeled reply:")
	return b.String()
}

// mergeRoles collapses consecutive messages from the same role, joining
// their content with a blank line. Some APIs reject repeated roles.
func mergeRoles(msgs []Message) []Message {
	merged := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if n := len(merged); n > 0 && merged[n-1].Role == m.Role {
			merged[n-1].Content += "\n\n" + m.Content
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// conversation returns the history followed by the current input.
func conversation(req *Request) []Message {
	msgs := make([]Message, 0, len(req.History)+1)
	msgs = append(msgs, req.History...)
	return append(msgs, Message{Role: RoleUser, Content: req.Input})
}
