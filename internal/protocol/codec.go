// Package protocol encodes and decodes the labeled turns exchanged with the LLM.
//
// Every agent turn has the form "<label>: <content>". The model may only emit
// run-command or final-answer; command-output and user-query label the turns
// the agent itself feeds back into the conversation.
package protocol

import (
	"regexp"
	"strings"
)

// Label identifies what the loop should do with a turn's content.
type Label string

const (
	// LabelNone is returned by Decode when no recognized label is present.
	LabelNone          Label = ""
	LabelRunCommand    Label = "run-command"
	LabelFinalAnswer   Label = "final-answer"
	LabelCommandOutput Label = "command-output"
	LabelUserQuery     Label = "user-query"
)

var (
	// labelRe matches the first model label anywhere in the text, so leading
	// commentary or timestamps are skipped.
	labelRe = regexp.MustCompile(`(?i)(run-command|final-answer)\s*:`)
	// fenceOpenRe matches an opening fence with an optional language tag.
	fenceOpenRe = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n")
)

// Encode renders a labeled turn.
func Encode(label Label, content string) string {
	return string(label) + ": " + content
}

// Decode extracts the first model label and its content from message.
//
// Content runs from the colon to the start of the next recognized label, so
// only the first turn of a multi-turn response is honored. Markdown fence
// markers are removed and the result is trimmed. When no label is found,
// Decode returns LabelNone and the original message unchanged.
func Decode(message string) (Label, string) {
	loc := labelRe.FindStringSubmatchIndex(message)
	if loc == nil {
		return LabelNone, message
	}

	label := Label(strings.ToLower(message[loc[2]:loc[3]]))
	rest := message[loc[1]:]

	if next := labelRe.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}

	return label, StripFences(rest)
}

// StripFences removes markdown code fence markers (keeping the fenced text)
// and trims surrounding whitespace.
func StripFences(s string) string {
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ModelLabel reports whether l is a label the model is allowed to emit.
func ModelLabel(l Label) bool {
	return l == LabelRunCommand || l == LabelFinalAnswer
}
