package protocol

import "regexp"

// commandHintRe matches superficial cues that text is a mongosh command.
var commandHintRe = regexp.MustCompile(`(?i)\bdb\.|show\s+|use\s+`)

// emptyResponseNote is the final answer substituted for an empty model reply.
const emptyResponseNote = "(the model returned an empty or markdown-only response)"

// InferLabel guesses a label for model output that carries none.
//
// This is a best-effort heuristic, not part of the protocol: text that looks
// like a shell command (db., show, use) becomes run-command, anything else
// becomes final-answer. Callers must treat the result as unverified.
func InferLabel(raw string) (Label, string) {
	text := StripFences(raw)
	if text == "" {
		return LabelFinalAnswer, emptyResponseNote
	}
	if commandHintRe.MatchString(text) {
		return LabelRunCommand, text
	}
	return LabelFinalAnswer, text
}
