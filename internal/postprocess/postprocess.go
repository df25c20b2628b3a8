// Package postprocess cleans the raw model answer before it is shown in the chat.
package postprocess

import "strings"

// Clean drops a trailing line that does not end a sentence, then drops the first line.
//
// The first line is removed unconditionally; with the instruction-tuned models used
// here it usually restates the question. A second pass therefore removes another line.
func Clean(raw string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && !endsSentence(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= 1 {
		return ""
	}
	return strings.Join(lines[1:], "\n")
}

func endsSentence(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasSuffix(line, ".") || strings.HasSuffix(line, "?") || strings.HasSuffix(line, "!")
}
