package llm

import (
	"regexp"
	"strings"
)

// reFence matches the first ```lang ... ``` block, keeping its content.
// The language tag is optional; (?s) lets the body span lines.
var reFence = regexp.MustCompile("(?s)```(?:[a-zA-Z]+\n)?(.*?)```")

// StripCodeFence removes a single fenced code block wrapping the model's
// output and returns the trimmed content. Input without a complete fence is
// returned trimmed and otherwise unchanged. Pure and total: there is no
// failure mode, malformed input degrades to the trimmed original text.
func StripCodeFence(text string) string {
	if m := reFence.FindStringSubmatchIndex(text); m != nil {
		text = text[:m[0]] + text[m[2]:m[3]] + text[m[1]:]
	}
	return strings.TrimSpace(text)
}
