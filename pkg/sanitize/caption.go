// Package sanitize cleans free-form model output into listing text.
package sanitize

import (
	"regexp"
	"strings"
)

var introPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s|’s| is)\s+(?:a|an|your|the)\s+(?:compelling\s+|catchy\s+)?(?:facebook\s+marketplace\s+)?(?:caption|listing)(?:\s+for\s+[^:\n]*:)?[:\s]*`),
	regexp.MustCompile(`(?i)^here is a compelling[:\s]*`),
	regexp.MustCompile(`(?i)^here is your[:\s]*`),
}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

var markdown = []rewrite{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "${1}"},
	{regexp.MustCompile(`\*(.*?)\*`), "${1}"},
	{regexp.MustCompile(`(^|[^\w])__([^\n]*?)__([^\w]|$)`), "${1}${2}${3}"},
	{regexp.MustCompile(`(^|[^\w])_([^_\n]+)_([^\w]|$)`), "${1}${2}${3}"},
	{regexp.MustCompile(`~~(.*?)~~`), "${1}"},
	{regexp.MustCompile("`(.*?)`"), "${1}"},
	{regexp.MustCompile(`(?m)^#{1,6}[ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`), ""},
}

// Caption strips assistant preambles and markdown from a generated caption.
// Every stage only deletes text, so repeating the pass until nothing
// changes terminates, and Caption(Caption(x)) == Caption(x).
func Caption(raw string) string {
	text := strings.TrimSpace(raw)
	for {
		next := captionPass(text)
		if next == text {
			return text
		}
		text = next
	}
}

func captionPass(text string) string {
	for _, re := range introPhrases {
		text = strings.TrimSpace(re.ReplaceAllString(text, ""))
	}
	for _, rw := range markdown {
		text = strings.TrimSpace(rw.re.ReplaceAllString(text, rw.repl))
	}
	return text
}
