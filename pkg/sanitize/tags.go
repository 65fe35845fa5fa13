package sanitize

import "strings"

// Tags splits a comma or newline separated keyword list into lowercase,
// trimmed, non-empty tags. Duplicates are dropped keeping first-seen order.
func Tags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	seen := make(map[string]struct{}, len(fields))
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		tag := strings.ToLower(strings.TrimSpace(field))
		tag = strings.TrimSpace(strings.Trim(tag, `"'.`))
		tag = strings.TrimSpace(strings.TrimLeft(tag, "#"))
		tag = strings.TrimSpace(strings.Trim(tag, `"'.`))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
