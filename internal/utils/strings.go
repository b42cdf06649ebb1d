package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	reScript = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	reStyle  = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)
)

// SanitizeHTML strips HTML tags, script/style content, and decodes
// entities, leaving plain text suitable for prompt building.
func SanitizeHTML(s string) string {
	// Decode entities first (e.g. &lt; -> <) so tags are recognized
	s = html.UnescapeString(s)

	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")

	p := bluemonday.StripTagsPolicy()
	s = p.Sanitize(s)

	// bluemonday re-escapes entities; decode again for plain text
	s = html.UnescapeString(s)

	// Collapse whitespace
	s = strings.Join(strings.Fields(s), " ")

	return s
}

// TruncateRunes cuts s to at most max runes, appending an ellipsis
// when anything was dropped. Slicing by runes keeps multi-byte
// characters intact.
func TruncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
