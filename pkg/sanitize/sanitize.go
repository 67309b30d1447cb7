package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips every tag from user supplied text and collapses whitespace.
func Text(s string) string {
	s = strings.ReplaceAll(s, "<br>", " ")
	s = strings.ReplaceAll(s, "</p>", " ")
	s = strings.ReplaceAll(s, "</div>", " ")

	clean := html.UnescapeString(policy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// Optional sanitizes a nullable field.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	return &clean
}
