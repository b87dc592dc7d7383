package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer normalizes stored rich text. Descriptions are authored in the
// admin editor as HTML and rendered unescaped on the public site, so every
// save passes through an allow-list policy; sanitized HTML is the canonical
// persisted format.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").OnElements("span", "p")
	p.RequireNoFollowOnLinks(true)
	return &Sanitizer{policy: p}
}

func (s *Sanitizer) Sanitize(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
