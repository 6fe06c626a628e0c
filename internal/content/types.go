// Package content defines the content-generation domain: request and result
// types, per-type prompt builders, shape validation, and parsing of model
// output into structured content.
package content

import (
	"strings"

	"github.com/google/uuid"
)

// Type identifies the kind of content being generated.
type Type string

// Supported content types.
const (
	TypeBlogPost           Type = "blog_post"
	TypeProductDescription Type = "product_description"
	TypeSocialPost         Type = "social_post"
	TypeEmailCampaign      Type = "email_campaign"
)

// ValidTypes returns the closed set of supported content types.
func ValidTypes() []Type {
	return []Type{TypeBlogPost, TypeProductDescription, TypeSocialPost, TypeEmailCampaign}
}

// IsValidType checks if the given content type is supported.
func IsValidType(t string) bool {
	for _, valid := range ValidTypes() {
		if string(valid) == t {
			return true
		}
	}
	return false
}

// Request describes one generation job. The ID ties log lines, metrics and
// errors from a single job together.
type Request struct {
	ID       string
	Type     Type
	Topic    string
	Tone     string   // e.g. "professional", "casual", "playful"
	Audience string   // e.g. "developers", "small business owners"
	Keywords []string // terms the content should work in naturally
	MaxWords int      // 0 means the per-type default budget
}

// NewRequest creates a request with a fresh ID and defaults.
func NewRequest(t Type, topic string) Request {
	return Request{
		ID:    uuid.NewString(),
		Type:  t,
		Topic: topic,
		Tone:  "professional",
	}
}

// Generated is the structured content parsed from the model's JSON output.
type Generated struct {
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	CallToAction string   `json:"callToAction"`
}

// WordCount counts whitespace-separated words in the body.
func (g *Generated) WordCount() int {
	return len(strings.Fields(g.Body))
}
