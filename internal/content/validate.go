package content

import (
	"fmt"
	"strings"
)

// Topic length bounds shared by every content type.
const (
	minTopicLength = 3
	maxTopicLength = 500
	maxKeywords    = 20
)

// Constraints bounds the shape of generated content for one content type.
type Constraints struct {
	MinWords    int
	MaxWords    int  // default word budget, overridable per request downward
	MaxTagCount int
	RequireCTA  bool // call to action must be present
	MaxTitleLen int
}

// ForRequest narrows the word budget to a request-level override. The
// override can only tighten the budget, never widen it past the type default,
// and a budget below the type minimum is rejected before any provider call:
// no response could ever satisfy both bounds.
func (c Constraints) ForRequest(req Request) (Constraints, error) {
	if req.MaxWords <= 0 {
		return c, nil
	}
	if c.MinWords > 0 && req.MaxWords < c.MinWords {
		return Constraints{}, fmt.Errorf("word budget %d is below the minimum for %s (min: %d)",
			req.MaxWords, req.Type, c.MinWords)
	}
	if c.MaxWords == 0 || req.MaxWords < c.MaxWords {
		c.MaxWords = req.MaxWords
	}
	return c, nil
}

// ValidateRequest checks a generation request before any provider call is
// made; a bad request must fail fast, never burn retry budget.
func ValidateRequest(req Request) error {
	if !IsValidType(string(req.Type)) {
		return fmt.Errorf("unsupported content type: %s", req.Type)
	}

	topic := strings.TrimSpace(req.Topic)
	if len(topic) < minTopicLength {
		return fmt.Errorf("topic is required (at least %d characters)", minTopicLength)
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("topic exceeds %d characters", maxTopicLength)
	}
	if len(req.Keywords) > maxKeywords {
		return fmt.Errorf("too many keywords: %d (max: %d)", len(req.Keywords), maxKeywords)
	}
	if req.MaxWords < 0 {
		return fmt.Errorf("word budget must not be negative")
	}
	return nil
}

// ValidateGenerated checks parsed content against the constraints of its
// content type.
func ValidateGenerated(c Constraints, gen *Generated) error {
	if gen == nil {
		return fmt.Errorf("generated content is nil")
	}

	words := gen.WordCount()
	if c.MinWords > 0 && words < c.MinWords {
		return fmt.Errorf("body too short: %d words (min: %d)", words, c.MinWords)
	}
	if c.MaxWords > 0 && words > c.MaxWords {
		return fmt.Errorf("body exceeds word budget: %d words (max: %d)", words, c.MaxWords)
	}
	if c.MaxTitleLen > 0 && len(gen.Title) > c.MaxTitleLen {
		return fmt.Errorf("title exceeds %d characters", c.MaxTitleLen)
	}
	if c.MaxTagCount > 0 && len(gen.Tags) > c.MaxTagCount {
		return fmt.Errorf("too many tags: %d (max: %d)", len(gen.Tags), c.MaxTagCount)
	}
	if c.RequireCTA && strings.TrimSpace(gen.CallToAction) == "" {
		return fmt.Errorf("required field callToAction is missing")
	}
	return nil
}
