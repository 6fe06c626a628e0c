package content

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// PromptBuilder renders the system and user prompts for one content type.
type PromptBuilder interface {
	// GetSystemPrompt returns the role and output-format instructions.
	GetSystemPrompt() string

	// GetUserPrompt renders the generation request into the user message.
	// User-supplied fields are sanitized against prompt injection.
	GetUserPrompt(req Request) string

	// GetContentType returns the content type this builder serves.
	GetContentType() Type
}

// templatePrompt is the shared PromptBuilder implementation; per-type
// behavior is data in the promptProfiles table, not branching code.
type templatePrompt struct {
	contentType Type
	role        string
	guidance    string
}

// promptProfiles drives prompt construction per content type.
var promptProfiles = map[Type]templatePrompt{
	TypeBlogPost: {
		contentType: TypeBlogPost,
		role:        "You are an experienced editorial writer producing well-structured long-form blog posts.",
		guidance: `- Open with a hook, develop 3-5 sections with subheadings, close with a takeaway
- Work the keywords in naturally; never stuff them
- Prefer concrete examples over abstract claims`,
	},
	TypeProductDescription: {
		contentType: TypeProductDescription,
		role:        "You are a conversion-focused copywriter producing concise product descriptions.",
		guidance: `- Lead with the primary benefit, follow with 2-4 supporting features
- Keep sentences short and scannable
- End with a clear call to action`,
	},
	TypeSocialPost: {
		contentType: TypeSocialPost,
		role:        "You are a social media copywriter producing short, punchy posts.",
		guidance: `- One idea per post, written to stop the scroll
- Include 3-5 relevant hashtags in the tags array, without the # prefix
- Stay well under platform length limits`,
	},
	TypeEmailCampaign: {
		contentType: TypeEmailCampaign,
		role:        "You are an email marketing writer producing campaign emails that get opened and clicked.",
		guidance: `- The title field is the subject line: specific, under 60 characters
- Short paragraphs, one clear call to action
- Write like a person, not a brand`,
	},
}

// NewPromptBuilder returns the prompt builder for a content type, or nil for
// an unknown type.
func NewPromptBuilder(t Type) PromptBuilder {
	profile, ok := promptProfiles[t]
	if !ok {
		return nil
	}
	return &profile
}

func (p *templatePrompt) GetContentType() Type {
	return p.contentType
}

func (p *templatePrompt) GetSystemPrompt() string {
	return p.role + `

**Writing guidance:**
` + p.guidance + `

**Output Requirements:**

You MUST respond with a valid JSON object (and ONLY JSON) in this exact format:

{
  "title": "The content title or subject line",
  "body": "The full content body",
  "summary": "1-2 sentence summary of the content",
  "tags": ["relevant", "topic", "tags"],
  "callToAction": "Optional closing call to action"
}

**Principles:**
- Stay on the requested topic; do not invent product claims or statistics
- Match the requested tone and audience
- Respect the word budget
- Empty tags and callToAction are acceptable when not applicable`
}

func (p *templatePrompt) GetUserPrompt(req Request) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("CONTENT TYPE: %s\n", p.contentType))
	prompt.WriteString(fmt.Sprintf("TOPIC: %s\n", SanitizeUserInput(req.Topic)))

	if req.Tone != "" {
		prompt.WriteString(fmt.Sprintf("TONE: %s\n", SanitizeUserInput(req.Tone)))
	}
	if req.Audience != "" {
		prompt.WriteString(fmt.Sprintf("AUDIENCE: %s\n", SanitizeUserInput(req.Audience)))
	}
	if len(req.Keywords) > 0 {
		prompt.WriteString(fmt.Sprintf("KEYWORDS: %s\n", SanitizeUserInput(strings.Join(req.Keywords, ", "))))
	}
	if req.MaxWords > 0 {
		prompt.WriteString(fmt.Sprintf("WORD BUDGET: at most %d words\n", req.MaxWords))
	}

	prompt.WriteString("\nGenerate the content described above and respond in JSON format as specified.")

	return prompt.String()
}

// promptInjectionPatterns matches common attempts to override the system
// prompt through user-supplied topic or keyword fields.
var promptInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+a`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
	regexp.MustCompile(`(?i)system\s*prompt\s*:`),
	regexp.MustCompile(`(?i)\bASSISTANT\s*:`),
	regexp.MustCompile(`(?i)\bHUMAN\s*:`),
	regexp.MustCompile(`(?i)\bUSER\s*:`),
	regexp.MustCompile(`(?i)\bSYSTEM\s*:`),
}

// SanitizeUserInput strips non-printable characters and known prompt
// injection patterns from user-supplied request fields before they reach
// the model.
func SanitizeUserInput(input string) string {
	var sanitized strings.Builder
	sanitized.Grow(len(input))

	for _, r := range input {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	for _, pattern := range promptInjectionPatterns {
		result = pattern.ReplaceAllString(result, "[FILTERED]")
	}

	excessiveNewlines := regexp.MustCompile(`\n{3,}`)
	result = excessiveNewlines.ReplaceAllString(result, "\n\n")

	return result
}
