package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// maxJSONResponseSize caps the extracted JSON (1MB) to prevent memory
// exhaustion from a runaway model response.
const maxJSONResponseSize = 1024 * 1024

// Parse extracts and parses the JSON content object from a model response.
// Models wrap JSON in prose or markdown fences often enough that the first
// balanced object is extracted rather than trusting the whole response, and
// malformed JSON is repaired before giving up.
func Parse(response string) (*Generated, error) {
	jsonMatch := extractJSON(response)
	if jsonMatch == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	if len(jsonMatch) > maxJSONResponseSize {
		return nil, fmt.Errorf("JSON response too large: %d bytes (max: %d)", len(jsonMatch), maxJSONResponseSize)
	}

	var gen Generated
	if err := json.Unmarshal([]byte(jsonMatch), &gen); err != nil {
		// LLMs produce single quotes, trailing commas and bad escapes;
		// repair once and retry before failing.
		repaired, repairErr := jsonrepair.JSONRepair(jsonMatch)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w (repair also failed: %v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &gen); err != nil {
			return nil, fmt.Errorf("failed to parse repaired JSON response: %w", err)
		}
	}

	if err := validateGeneratedShape(&gen); err != nil {
		return nil, fmt.Errorf("generated content validation failed: %w", err)
	}

	return &gen, nil
}

// validateGeneratedShape checks the fields every content type requires and
// normalizes optional ones.
func validateGeneratedShape(gen *Generated) error {
	if strings.TrimSpace(gen.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(gen.Body) == "" {
		return fmt.Errorf("body is required")
	}
	if gen.Tags == nil {
		gen.Tags = []string{}
	}
	return nil
}

// extractJSON extracts the first balanced JSON object from a response
// string. Brace depth tracking is more reliable than greedy regex matching
// when the body itself contains braces.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	if startIdx == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := startIdx; i < len(response); i++ {
		char := response[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' && inString {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if char == '{' {
			depth++
		} else if char == '}' {
			depth--
			if depth == 0 {
				return response[startIdx : i+1]
			}
		}
	}

	return ""
}
