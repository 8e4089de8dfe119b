package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RecommendationPayload mirrors one element of the model's array reply.
type RecommendationPayload struct {
	CollegeName     string   `json:"college_name"`
	MatchScore      float64  `json:"match_score"`
	AdmissionChance float64  `json:"admission_chance"`
	FitCategory     string   `json:"fit_category"`
	Justification   string   `json:"justification"`
	MatchReasons    []string `json:"match_reasons"`
	Country         string   `json:"country"`
	City            string   `json:"city"`
	EstimatedCost   string   `json:"estimated_cost"`
	AcceptanceRate  *float64 `json:"acceptance_rate"`
	Website         string   `json:"website"`
}

// DetailPayload mirrors the model's single-college enrichment reply. The
// personalized fields are optional; callers fall back to fixed values when
// the model omits them.
type DetailPayload struct {
	Country         string   `json:"country"`
	City            string   `json:"city"`
	EstimatedCost   string   `json:"estimated_cost"`
	AcceptanceRate  *float64 `json:"acceptance_rate"`
	Website         string   `json:"website"`
	MatchScore      *float64 `json:"match_score"`
	AdmissionChance *float64 `json:"admission_chance"`
	FitCategory     string   `json:"fit_category"`
	Justification   string   `json:"justification"`
	MatchReasons    []string `json:"match_reasons"`
}

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// ParseRecommendationArray extracts college objects from a raw model reply.
// It first tries a strict parse of the cleaned array; if the reply was
// truncated mid-object it falls back to scanning out each complete object,
// returning how many were unrecoverable.
func ParseRecommendationArray(raw string) ([]RecommendationPayload, int, error) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		body := trailingCommaRe.ReplaceAllString(cleaned[start:end+1], "$1")
		var out []RecommendationPayload
		if err := json.Unmarshal([]byte(body), &out); err == nil {
			return out, 0, nil
		}
	} else if start < 0 {
		return nil, 0, fmt.Errorf("no JSON array in reply")
	}

	// Truncated or malformed array. Recover every complete object.
	objects, dropped := scanObjects(cleaned[start:])
	var out []RecommendationPayload
	for _, obj := range objects {
		body := trailingCommaRe.ReplaceAllString(obj, "$1")
		var rec RecommendationPayload
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, dropped, fmt.Errorf("no parsable objects in reply")
	}
	return out, dropped, nil
}

// ParseDetailObject extracts a single JSON object from a raw model reply.
func ParseDetailObject(raw string) (*DetailPayload, error) {
	cleaned := stripFences(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	body := trailingCommaRe.ReplaceAllString(cleaned[start:end+1], "$1")
	var detail DetailPayload
	if err := json.Unmarshal([]byte(body), &detail); err != nil {
		return nil, fmt.Errorf("parse detail object: %w", err)
	}
	return &detail, nil
}

// stripFences removes markdown code fences the model sometimes wraps replies in.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// scanObjects walks the text tracking brace depth and string state, returning
// every complete top-level object plus a count of incomplete trailing ones.
func scanObjects(s string) ([]string, int) {
	var objects []string
	depth := 0
	objStart := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && objStart >= 0 {
					objects = append(objects, s[objStart:i+1])
					objStart = -1
				}
			}
		}
	}

	dropped := 0
	if depth > 0 && objStart >= 0 {
		dropped = 1
	}
	return objects, dropped
}
