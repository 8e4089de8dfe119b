package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/narengee/c4c-api/internal/models"
)

func TestRecommendationPromptContract(t *testing.T) {
	gpa := 3.8
	profile := &models.StudentProfile{
		GradeLevel:         "11th Grade",
		GradingSystem:      models.GradingSystemUSGPA,
		GPA:                &gpa,
		IntendedMajors:     models.StringList{"Computer Science"},
		PreferredCountries: models.StringList{"United Kingdom"},
	}

	prompt := RecommendationPrompt(profile)

	assert.Contains(t, prompt, "between 15 and 20 colleges")
	assert.Contains(t, prompt, "At least 80% of the colleges")
	assert.Contains(t, prompt, "about 30% Safety schools (admission_chance 0.8 or higher)")
	assert.Contains(t, prompt, "about 50% Target schools (admission_chance between 0.5 and 0.79)")
	assert.Contains(t, prompt, "about 20% Reach schools (admission_chance between 0.2 and 0.49)")
	assert.Contains(t, prompt, "United Kingdom")
	assert.Contains(t, prompt, "GPA: 3.80")
}

func TestCollegeDetailPromptRequestsPersonalizedFit(t *testing.T) {
	gpa := 3.4
	profile := &models.StudentProfile{
		GradeLevel:     "12th Grade",
		GradingSystem:  models.GradingSystemUSGPA,
		GPA:            &gpa,
		IntendedMajors: models.StringList{"Biology"},
	}

	prompt := CollegeDetailPrompt("University of Oxford", profile)

	assert.Contains(t, prompt, "University of Oxford")
	assert.Contains(t, prompt, "Biology")
	assert.Contains(t, prompt, `"match_score"`)
	assert.Contains(t, prompt, `"admission_chance"`)
	assert.Contains(t, prompt, `"fit_category"`)
	assert.Contains(t, prompt, `"match_reasons"`)

	// A missing profile still yields a usable factual prompt.
	bare := CollegeDetailPrompt("University of Oxford", nil)
	assert.NotContains(t, bare, "STUDENT CONTEXT")
	assert.Contains(t, bare, `"match_score"`)
}
