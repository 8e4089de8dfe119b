package service

import (
	"math"

	"github.com/narengee/c4c-api/internal/models"
)

// profileChecklist counts how many of the core intake items a profile covers.
func profileChecklist(p *models.StudentProfile) (met, total int) {
	total = 7
	if p == nil {
		return 0, total
	}
	if p.GradeLevel != "" {
		met++
	}
	if p.GPA != nil || p.IBTotalPoints != "" || len(p.ALevelSubjects) > 0 || p.OtherGrades != "" {
		met++
	}
	if len(p.Extracurriculars) > 0 {
		met++
	}
	if len(p.IntendedMajors) > 0 {
		met++
	}
	if p.FamilyIncome != "" {
		met++
	}
	if len(p.GeographicPreference) > 0 || len(p.PreferredCountries) > 0 || len(p.PreferredUSStates) > 0 {
		met++
	}
	if p.HasTestScore() {
		met++
	}
	return met, total
}

// profileReadyForMatching reports whether the intake covers enough of the
// checklist for the model to produce grounded recommendations.
func profileReadyForMatching(p *models.StudentProfile) bool {
	met, total := profileChecklist(p)
	return met*100/total >= 50
}

// profileCompletion scores overall progress out of 100. Three sections weigh
// equally: the intake checklist, having generated matches, and having a
// college list. A near-complete checklist earns a small bonus.
func profileCompletion(p *models.StudentProfile, matchCount, listCount int) int {
	met, total := profileChecklist(p)
	checklistPct := met * 100 / total

	sections := 0
	if checklistPct >= 50 {
		sections++
	}
	if matchCount > 0 {
		sections++
	}
	if listCount > 0 {
		sections++
	}

	score := int(math.Round(float64(sections) / 3 * 100))
	if checklistPct >= 80 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
