package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/narengee/c4c-api/internal/models"
)

// RecommendationPrompt renders the full matching prompt for a student profile.
// The reply contract is a bare JSON array of college objects.
func RecommendationPrompt(profile *models.StudentProfile) string {
	var b strings.Builder

	b.WriteString("You are an expert college admissions counselor. Recommend between 15 and 20 colleges, ranked best match first, for the student described below.\n\n")

	b.WriteString("SECTION 1: ACADEMIC PROFILE\n")
	fmt.Fprintf(&b, "- Grade level: %s\n", orUnspecified(profile.GradeLevel))
	fmt.Fprintf(&b, "- Country of residence: %s\n", orUnspecified(profile.CountryOfResidence))
	if profile.StateProvince != "" {
		fmt.Fprintf(&b, "- State/province: %s\n", profile.StateProvince)
	}
	fmt.Fprintf(&b, "- Grading system: %s\n", orUnspecified(profile.GradingSystem))
	switch profile.GradingSystem {
	case models.GradingSystemIB:
		if profile.IBTotalPoints != "" {
			fmt.Fprintf(&b, "- IB total points: %s\n", profile.IBTotalPoints)
		}
		for _, s := range profile.IBSubjects {
			fmt.Fprintf(&b, "- IB subject: %s (%s) grade %s\n", s.Subject, s.Level, s.Grade)
		}
	case models.GradingSystemALevels:
		for _, s := range profile.ALevelSubjects {
			fmt.Fprintf(&b, "- A-Level: %s grade %s\n", s.Subject, s.Grade)
		}
	case models.GradingSystemOther:
		fmt.Fprintf(&b, "- Grading system description: %s\n", orUnspecified(profile.OtherGradingSystem))
		fmt.Fprintf(&b, "- Grades: %s\n", orUnspecified(profile.OtherGrades))
	default:
		if profile.GPA != nil {
			fmt.Fprintf(&b, "- GPA: %.2f\n", *profile.GPA)
		}
		if profile.ClassRank != "" {
			fmt.Fprintf(&b, "- Class rank: %s\n", profile.ClassRank)
		}
	}
	if profile.SATScore != nil && *profile.SATScore > 0 {
		fmt.Fprintf(&b, "- SAT score: %d\n", *profile.SATScore)
	}
	if profile.ACTScore != nil && *profile.ACTScore > 0 {
		fmt.Fprintf(&b, "- ACT score: %d\n", *profile.ACTScore)
	}

	b.WriteString("\nSECTION 2: EXTRACURRICULARS\n")
	if len(profile.Extracurriculars) == 0 {
		b.WriteString("- None provided\n")
	}
	for _, e := range profile.Extracurriculars {
		fmt.Fprintf(&b, "- %s (%s): %s\n", e.Activity, orUnspecified(e.Tier), e.Description)
	}

	b.WriteString("\nSECTION 3: ACADEMIC INTERESTS\n")
	fmt.Fprintf(&b, "- Intended majors: %s\n", joinOrUnspecified(profile.IntendedMajors))

	b.WriteString("\nSECTION 4: COLLEGE PREFERENCES\n")
	fmt.Fprintf(&b, "- College size: %s\n", orUnspecified(profile.CollegeSize))
	fmt.Fprintf(&b, "- Campus setting: %s\n", orUnspecified(profile.CampusSetting))
	fmt.Fprintf(&b, "- Geographic preference: %s\n", joinOrUnspecified(profile.GeographicPreference))
	if len(profile.PreferredCountries) > 0 {
		fmt.Fprintf(&b, "- Preferred countries: %s\n", strings.Join(profile.PreferredCountries, ", "))
	}
	if len(profile.PreferredUSStates) > 0 {
		fmt.Fprintf(&b, "- Preferred US states: %s\n", strings.Join(profile.PreferredUSStates, ", "))
	}
	fmt.Fprintf(&b, "- Cost importance: %s\n", orUnspecified(profile.CostImportance))
	fmt.Fprintf(&b, "- Academic reputation importance: %s\n", orUnspecified(profile.AcademicReputation))
	fmt.Fprintf(&b, "- Social life importance: %s\n", orUnspecified(profile.SocialLife))
	fmt.Fprintf(&b, "- Research opportunities: %s\n", orUnspecified(profile.ResearchOpportunities))
	fmt.Fprintf(&b, "- Internship opportunities: %s\n", orUnspecified(profile.InternshipOpportunities))
	fmt.Fprintf(&b, "- Study abroad programs: %s\n", orUnspecified(profile.StudyAbroadPrograms))
	if profile.GreekLifeImportant {
		b.WriteString("- Greek life is important\n")
	}
	if profile.StrongAthletics {
		b.WriteString("- Strong athletics program desired\n")
	}
	if profile.DiverseStudentBody {
		b.WriteString("- Diverse student body desired\n")
	}
	if profile.StrongAlumniNetwork {
		b.WriteString("- Strong alumni network desired\n")
	}
	if profile.OtherPreferences != "" {
		fmt.Fprintf(&b, "- Other preferences: %s\n", profile.OtherPreferences)
	}

	b.WriteString("\nSECTION 5: FINANCIAL CONTEXT\n")
	fmt.Fprintf(&b, "- Family income bracket: %s\n", orUnspecified(profile.FamilyIncome))
	fmt.Fprintf(&b, "- First-generation student: %t\n", profile.FirstGenerationStudent)
	fmt.Fprintf(&b, "- Financial aid needed: %t\n", profile.FinancialAidNeeded)

	b.WriteString("\nREQUIREMENTS:\n")
	b.WriteString("1. GEOGRAPHIC PREFERENCE IS THE TOP PRIORITY. At least 80% of the colleges MUST be located within the student's stated geographic preference (preferred countries or US states). Only if too few strong options exist there may you include colleges elsewhere.\n")
	b.WriteString("2. Balance the list by admission chance: about 30% Safety schools (admission_chance 0.8 or higher), about 50% Target schools (admission_chance between 0.5 and 0.79), and about 20% Reach schools (admission_chance between 0.2 and 0.49).\n")
	b.WriteString("3. fit_category must be exactly one of \"Safety\", \"Target\" or \"Reach\".\n")
	b.WriteString("4. match_score and admission_chance are decimals between 0 and 1.\n")
	b.WriteString("5. Each college needs a concrete justification tied to this student's profile, plus 2-4 short match_reasons.\n")

	b.WriteString("\nReturn ONLY a JSON array, no markdown, no commentary. Each element:\n")
	b.WriteString(`{"college_name": "...", "match_score": 0.0, "admission_chance": 0.0, "fit_category": "Safety|Target|Reach", "justification": "...", "match_reasons": ["..."], "country": "...", "city": "...", "estimated_cost": "...", "acceptance_rate": 0.0, "website": "..."}`)
	b.WriteString("\n")

	return b.String()
}

// CollegeDetailPrompt asks for enrichment data on a single named college,
// plus a fit assessment against the student's profile when one is available.
func CollegeDetailPrompt(collegeName string, profile *models.StudentProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide factual information about %s and assess how well it fits the student below.\n\n", collegeName)
	if profile != nil {
		b.WriteString("STUDENT CONTEXT:\n")
		fmt.Fprintf(&b, "- Grade level: %s\n", orUnspecified(profile.GradeLevel))
		fmt.Fprintf(&b, "- Country of residence: %s\n", orUnspecified(profile.CountryOfResidence))
		if profile.GPA != nil {
			fmt.Fprintf(&b, "- GPA: %.2f\n", *profile.GPA)
		}
		if profile.SATScore != nil && *profile.SATScore > 0 {
			fmt.Fprintf(&b, "- SAT score: %d\n", *profile.SATScore)
		}
		fmt.Fprintf(&b, "- Intended majors: %s\n", joinOrUnspecified(profile.IntendedMajors))
		b.WriteString("\n")
	}
	b.WriteString("Return ONLY a JSON object, no markdown, no commentary:\n")
	b.WriteString(`{"country": "...", "city": "...", "estimated_cost": "...", "acceptance_rate": 0.0, "website": "...", "match_score": 0.0, "admission_chance": 0.0, "fit_category": "Safety|Target|Reach", "justification": "...", "match_reasons": ["..."]}`)
	b.WriteString("\nmatch_score and admission_chance are decimals between 0 and 1 judged against the student context.\n")
	b.WriteString("If a field is unknown use \"Information not available\" for strings and null for numbers.\n")
	return b.String()
}

// ChatPrompt renders the coach assistant prompt. The portfolio payload is
// serialized JSON so the model can answer factual questions from real data.
// When the message names one student, that student's full detail record is
// folded in alongside the caseload summary.
func ChatPrompt(coachName string, portfolio *models.Portfolio, detail *models.StudentDetail, resolvedStudent, mode, message string, history []models.ChatMessage) string {
	var b strings.Builder

	b.WriteString("You are Dr. Sarah Chen, a veteran college admissions counselor with 20 years of experience. ")
	fmt.Fprintf(&b, "You are assisting coach %s with their student caseload.\n\n", coachName)

	if portfolio != nil {
		if data, err := json.Marshal(portfolio); err == nil {
			b.WriteString("CASELOAD DATA (authoritative, use it for any factual answer):\n")
			b.Write(data)
			b.WriteString("\n\n")
		}
	}

	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			fmt.Fprintf(&b, "STUDENT DETAIL for %s (full profile, matches, college list and notes):\n", detail.Student.FullName)
			b.Write(data)
			b.WriteString("\n\n")
		}
	}

	switch mode {
	case models.ChatModeFactual:
		b.WriteString("The coach is asking a FACTUAL question about their students. Answer strictly from the caseload data above. If the data does not contain the answer, say so plainly. Do not invent numbers.\n")
	case models.ChatModeNotesSummary:
		b.WriteString("The coach wants a SUMMARY of their notes and conversations. Summarize faithfully from the caseload data. Group by student and highlight follow-ups and concerns.\n")
	default:
		b.WriteString("The coach wants coaching guidance. Give practical, specific admissions advice informed by the caseload data where relevant.\n")
	}
	if resolvedStudent != "" {
		fmt.Fprintf(&b, "The question concerns the student named %q. Focus on that student.\n", resolvedStudent)
	}

	if len(history) > 0 {
		b.WriteString("\nRECENT CONVERSATION:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	fmt.Fprintf(&b, "\nCoach's message: %s\n", message)
	return b.String()
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func joinOrUnspecified(values []string) string {
	if len(values) == 0 {
		return "Not specified"
	}
	return strings.Join(values, ", ")
}
