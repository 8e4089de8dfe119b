package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Grading system tokens accepted on student profiles.
const (
	GradingSystemUSGPA   = "US GPA"
	GradingSystemIB      = "International Baccalaureate (IB)"
	GradingSystemALevels = "A-Levels"
	GradingSystemOther   = "Other"
)

// Extracurricular describes one activity on a student profile.
type Extracurricular struct {
	Activity    string `json:"activity"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

// ExtracurricularList is persisted as a JSONB column.
type ExtracurricularList []Extracurricular

func (l ExtracurricularList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *ExtracurricularList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// ALevelSubject is one A-Level subject and its grade.
type ALevelSubject struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
}

// ALevelSubjectList is persisted as a JSONB column.
type ALevelSubjectList []ALevelSubject

func (l ALevelSubjectList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *ALevelSubjectList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// IBSubject is one IB subject with its level (HL/SL) and grade.
type IBSubject struct {
	Subject string `json:"subject"`
	Level   string `json:"level"`
	Grade   string `json:"grade"`
}

// IBSubjectList is persisted as a JSONB column.
type IBSubjectList []IBSubject

func (l IBSubjectList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *IBSubjectList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// StudentProfile is one student's academic and preference snapshot.
type StudentProfile struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`

	GradeLevel         string `db:"grade_level" json:"grade_level"`
	CountryOfResidence string `db:"country_of_residence" json:"country_of_residence"`
	StateProvince      string `db:"state_province" json:"state_province"`

	GradingSystem      string              `db:"grading_system" json:"grading_system"`
	GPA                *float64            `db:"gpa" json:"gpa,omitempty"`
	ClassRank          string              `db:"class_rank" json:"class_rank"`
	SATScore           *int                `db:"sat_score" json:"sat_score,omitempty"`
	ACTScore           *int                `db:"act_score" json:"act_score,omitempty"`
	IBTotalPoints      string              `db:"ib_total_points" json:"ib_total_points"`
	IBSubjects         IBSubjectList       `db:"ib_subjects" json:"ib_subjects"`
	ALevelSubjects     ALevelSubjectList   `db:"a_level_subjects" json:"a_level_subjects"`
	OtherGradingSystem string              `db:"other_grading_system" json:"other_grading_system"`
	OtherGrades        string              `db:"other_grades" json:"other_grades"`
	Extracurriculars   ExtracurricularList `db:"extracurriculars" json:"extracurriculars"`

	IntendedMajors          StringList `db:"intended_majors" json:"intended_majors"`
	CollegeSize             string     `db:"college_size" json:"college_size"`
	CampusSetting           string     `db:"campus_setting" json:"campus_setting"`
	GeographicPreference    StringList `db:"geographic_preference" json:"geographic_preference"`
	PreferredCountries      StringList `db:"preferred_countries" json:"preferred_countries"`
	PreferredUSStates       StringList `db:"preferred_us_states" json:"preferred_us_states"`
	CostImportance          string     `db:"cost_importance" json:"cost_importance"`
	AcademicReputation      string     `db:"academic_reputation" json:"academic_reputation"`
	SocialLife              string     `db:"social_life" json:"social_life"`
	ResearchOpportunities   string     `db:"research_opportunities" json:"research_opportunities"`
	InternshipOpportunities string     `db:"internship_opportunities" json:"internship_opportunities"`
	StudyAbroadPrograms     string     `db:"study_abroad_programs" json:"study_abroad_programs"`
	GreekLifeImportant      bool       `db:"greek_life_important" json:"greek_life_important"`
	StrongAthletics         bool       `db:"strong_athletics" json:"strong_athletics"`
	DiverseStudentBody      bool       `db:"diverse_student_body" json:"diverse_student_body"`
	StrongAlumniNetwork     bool       `db:"strong_alumni_network" json:"strong_alumni_network"`
	OtherPreferences        string     `db:"other_preferences" json:"other_preferences"`

	DreamColleges StringList `db:"dream_colleges" json:"dream_colleges"`

	FamilyIncome           string `db:"family_income" json:"family_income"`
	FirstGenerationStudent bool   `db:"first_generation_student" json:"first_generation_student"`
	FinancialAidNeeded     bool   `db:"financial_aid_needed" json:"financial_aid_needed"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasTestScore reports whether the profile carries any test result.
func (p *StudentProfile) HasTestScore() bool {
	return (p.SATScore != nil && *p.SATScore > 0) ||
		(p.ACTScore != nil && *p.ACTScore > 0) ||
		p.IBTotalPoints != "" ||
		len(p.ALevelSubjects) > 0
}
