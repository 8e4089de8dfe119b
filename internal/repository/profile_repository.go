package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/narengee/c4c-api/internal/models"
)

// ProfileRepository provides database access for student profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, student_id, grade_level, country_of_residence, state_province, grading_system, gpa, class_rank, sat_score, act_score, ib_total_points, ib_subjects, a_level_subjects, other_grading_system, other_grades, extracurriculars, intended_majors, college_size, campus_setting, geographic_preference, preferred_countries, preferred_us_states, cost_importance, academic_reputation, social_life, research_opportunities, internship_opportunities, study_abroad_programs, greek_life_important, strong_athletics, diverse_student_body, strong_alumni_network, other_preferences, dream_colleges, family_income, first_generation_student, financial_aid_needed, created_at, updated_at`

// GetByStudentID returns the profile owned by the given student.
func (r *ProfileRepository) GetByStudentID(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_profiles WHERE student_id = $1 LIMIT 1`, profileColumns)
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get profile by student id: %w", err)
	}
	return &profile, nil
}

// Upsert inserts the profile or updates it in place when the student already has one.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO student_profiles (id, student_id, grade_level, country_of_residence, state_province, grading_system, gpa, class_rank, sat_score, act_score, ib_total_points, ib_subjects, a_level_subjects, other_grading_system, other_grades, extracurriculars, intended_majors, college_size, campus_setting, geographic_preference, preferred_countries, preferred_us_states, cost_importance, academic_reputation, social_life, research_opportunities, internship_opportunities, study_abroad_programs, greek_life_important, strong_athletics, diverse_student_body, strong_alumni_network, other_preferences, dream_colleges, family_income, first_generation_student, financial_aid_needed, created_at, updated_at)
		VALUES (:id, :student_id, :grade_level, :country_of_residence, :state_province, :grading_system, :gpa, :class_rank, :sat_score, :act_score, :ib_total_points, :ib_subjects, :a_level_subjects, :other_grading_system, :other_grades, :extracurriculars, :intended_majors, :college_size, :campus_setting, :geographic_preference, :preferred_countries, :preferred_us_states, :cost_importance, :academic_reputation, :social_life, :research_opportunities, :internship_opportunities, :study_abroad_programs, :greek_life_important, :strong_athletics, :diverse_student_body, :strong_alumni_network, :other_preferences, :dream_colleges, :family_income, :first_generation_student, :financial_aid_needed, :created_at, :updated_at)
		ON CONFLICT (student_id) DO UPDATE SET
			grade_level = EXCLUDED.grade_level,
			country_of_residence = EXCLUDED.country_of_residence,
			state_province = EXCLUDED.state_province,
			grading_system = EXCLUDED.grading_system,
			gpa = EXCLUDED.gpa,
			class_rank = EXCLUDED.class_rank,
			sat_score = EXCLUDED.sat_score,
			act_score = EXCLUDED.act_score,
			ib_total_points = EXCLUDED.ib_total_points,
			ib_subjects = EXCLUDED.ib_subjects,
			a_level_subjects = EXCLUDED.a_level_subjects,
			other_grading_system = EXCLUDED.other_grading_system,
			other_grades = EXCLUDED.other_grades,
			extracurriculars = EXCLUDED.extracurriculars,
			intended_majors = EXCLUDED.intended_majors,
			college_size = EXCLUDED.college_size,
			campus_setting = EXCLUDED.campus_setting,
			geographic_preference = EXCLUDED.geographic_preference,
			preferred_countries = EXCLUDED.preferred_countries,
			preferred_us_states = EXCLUDED.preferred_us_states,
			cost_importance = EXCLUDED.cost_importance,
			academic_reputation = EXCLUDED.academic_reputation,
			social_life = EXCLUDED.social_life,
			research_opportunities = EXCLUDED.research_opportunities,
			internship_opportunities = EXCLUDED.internship_opportunities,
			study_abroad_programs = EXCLUDED.study_abroad_programs,
			greek_life_important = EXCLUDED.greek_life_important,
			strong_athletics = EXCLUDED.strong_athletics,
			diverse_student_body = EXCLUDED.diverse_student_body,
			strong_alumni_network = EXCLUDED.strong_alumni_network,
			other_preferences = EXCLUDED.other_preferences,
			dream_colleges = EXCLUDED.dream_colleges,
			family_income = EXCLUDED.family_income,
			first_generation_student = EXCLUDED.first_generation_student,
			financial_aid_needed = EXCLUDED.financial_aid_needed,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
