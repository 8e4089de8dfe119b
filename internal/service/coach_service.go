package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/repository"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/export"
)

type coachAssignmentRepository interface {
	ListStudents(ctx context.Context, coachID string) ([]repository.AssignedStudentRow, error)
	IsAssigned(ctx context.Context, coachID, studentID string) (bool, error)
}

type coachUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type coachMatchRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.CollegeMatch, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

type coachNoteRepository interface {
	ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.StudentNote, error)
}

type portfolioCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CoachService assembles caseload views for coaches.
type CoachService struct {
	assignments coachAssignmentRepository
	users       coachUserRepository
	profiles    profileRepository
	matches     coachMatchRepository
	lists       collegeListRepository
	notes       coachNoteRepository
	cache       portfolioCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCoachService constructs the coach service.
func NewCoachService(assignments coachAssignmentRepository, users coachUserRepository, profiles profileRepository, matches coachMatchRepository, lists collegeListRepository, notes coachNoteRepository, cache portfolioCache, cacheTTL time.Duration, logger *zap.Logger) *CoachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CoachService{
		assignments: assignments,
		users:       users,
		profiles:    profiles,
		matches:     matches,
		lists:       lists,
		notes:       notes,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func portfolioCacheKey(coachID string) string {
	return fmt.Sprintf("coach:portfolio:%s", coachID)
}

// Portfolio returns the coach's caseload summary, cached for a short window.
func (s *CoachService) Portfolio(ctx context.Context, coachID string) (*models.Portfolio, error) {
	key := portfolioCacheKey(coachID)
	if s.cache != nil {
		var cached models.Portfolio
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("portfolio cache read failed", zap.String("coach_id", coachID), zap.Error(err))
		}
	}

	portfolio, err := s.buildPortfolio(ctx, coachID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, portfolio, s.cacheTTL); err != nil {
			s.logger.Warn("portfolio cache write failed", zap.String("coach_id", coachID), zap.Error(err))
		}
	}
	return portfolio, nil
}

// InvalidatePortfolio drops the cached snapshot for a coach.
func (s *CoachService) InvalidatePortfolio(ctx context.Context, coachID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, portfolioCacheKey(coachID)); err != nil {
		s.logger.Warn("portfolio cache invalidation failed", zap.String("coach_id", coachID), zap.Error(err))
	}
}

func (s *CoachService) buildPortfolio(ctx context.Context, coachID string) (*models.Portfolio, error) {
	rows, err := s.assignments.ListStudents(ctx, coachID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned students")
	}

	portfolio := &models.Portfolio{Students: make([]models.StudentSummary, 0, len(rows))}
	var completionSum int

	for _, row := range rows {
		summary, err := s.buildStudentSummary(ctx, row)
		if err != nil {
			return nil, err
		}
		completionSum += summary.ProfileCompletion
		portfolio.Summary.TotalRecommendations += summary.RecommendationCount
		portfolio.Summary.TotalCollegesInLists += summary.CollegeListCount
		portfolio.Summary.TotalApplications += summary.ApplicationProgress.Applied +
			summary.ApplicationProgress.Interviewing +
			summary.ApplicationProgress.Accepted +
			summary.ApplicationProgress.Rejected +
			summary.ApplicationProgress.Enrolled
		if summary.NeedsAttention {
			portfolio.Summary.StudentsNeedingAttention++
		}
		portfolio.Students = append(portfolio.Students, *summary)
	}

	portfolio.Summary.TotalStudents = len(rows)
	if len(rows) > 0 {
		portfolio.Summary.AverageProfileCompletion = math.Round(float64(completionSum)/float64(len(rows))*10) / 10
	}
	return portfolio, nil
}

func (s *CoachService) buildStudentSummary(ctx context.Context, row repository.AssignedStudentRow) (*models.StudentSummary, error) {
	profile, err := s.profiles.GetByStudentID(ctx, row.StudentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	matchCount, err := s.matches.CountByStudent(ctx, row.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count matches")
	}
	listCount, err := s.lists.CountByStudent(ctx, row.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count college list")
	}

	statusRows, err := s.lists.StatusCounts(ctx, row.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group applications")
	}
	progress := applicationProgress(statusRows)

	summary := &models.StudentSummary{
		StudentID:           row.StudentID,
		FullName:            row.FullName,
		Email:               row.Email,
		ProfileCompletion:   profileCompletion(profile, matchCount, listCount),
		RecommendationCount: matchCount,
		CollegeListCount:    listCount,
		ApplicationProgress: progress,
		AssignedAt:          row.AssignedAt,
	}
	if profile != nil {
		summary.GradeLevel = profile.GradeLevel
		if !profile.UpdatedAt.IsZero() {
			updated := profile.UpdatedAt
			summary.LastActivity = &updated
		}
	}
	summary.NeedsAttention = summary.ProfileCompletion < 50
	return summary, nil
}

// StudentDetail returns the drill-down view for one assigned student.
func (s *CoachService) StudentDetail(ctx context.Context, coachID, studentID string) (*models.StudentDetail, error) {
	assigned, err := s.assignments.IsAssigned(ctx, coachID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if !assigned {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not assigned to you")
	}

	user, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	detail := &models.StudentDetail{
		Student: models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.Role},
	}

	profile, err := s.profiles.GetByStudentID(ctx, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	detail.Profile = profile

	matches, err := s.matches.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list matches")
	}
	detail.Matches = matches

	items, err := s.lists.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list colleges")
	}
	detail.CollegeList = items

	notes, err := s.notes.ListByStudent(ctx, studentID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	detail.Notes = notes

	detail.ProfileCompletion = profileCompletion(profile, len(matches), len(items))
	return detail, nil
}

// ExportPortfolio renders the caseload as a tabular dataset for CSV or PDF.
func (s *CoachService) ExportPortfolio(ctx context.Context, coachID string) (export.Dataset, error) {
	portfolio, err := s.Portfolio(ctx, coachID)
	if err != nil {
		return export.Dataset{}, err
	}

	headers := []string{"Student", "Email", "Grade", "Profile %", "Matches", "List Size", "Applied", "Accepted", "Needs Attention"}
	rows := make([]map[string]string, 0, len(portfolio.Students))
	for _, st := range portfolio.Students {
		rows = append(rows, map[string]string{
			"Student":         st.FullName,
			"Email":           st.Email,
			"Grade":           st.GradeLevel,
			"Profile %":       strconv.Itoa(st.ProfileCompletion),
			"Matches":         strconv.Itoa(st.RecommendationCount),
			"List Size":       strconv.Itoa(st.CollegeListCount),
			"Applied":         strconv.Itoa(st.ApplicationProgress.Applied),
			"Accepted":        strconv.Itoa(st.ApplicationProgress.Accepted),
			"Needs Attention": strconv.FormatBool(st.NeedsAttention),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func applicationProgress(rows []repository.StatusRow) models.ApplicationProgress {
	var p models.ApplicationProgress
	for _, row := range rows {
		switch row.Key {
		case models.StatusConsidering:
			p.Considering = row.Count
		case models.StatusPlanningToApply:
			p.PlanningToApply = row.Count
		case models.StatusApplied:
			p.Applied = row.Count
		case models.StatusInterviewing:
			p.Interviewing = row.Count
		case models.StatusAccepted:
			p.Accepted = row.Count
		case models.StatusRejected:
			p.Rejected = row.Count
		case models.StatusEnrolled:
			p.Enrolled = row.Count
		}
	}
	return p
}
