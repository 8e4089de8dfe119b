package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/gemini"
	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/retry"
)

type recProfileRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.StudentProfile, error)
}

type recMatchRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.CollegeMatch, error)
	ListDream(ctx context.Context, studentID string) ([]models.CollegeMatch, error)
	Insert(ctx context.Context, match *models.CollegeMatch) error
	ReplaceAIGenerated(ctx context.Context, studentID string, matches []models.CollegeMatch) error
	DeleteAIGenerated(ctx context.Context, studentID string) (int64, error)
	DeleteDreamByNames(ctx context.Context, studentID string, names []string) error
	CreateInvocationLog(ctx context.Context, log *models.AIInvocationLog) error
}

// Dream-college rows carry fixed placeholder scores. The student chose them,
// so fit is presented as Target regardless of academic standing.
const (
	dreamMatchScore      = 0.9
	dreamAdmissionChance = 0.5
	detailFallback       = "Information not available"
	maxDetailReplyChars  = 5000
)

var (
	recommendationRetry = retry.Policy{Attempts: 3, BaseDelay: 2 * time.Second}
	detailRetry         = retry.Policy{Attempts: 2, BaseDelay: 2 * time.Second}
)

// RecommendationService generates and maintains college matches.
type RecommendationService struct {
	profiles recProfileRepository
	matches  recMatchRepository
	client   gemini.Client
	observer gemini.CallObserver
	logger   *zap.Logger
}

// NewRecommendationService constructs the recommendation service.
func NewRecommendationService(profiles recProfileRepository, matches recMatchRepository, client gemini.Client, observer gemini.CallObserver, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{profiles: profiles, matches: matches, client: client, observer: observer, logger: logger}
}

// Generate runs the full matching flow: dream sync, model call with retries,
// reply parsing and validation, then an atomic swap of the AI-generated rows.
func (s *RecommendationService) Generate(ctx context.Context, studentID string) (*models.MatchSet, error) {
	profile, err := s.profiles.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrProfileIncomplete, "complete your profile before generating matches")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	if !profileReadyForMatching(profile) {
		return nil, appErrors.Clone(appErrors.ErrProfileIncomplete, "profile needs more detail before generating matches")
	}

	if err := s.SyncDreamColleges(ctx, studentID); err != nil {
		s.logger.Warn("dream sync before generation failed", zap.String("student_id", studentID), zap.Error(err))
	}

	prompt := gemini.RecommendationPrompt(profile)
	raw, elapsed, err := s.callModel(ctx, recommendationRetry, "generate recommendations", prompt)
	s.recordInvocation(ctx, &studentID, models.AIOperationRecommendations, prompt, raw, elapsed, err)
	if err != nil {
		return nil, mapModelError(err)
	}

	payloads, dropped, err := gemini.ParseRecommendationArray(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedModelReply.Code, appErrors.ErrMalformedModelReply.Status, "model reply was not parsable")
	}
	if dropped > 0 {
		s.logger.Warn("recovered truncated model reply",
			zap.String("student_id", studentID),
			zap.Int("parsed", len(payloads)),
			zap.Int("dropped", dropped))
	}

	matches := make([]models.CollegeMatch, 0, len(payloads))
	for _, p := range payloads {
		if strings.TrimSpace(p.CollegeName) == "" || !models.ValidFitCategory(p.FitCategory) {
			continue
		}
		matches = append(matches, models.CollegeMatch{
			StudentID:       studentID,
			CollegeName:     strings.TrimSpace(p.CollegeName),
			MatchScore:      clamp01(p.MatchScore),
			AdmissionChance: clamp01(p.AdmissionChance),
			FitCategory:     p.FitCategory,
			Justification:   p.Justification,
			MatchReasons:    p.MatchReasons,
			Country:         p.Country,
			City:            p.City,
			EstimatedCost:   p.EstimatedCost,
			AcceptanceRate:  p.AcceptanceRate,
			Website:         p.Website,
			IsDreamCollege:  false,
		})
	}
	if len(matches) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMalformedModelReply, "model reply contained no usable colleges")
	}

	if err := s.matches.ReplaceAIGenerated(ctx, studentID, matches); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store matches")
	}

	return s.Matches(ctx, studentID)
}

// Matches returns every stored match for the student with source counts.
func (s *RecommendationService) Matches(ctx context.Context, studentID string) (*models.MatchSet, error) {
	all, err := s.matches.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list matches")
	}
	set := &models.MatchSet{Matches: all}
	for _, m := range all {
		if m.IsDreamCollege {
			set.DreamCount++
		} else {
			set.AICount++
		}
	}
	return set, nil
}

// DeleteMatches removes the AI-generated rows, keeping dream colleges.
func (s *RecommendationService) DeleteMatches(ctx context.Context, studentID string) (int64, error) {
	deleted, err := s.matches.DeleteAIGenerated(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete matches")
	}
	return deleted, nil
}

// SyncDreamColleges reconciles the profile's dream list with match rows.
// The operation is idempotent: names already present are left alone, removed
// names are deleted, and new names get an enriched row, inserted in the
// dream list's order. Enrichment supplies personalized scores when the model
// returns them; otherwise the fixed placeholder values apply.
func (s *RecommendationService) SyncDreamColleges(ctx context.Context, studentID string) error {
	profile, err := s.profiles.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	existing, err := s.matches.ListDream(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dream matches")
	}

	wanted := make(map[string]struct{}, len(profile.DreamColleges))
	for _, name := range profile.DreamColleges {
		name = strings.TrimSpace(name)
		if name != "" {
			wanted[name] = struct{}{}
		}
	}
	present := make(map[string]struct{}, len(existing))
	var stale []string
	for _, m := range existing {
		present[m.CollegeName] = struct{}{}
		if _, ok := wanted[m.CollegeName]; !ok {
			stale = append(stale, m.CollegeName)
		}
	}

	if err := s.matches.DeleteDreamByNames(ctx, studentID, stale); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove stale dream matches")
	}

	seen := make(map[string]struct{}, len(profile.DreamColleges))
	for _, raw := range profile.DreamColleges {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := present[name]; ok {
			continue
		}
		detail := s.fetchCollegeDetail(ctx, studentID, name, profile)
		match := &models.CollegeMatch{
			StudentID:       studentID,
			CollegeName:     name,
			MatchScore:      dreamMatchScore,
			AdmissionChance: dreamAdmissionChance,
			FitCategory:     models.FitTarget,
			Justification:   "Selected by the student as a dream college",
			Country:         detail.Country,
			City:            detail.City,
			EstimatedCost:   detail.EstimatedCost,
			AcceptanceRate:  detail.AcceptanceRate,
			Website:         detail.Website,
			IsDreamCollege:  true,
		}
		if detail.MatchScore != nil {
			match.MatchScore = clamp01(*detail.MatchScore)
		}
		if detail.AdmissionChance != nil {
			match.AdmissionChance = clamp01(*detail.AdmissionChance)
		}
		if models.ValidFitCategory(detail.FitCategory) {
			match.FitCategory = detail.FitCategory
		}
		if strings.TrimSpace(detail.Justification) != "" {
			match.Justification = detail.Justification
		}
		if len(detail.MatchReasons) > 0 {
			match.MatchReasons = detail.MatchReasons
		}
		if err := s.matches.Insert(ctx, match); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert dream match")
		}
	}

	return nil
}

// fetchCollegeDetail enriches a dream college. It never fails: any model or
// parse problem falls back to placeholder values so the sync can proceed.
func (s *RecommendationService) fetchCollegeDetail(ctx context.Context, studentID, collegeName string, profile *models.StudentProfile) *gemini.DetailPayload {
	fallback := &gemini.DetailPayload{
		Country:       detailFallback,
		City:          detailFallback,
		EstimatedCost: detailFallback,
		Website:       detailFallback,
	}

	prompt := gemini.CollegeDetailPrompt(collegeName, profile)
	raw, elapsed, err := s.callModel(ctx, detailRetry, "fetch college detail", prompt)
	s.recordInvocation(ctx, &studentID, models.AIOperationCollegeDetail, prompt, raw, elapsed, err)
	if err != nil {
		s.logger.Warn("college detail fetch failed, using fallback",
			zap.String("college", collegeName), zap.Error(err))
		return fallback
	}
	if len(raw) > maxDetailReplyChars {
		s.logger.Warn("college detail reply oversized, using fallback",
			zap.String("college", collegeName), zap.Int("chars", len(raw)))
		return fallback
	}

	detail, err := gemini.ParseDetailObject(raw)
	if err != nil {
		s.logger.Warn("college detail reply unparsable, using fallback",
			zap.String("college", collegeName), zap.Error(err))
		return fallback
	}
	if detail.Country == "" {
		detail.Country = detailFallback
	}
	if detail.City == "" {
		detail.City = detailFallback
	}
	if detail.EstimatedCost == "" {
		detail.EstimatedCost = detailFallback
	}
	if detail.Website == "" {
		detail.Website = detailFallback
	}
	return detail
}

func (s *RecommendationService) callModel(ctx context.Context, policy retry.Policy, label, prompt string) (string, time.Duration, error) {
	var raw string
	start := time.Now()
	err := retry.Do(ctx, policy, s.logger, label, func(ctx context.Context) error {
		var callErr error
		raw, callErr = s.client.GenerateText(ctx, prompt)
		return callErr
	})
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveModelCall(label, elapsed, err == nil)
	}
	return raw, elapsed, err
}

func (s *RecommendationService) recordInvocation(ctx context.Context, studentID *string, operation, prompt, reply string, elapsed time.Duration, callErr error) {
	log := &models.AIInvocationLog{
		StudentID:        studentID,
		Operation:        operation,
		PromptText:       prompt,
		ResponseText:     reply,
		ModelUsed:        s.client.Model(),
		ProcessingTimeMS: elapsed.Milliseconds(),
		Success:          callErr == nil,
	}
	if callErr != nil {
		log.ErrorMessage = callErr.Error()
	}
	if err := s.matches.CreateInvocationLog(ctx, log); err != nil {
		s.logger.Warn("failed to record model invocation", zap.Error(err))
	}
}

// mapModelError translates provider failures into API errors the client can act on.
func mapModelError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key"):
		return appErrors.Clone(appErrors.ErrModelUnavailable, "model configuration error")
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return appErrors.Clone(appErrors.ErrModelQuotaExceeded, "model quota exceeded, try again later")
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found") || strings.Contains(msg, "model"):
		return appErrors.Clone(appErrors.ErrModelUnavailable, "model is currently unavailable")
	case strings.Contains(msg, "blocked") || strings.Contains(msg, "safety"):
		return appErrors.Clone(appErrors.ErrValidation, "request was blocked, rephrase and try again")
	default:
		return appErrors.Wrap(err, appErrors.ErrModelUnavailable.Code, appErrors.ErrModelUnavailable.Status, "model call failed")
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
