package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type mockRecProfileRepo struct {
	profile *models.StudentProfile
	err     error
}

func (m *mockRecProfileRepo) GetByStudentID(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

type mockMatchRepo struct {
	dream        []models.CollegeMatch
	ai           []models.CollegeMatch
	inserted     []models.CollegeMatch
	deletedDream []string
	logs         []models.AIInvocationLog
}

func (m *mockMatchRepo) ListByStudent(ctx context.Context, studentID string) ([]models.CollegeMatch, error) {
	out := make([]models.CollegeMatch, 0, len(m.dream)+len(m.ai))
	out = append(out, m.dream...)
	out = append(out, m.ai...)
	return out, nil
}

func (m *mockMatchRepo) ListDream(ctx context.Context, studentID string) ([]models.CollegeMatch, error) {
	return m.dream, nil
}

func (m *mockMatchRepo) Insert(ctx context.Context, match *models.CollegeMatch) error {
	m.inserted = append(m.inserted, *match)
	if match.IsDreamCollege {
		m.dream = append(m.dream, *match)
	} else {
		m.ai = append(m.ai, *match)
	}
	return nil
}

func (m *mockMatchRepo) ReplaceAIGenerated(ctx context.Context, studentID string, matches []models.CollegeMatch) error {
	m.ai = append([]models.CollegeMatch(nil), matches...)
	return nil
}

func (m *mockMatchRepo) DeleteAIGenerated(ctx context.Context, studentID string) (int64, error) {
	n := int64(len(m.ai))
	m.ai = nil
	return n, nil
}

func (m *mockMatchRepo) DeleteDreamByNames(ctx context.Context, studentID string, names []string) error {
	m.deletedDream = append(m.deletedDream, names...)
	if len(names) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[name] = struct{}{}
	}
	kept := m.dream[:0]
	for _, match := range m.dream {
		if _, ok := drop[match.CollegeName]; !ok {
			kept = append(kept, match)
		}
	}
	m.dream = kept
	return nil
}

func (m *mockMatchRepo) CreateInvocationLog(ctx context.Context, log *models.AIInvocationLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

type mockModelClient struct {
	generate func(prompt string) (string, error)
	prompts  []string
}

func (m *mockModelClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generate != nil {
		return m.generate(prompt)
	}
	return "", errors.New("no reply configured")
}

func (m *mockModelClient) Model() string { return "gemini-2.0-flash" }

func matchableProfile(studentID string) *models.StudentProfile {
	gpa := 3.8
	return &models.StudentProfile{
		StudentID:        studentID,
		GradeLevel:       "11th Grade",
		GradingSystem:    models.GradingSystemUSGPA,
		GPA:              &gpa,
		Extracurriculars: models.ExtracurricularList{{Activity: "Debate", Tier: "National"}},
		IntendedMajors:   models.StringList{"Computer Science"},
	}
}

const recommendationReply = "```json\n[" +
	`{"college_name":"Stanford University","match_score":1.7,"admission_chance":0.12,"fit_category":"Reach","justification":"Strong CS program","match_reasons":["CS"],"country":"United States","city":"Stanford"},` +
	`{"college_name":"","match_score":0.5,"admission_chance":0.5,"fit_category":"Target"},` +
	`{"college_name":"Ohio State University","match_score":0.8,"admission_chance":0.7,"fit_category":"Safe"}` +
	"]\n```"

func TestGenerateFiltersAndClamps(t *testing.T) {
	profiles := &mockRecProfileRepo{profile: matchableProfile("s1")}
	matches := &mockMatchRepo{}
	client := &mockModelClient{generate: func(string) (string, error) { return recommendationReply, nil }}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	set, err := svc.Generate(context.Background(), "s1")
	require.NoError(t, err)

	// The nameless entry and the unknown fit category are dropped.
	require.Len(t, matches.ai, 1)
	stored := matches.ai[0]
	assert.Equal(t, "Stanford University", stored.CollegeName)
	assert.Equal(t, 1.0, stored.MatchScore)
	assert.Equal(t, models.FitReach, stored.FitCategory)
	assert.False(t, stored.IsDreamCollege)

	assert.Equal(t, 1, set.AICount)
	assert.Equal(t, 0, set.DreamCount)

	require.Len(t, matches.logs, 1)
	assert.Equal(t, models.AIOperationRecommendations, matches.logs[0].Operation)
	assert.True(t, matches.logs[0].Success)
	assert.Equal(t, "gemini-2.0-flash", matches.logs[0].ModelUsed)
}

func TestGenerateKeepsCollegesOutsidePreferredRegion(t *testing.T) {
	profile := matchableProfile("s1")
	profile.PreferredCountries = models.StringList{"United Kingdom"}
	profiles := &mockRecProfileRepo{profile: profile}
	matches := &mockMatchRepo{}

	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, `{"college_name":"UK College %d","match_score":0.8,"admission_chance":0.6,"fit_category":"Target","country":"United Kingdom"},`, i+1)
	}
	b.WriteString(`{"college_name":"University of Toronto","match_score":0.7,"admission_chance":0.6,"fit_category":"Target","country":"Canada"},`)
	b.WriteString(`{"college_name":"New York University","match_score":0.7,"admission_chance":0.5,"fit_category":"Target","country":"United States"}]`)
	reply := b.String()

	client := &mockModelClient{generate: func(string) (string, error) { return reply, nil }}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	set, err := svc.Generate(context.Background(), "s1")
	require.NoError(t, err)

	// The country preference shapes the prompt only. Rows the model returns
	// from other countries are stored as-is, never filtered out.
	require.Len(t, matches.ai, 10)
	countries := make(map[string]int)
	for _, m := range matches.ai {
		countries[m.Country]++
	}
	assert.Equal(t, 8, countries["United Kingdom"])
	assert.Equal(t, 1, countries["Canada"])
	assert.Equal(t, 1, countries["United States"])
	assert.Equal(t, 10, set.AICount)
}

func TestGenerateRequiresProfile(t *testing.T) {
	profiles := &mockRecProfileRepo{err: sql.ErrNoRows}
	matches := &mockMatchRepo{}
	client := &mockModelClient{}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileIncomplete.Code, appErrors.FromError(err).Code)
	assert.Empty(t, client.prompts)
}

func TestGenerateRequiresEnoughChecklist(t *testing.T) {
	profiles := &mockRecProfileRepo{profile: &models.StudentProfile{StudentID: "s1", GradeLevel: "9th Grade"}}
	svc := NewRecommendationService(profiles, &mockMatchRepo{}, &mockModelClient{}, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileIncomplete.Code, appErrors.FromError(err).Code)
}

func TestGenerateRejectsEmptyReply(t *testing.T) {
	profiles := &mockRecProfileRepo{profile: matchableProfile("s1")}
	matches := &mockMatchRepo{}
	client := &mockModelClient{generate: func(string) (string, error) { return "[]", nil }}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedModelReply.Code, appErrors.FromError(err).Code)
	assert.Empty(t, matches.ai)
}

func TestSyncDreamCollegesIsIdempotent(t *testing.T) {
	profile := matchableProfile("s1")
	profile.DreamColleges = models.StringList{"MIT", "Stanford University"}
	profiles := &mockRecProfileRepo{profile: profile}
	matches := &mockMatchRepo{dream: []models.CollegeMatch{
		{StudentID: "s1", CollegeName: "MIT", IsDreamCollege: true},
		{StudentID: "s1", CollegeName: "Harvard University", IsDreamCollege: true},
	}}
	client := &mockModelClient{generate: func(string) (string, error) {
		return `{"country":"United States","city":"Stanford","estimated_cost":"$60,000 per year","acceptance_rate":0.04,"website":"https://stanford.edu"}`, nil
	}}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	require.NoError(t, svc.SyncDreamColleges(context.Background(), "s1"))

	assert.Equal(t, []string{"Harvard University"}, matches.deletedDream)
	require.Len(t, matches.inserted, 1)
	added := matches.inserted[0]
	assert.Equal(t, "Stanford University", added.CollegeName)
	assert.Equal(t, dreamMatchScore, added.MatchScore)
	assert.Equal(t, dreamAdmissionChance, added.AdmissionChance)
	assert.Equal(t, models.FitTarget, added.FitCategory)
	assert.Equal(t, "United States", added.Country)
	assert.True(t, added.IsDreamCollege)

	// A second run finds nothing to change.
	require.NoError(t, svc.SyncDreamColleges(context.Background(), "s1"))
	assert.Len(t, matches.inserted, 1)
	assert.Equal(t, []string{"Harvard University"}, matches.deletedDream)
}

func TestSyncDreamCollegesAppliesPersonalizedAssessment(t *testing.T) {
	profile := matchableProfile("s1")
	profile.DreamColleges = models.StringList{"Stanford University"}
	profiles := &mockRecProfileRepo{profile: profile}
	matches := &mockMatchRepo{}
	client := &mockModelClient{generate: func(string) (string, error) {
		return `{"country":"United States","city":"Stanford","estimated_cost":"$60,000 per year","acceptance_rate":0.04,"website":"https://stanford.edu","match_score":0.72,"admission_chance":0.08,"fit_category":"Reach","justification":"Very selective for this academic record","match_reasons":["Top CS program","Selectivity"]}`, nil
	}}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	require.NoError(t, svc.SyncDreamColleges(context.Background(), "s1"))

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "GPA: 3.80")

	require.Len(t, matches.inserted, 1)
	added := matches.inserted[0]
	assert.Equal(t, 0.72, added.MatchScore)
	assert.Equal(t, 0.08, added.AdmissionChance)
	assert.Equal(t, models.FitReach, added.FitCategory)
	assert.Equal(t, "Very selective for this academic record", added.Justification)
	assert.Equal(t, models.StringList{"Top CS program", "Selectivity"}, added.MatchReasons)
	assert.True(t, added.IsDreamCollege)
}

func TestSyncDreamCollegesInsertsInListOrder(t *testing.T) {
	profile := matchableProfile("s1")
	profile.DreamColleges = models.StringList{"Caltech", "MIT", " Oxford ", "MIT"}
	profiles := &mockRecProfileRepo{profile: profile}
	matches := &mockMatchRepo{}
	client := &mockModelClient{generate: func(string) (string, error) {
		return `{"country":"Information not available"}`, nil
	}}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	require.NoError(t, svc.SyncDreamColleges(context.Background(), "s1"))

	// Duplicates collapse, names are trimmed, and inserts follow list order.
	require.Len(t, matches.inserted, 3)
	names := make([]string, len(matches.inserted))
	for i, m := range matches.inserted {
		names[i] = m.CollegeName
	}
	assert.Equal(t, []string{"Caltech", "MIT", "Oxford"}, names)
}

func TestDreamDetailFallsBackOnOversizedReply(t *testing.T) {
	profile := matchableProfile("s1")
	profile.DreamColleges = models.StringList{"Oxford"}
	profiles := &mockRecProfileRepo{profile: profile}
	matches := &mockMatchRepo{}
	client := &mockModelClient{generate: func(string) (string, error) {
		return strings.Repeat("x", maxDetailReplyChars+1), nil
	}}
	svc := NewRecommendationService(profiles, matches, client, nil, zap.NewNop())

	require.NoError(t, svc.SyncDreamColleges(context.Background(), "s1"))
	require.Len(t, matches.inserted, 1)
	assert.Equal(t, detailFallback, matches.inserted[0].Country)
	assert.Equal(t, detailFallback, matches.inserted[0].Website)
}

func TestDeleteMatchesKeepsDreamColleges(t *testing.T) {
	matches := &mockMatchRepo{
		dream: []models.CollegeMatch{{CollegeName: "MIT", IsDreamCollege: true}},
		ai:    []models.CollegeMatch{{CollegeName: "UCLA"}, {CollegeName: "NYU"}},
	}
	svc := NewRecommendationService(&mockRecProfileRepo{}, matches, &mockModelClient{}, nil, zap.NewNop())

	deleted, err := svc.DeleteMatches(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Len(t, matches.dream, 1)
}

func TestMapModelError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"api key", errors.New("invalid api key provided"), appErrors.ErrModelUnavailable.Code},
		{"quota", errors.New("429 resource exhausted: quota"), appErrors.ErrModelQuotaExceeded.Code},
		{"missing model", errors.New("404 model not found"), appErrors.ErrModelUnavailable.Code},
		{"blocked", errors.New("response blocked by safety filters"), appErrors.ErrValidation.Code},
		{"other", errors.New("connection reset by peer"), appErrors.ErrModelUnavailable.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, appErrors.FromError(mapModelError(tc.err)).Code)
		})
	}
}
