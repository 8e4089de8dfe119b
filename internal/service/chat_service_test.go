package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type mockPortfolioProvider struct {
	portfolio   *models.Portfolio
	err         error
	detail      *models.StudentDetail
	detailErr   error
	detailCalls []string
}

func (m *mockPortfolioProvider) Portfolio(ctx context.Context, coachID string) (*models.Portfolio, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.portfolio, nil
}

func (m *mockPortfolioProvider) StudentDetail(ctx context.Context, coachID, studentID string) (*models.StudentDetail, error) {
	m.detailCalls = append(m.detailCalls, studentID)
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.detail, nil
}

type mockChatLogs struct {
	logs []models.AIInvocationLog
}

func (m *mockChatLogs) CreateInvocationLog(ctx context.Context, log *models.AIInvocationLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func caseload() *models.Portfolio {
	return &models.Portfolio{
		Summary: models.PortfolioSummary{TotalStudents: 2},
		Students: []models.StudentSummary{
			{StudentID: "s1", FullName: "Maya Patel", ProfileCompletion: 80},
			{StudentID: "s2", FullName: "Will Johnson", ProfileCompletion: 30},
		},
	}
}

func TestClassifyMessage(t *testing.T) {
	cases := []struct {
		message string
		mode    string
	}{
		{"How many students need attention?", models.ChatModeFactual},
		{"What colleges are on Maya's list?", models.ChatModeFactual},
		{"Summarize my notes about Will", models.ChatModeNotesSummary},
		{"Can you recap our conversations with Maya?", models.ChatModeNotesSummary},
		{"Help me plan next week's sessions", models.ChatModeCoaching},
		{"I feel stuck with a difficult family", models.ChatModeCoaching},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.mode, classifyMessage(tc.message), tc.message)
	}
}

func TestResolveStudentName(t *testing.T) {
	students := caseload().Students

	assert.Equal(t, "Maya Patel", resolveStudentName("How is Maya Patel doing?", students))
	assert.Equal(t, "Maya Patel", resolveStudentName("how is maya doing", students))
	assert.Equal(t, "Will Johnson", resolveStudentName("Does Will have any deadlines?", students))
	assert.Equal(t, "", resolveStudentName("How are all my students doing?", students))
	assert.Equal(t, "", resolveStudentName("", students))
}

func TestChatAnswersFactualQuestion(t *testing.T) {
	logs := &mockChatLogs{}
	client := &mockModelClient{generate: func(string) (string, error) {
		return "Maya has 4 colleges on her list.", nil
	}}
	svc := NewChatService(&mockPortfolioProvider{portfolio: caseload()}, logs, client, nil, nil, zap.NewNop())

	resp, err := svc.Chat(context.Background(), "coach-1", "Jordan Lee", models.ChatRequest{
		Message: "How many colleges does Maya Patel have on her list?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maya has 4 colleges on her list.", resp.Reply)
	assert.Equal(t, models.ChatModeFactual, resp.Mode)
	assert.Equal(t, "Maya Patel", resp.ResolvedStudent)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.AIOperationCoachChat, logs.logs[0].Operation)
	assert.True(t, logs.logs[0].Success)
}

func TestChatFoldsResolvedStudentDetailIntoPrompt(t *testing.T) {
	gpa := 3.9
	provider := &mockPortfolioProvider{
		portfolio: caseload(),
		detail: &models.StudentDetail{
			Student:           models.UserInfo{ID: "s1", FullName: "Maya Patel"},
			Profile:           &models.StudentProfile{StudentID: "s1", GPA: &gpa, DreamColleges: models.StringList{"Stanford University"}},
			ProfileCompletion: 80,
			Matches:           []models.CollegeMatch{{CollegeName: "Carnegie Mellon University", MatchScore: 0.82}},
			CollegeList:       []models.CollegeListItem{{CollegeName: "University of Michigan", ApplicationStatus: models.StatusApplied}},
			Notes:             []models.StudentNote{{Content: "Discussed essay drafts", AuthorName: "Jordan Lee"}},
		},
	}
	client := &mockModelClient{generate: func(string) (string, error) { return "answer", nil }}
	svc := NewChatService(provider, &mockChatLogs{}, client, nil, nil, zap.NewNop())

	_, err := svc.Chat(context.Background(), "coach-1", "Jordan Lee", models.ChatRequest{
		Message: "What colleges is Maya Patel matched with?",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, provider.detailCalls)
	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "STUDENT DETAIL for Maya Patel")
	assert.Contains(t, prompt, "Carnegie Mellon University")
	assert.Contains(t, prompt, "University of Michigan")
	assert.Contains(t, prompt, "Discussed essay drafts")
	assert.Contains(t, prompt, "Stanford University")
}

func TestChatSurvivesDetailLookupFailure(t *testing.T) {
	provider := &mockPortfolioProvider{portfolio: caseload(), detailErr: errors.New("boom")}
	client := &mockModelClient{generate: func(string) (string, error) { return "answer", nil }}
	svc := NewChatService(provider, &mockChatLogs{}, client, nil, nil, zap.NewNop())

	resp, err := svc.Chat(context.Background(), "coach-1", "Jordan Lee", models.ChatRequest{
		Message: "How is Maya doing with her applications?",
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Reply)
	assert.Equal(t, []string{"s1"}, provider.detailCalls)
	require.Len(t, client.prompts, 1)
	assert.NotContains(t, client.prompts[0], "STUDENT DETAIL")
}

func TestChatSkipsDetailWithoutResolvedStudent(t *testing.T) {
	provider := &mockPortfolioProvider{portfolio: caseload()}
	client := &mockModelClient{generate: func(string) (string, error) { return "ok", nil }}
	svc := NewChatService(provider, &mockChatLogs{}, client, nil, nil, zap.NewNop())

	_, err := svc.Chat(context.Background(), "coach-1", "Jordan Lee", models.ChatRequest{
		Message: "How are all my students doing?",
	})
	require.NoError(t, err)
	assert.Empty(t, provider.detailCalls)
}

func TestChatTrimsHistory(t *testing.T) {
	client := &mockModelClient{generate: func(string) (string, error) { return "ok", nil }}
	svc := NewChatService(&mockPortfolioProvider{portfolio: caseload()}, &mockChatLogs{}, client, nil, nil, zap.NewNop())

	history := make([]models.ChatMessage, 0, maxChatHistory+5)
	for i := 0; i < maxChatHistory+5; i++ {
		history = append(history, models.ChatMessage{Role: models.ChatRoleUser, Content: "turn"})
	}
	history[len(history)-1].Content = "latest turn"

	_, err := svc.Chat(context.Background(), "coach-1", "Jordan Lee", models.ChatRequest{
		Message: "Help me plan",
		History: history,
	})
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "latest turn")
}

func TestChatMapsModelFailures(t *testing.T) {
	logs := &mockChatLogs{}
	client := &mockModelClient{generate: func(string) (string, error) {
		return "", errors.New("429 rate limit exceeded")
	}}
	svc := NewChatService(&mockPortfolioProvider{portfolio: caseload()}, logs, client, nil, nil, zap.NewNop())

	_, err := svc.Chat(context.Background(), "coach-1", "Jordan Lee", models.ChatRequest{Message: "Hello there"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrModelQuotaExceeded.Code, appErrors.FromError(err).Code)

	require.Len(t, logs.logs, 1)
	assert.False(t, logs.logs[0].Success)
	assert.NotEmpty(t, logs.logs[0].ErrorMessage)
}
