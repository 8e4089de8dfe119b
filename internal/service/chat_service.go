package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/gemini"
	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

// maxChatHistory bounds how many prior turns are replayed into the prompt.
const maxChatHistory = 10

var (
	infoVerbRe = regexp.MustCompile(`(?i)\b(what|which|who|how many|how much|list|show|tell me|count|give me|do i have|does)\b`)
	dataNounRe = regexp.MustCompile(`(?i)\b(student|students|gpa|score|scores|sat|act|profile|profiles|college|colleges|list|lists|application|applications|match|matches|recommendation|recommendations|progress|completion|deadline|deadlines|caseload)\b`)
	summaryRe  = regexp.MustCompile(`(?i)\b(summarize|summarise|summary|recap)\b`)
	notesRe    = regexp.MustCompile(`(?i)\b(note|notes|conversation|conversations)\b`)
	wordRe     = regexp.MustCompile(`[A-Za-z]+`)
)

// nameStopWords are common words that must never resolve to a student name.
var nameStopWords = map[string]struct{}{
	"i": {}, "my": {}, "me": {}, "a": {}, "an": {}, "the": {}, "and": {},
	"or": {}, "of": {}, "for": {}, "to": {}, "in": {}, "on": {}, "at": {},
	"is": {}, "are": {}, "was": {}, "do": {}, "does": {}, "how": {},
	"what": {}, "which": {}, "who": {}, "all": {}, "any": {}, "about": {},
	"with": {}, "student": {}, "students": {}, "college": {}, "colleges": {},
	"summarize": {}, "summarise": {}, "summary": {}, "notes": {},
	"conversations": {}, "conversation": {},
}

type chatPortfolioProvider interface {
	Portfolio(ctx context.Context, coachID string) (*models.Portfolio, error)
	StudentDetail(ctx context.Context, coachID, studentID string) (*models.StudentDetail, error)
}

type chatLogRepository interface {
	CreateInvocationLog(ctx context.Context, log *models.AIInvocationLog) error
}

// ChatService answers coach questions about their caseload.
type ChatService struct {
	portfolios chatPortfolioProvider
	logs       chatLogRepository
	client     gemini.Client
	observer   gemini.CallObserver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewChatService constructs the chat service.
func NewChatService(portfolios chatPortfolioProvider, logs chatLogRepository, client gemini.Client, observer gemini.CallObserver, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{portfolios: portfolios, logs: logs, client: client, observer: observer, validator: validate, logger: logger}
}

// Chat routes the coach's message: factual questions are answered from live
// caseload data, notes questions get a summary, anything else is coaching.
func (s *ChatService) Chat(ctx context.Context, coachID, coachName string, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}

	portfolio, err := s.portfolios.Portfolio(ctx, coachID)
	if err != nil {
		return nil, err
	}

	mode := classifyMessage(req.Message)
	resolved := resolveStudentName(req.Message, portfolio.Students)

	// A resolved name pulls in that student's full record so the model can
	// answer from the profile, matches, applications and notes rather than
	// the caseload summary alone. A failed lookup degrades to summary-only.
	var detail *models.StudentDetail
	if resolved != "" {
		if id := studentIDByName(portfolio.Students, resolved); id != "" {
			d, detailErr := s.portfolios.StudentDetail(ctx, coachID, id)
			if detailErr != nil {
				s.logger.Warn("student detail lookup failed, answering from summary only",
					zap.String("student", resolved), zap.Error(detailErr))
			} else {
				detail = d
			}
		}
	}

	history := req.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	prompt := gemini.ChatPrompt(coachName, portfolio, detail, resolved, mode, req.Message, history)

	start := time.Now()
	reply, err := s.client.GenerateText(ctx, prompt)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveModelCall("coach chat", elapsed, err == nil)
	}
	s.recordInvocation(ctx, prompt, reply, elapsed, err)
	if err != nil {
		return nil, mapModelError(err)
	}

	return &models.ChatResponse{
		Reply:           reply,
		Mode:            mode,
		ResolvedStudent: resolved,
	}, nil
}

// classifyMessage picks the answer mode from the message text alone.
func classifyMessage(message string) string {
	if summaryRe.MatchString(message) && notesRe.MatchString(message) {
		return models.ChatModeNotesSummary
	}
	if infoVerbRe.MatchString(message) && dataNounRe.MatchString(message) {
		return models.ChatModeFactual
	}
	return models.ChatModeCoaching
}

// resolveStudentName matches message words against caseload names. Stop words
// and names shorter than two characters never match.
func resolveStudentName(message string, students []models.StudentSummary) string {
	words := wordRe.FindAllString(strings.ToLower(message), -1)
	if len(words) == 0 {
		return ""
	}
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := nameStopWords[w]; stop {
			continue
		}
		present[w] = struct{}{}
	}

	lowerMessage := strings.ToLower(message)
	for _, st := range students {
		full := strings.TrimSpace(strings.ToLower(st.FullName))
		if len(full) >= 2 && strings.Contains(lowerMessage, full) {
			return st.FullName
		}
		first := full
		if idx := strings.IndexByte(full, ' '); idx > 0 {
			first = full[:idx]
		}
		if len(first) < 2 {
			continue
		}
		if _, stop := nameStopWords[first]; stop {
			continue
		}
		if _, ok := present[first]; ok {
			return st.FullName
		}
	}
	return ""
}

// studentIDByName maps a resolved full name back to its caseload row.
func studentIDByName(students []models.StudentSummary, fullName string) string {
	for _, st := range students {
		if st.FullName == fullName {
			return st.StudentID
		}
	}
	return ""
}

func (s *ChatService) recordInvocation(ctx context.Context, prompt, reply string, elapsed time.Duration, callErr error) {
	log := &models.AIInvocationLog{
		Operation:        models.AIOperationCoachChat,
		PromptText:       prompt,
		ResponseText:     reply,
		ModelUsed:        s.client.Model(),
		ProcessingTimeMS: elapsed.Milliseconds(),
		Success:          callErr == nil,
	}
	if callErr != nil {
		log.ErrorMessage = callErr.Error()
	}
	if err := s.logs.CreateInvocationLog(ctx, log); err != nil {
		s.logger.Warn("failed to record chat invocation", zap.Error(err))
	}
}
