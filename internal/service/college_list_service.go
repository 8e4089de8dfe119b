package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/repository"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type collegeListRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.CollegeListItem, error)
	GetByIDAndStudent(ctx context.Context, id, studentID string) (*models.CollegeListItem, error)
	Insert(ctx context.Context, item *models.CollegeListItem) error
	Update(ctx context.Context, item *models.CollegeListItem) error
	UpdateTasks(ctx context.Context, id, studentID string, tasks models.TaskList) error
	UpdateStatusOrder(ctx context.Context, id, studentID, status string, stageOrder int) error
	SetFavorite(ctx context.Context, id, studentID string, favorite bool) error
	Delete(ctx context.Context, id, studentID string) error
	StatusCounts(ctx context.Context, studentID string) ([]repository.StatusRow, error)
	PriorityCounts(ctx context.Context, studentID string) ([]repository.StatusRow, error)
	SourceCounts(ctx context.Context, studentID string) ([]repository.StatusRow, error)
	CountFavorites(ctx context.Context, studentID string) (int, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

// CollegeListService handles the student's working list and Kanban pipeline.
type CollegeListService struct {
	repo      collegeListRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCollegeListService constructs the college list service.
func NewCollegeListService(repo collegeListRepository, validate *validator.Validate, logger *zap.Logger) *CollegeListService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollegeListService{repo: repo, validator: validate, logger: logger}
}

// List returns the student's list ordered by priority then recency.
func (s *CollegeListService) List(ctx context.Context, studentID string) ([]models.CollegeListItem, error) {
	items, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list colleges")
	}
	return items, nil
}

// Add puts a college on the student's list.
func (s *CollegeListService) Add(ctx context.Context, studentID string, req models.AddCollegeRequest) (*models.CollegeListItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid college payload")
	}

	source := req.Source
	if source == "" {
		source = models.SourceManual
	}
	item := &models.CollegeListItem{
		StudentID:           studentID,
		CollegeName:         req.CollegeName,
		CollegeLocation:     req.CollegeLocation,
		CollegeType:         req.CollegeType,
		TuitionRange:        req.TuitionRange,
		AcceptanceRate:      req.AcceptanceRate,
		Source:              source,
		Notes:               req.Notes,
		Priority:            req.Priority,
		ApplicationStatus:   models.StatusConsidering,
		ApplicationDeadline: req.ApplicationDeadline,
		Tasks:               models.TaskList{},
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		switch {
		case repository.IsUniqueViolation(err):
			return nil, appErrors.Clone(appErrors.ErrDuplicateCollege, "this college is already in your list")
		case repository.IsNotNullViolation(err):
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "the college entry is missing required information")
		case repository.IsForeignKeyViolation(err):
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "the college entry references an account that does not exist")
		case repository.IsInsufficientPrivilege(err):
			return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "the database rejected the write for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add college")
	}
	return item, nil
}

// Update edits mutable fields of an owned item.
func (s *CollegeListService) Update(ctx context.Context, studentID, id string, req models.UpdateCollegeRequest) (*models.CollegeListItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	item, err := s.getOwned(ctx, id, studentID)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.ApplicationStatus != nil {
		if !models.ValidApplicationStatus(*req.ApplicationStatus) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
		}
		item.ApplicationStatus = *req.ApplicationStatus
	}
	if req.ApplicationDeadline != nil {
		item.ApplicationDeadline = req.ApplicationDeadline
	}
	if req.TuitionRange != nil {
		item.TuitionRange = *req.TuitionRange
	}
	if req.CollegeLocation != nil {
		item.CollegeLocation = *req.CollegeLocation
	}
	if req.CollegeType != nil {
		item.CollegeType = *req.CollegeType
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update college")
	}
	return item, nil
}

// UpdateTasks replaces the checklist of an owned item.
func (s *CollegeListService) UpdateTasks(ctx context.Context, studentID, id string, req models.UpdateTasksRequest) (*models.CollegeListItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tasks payload")
	}

	item, err := s.getOwned(ctx, id, studentID)
	if err != nil {
		return nil, err
	}

	tasks := make(models.TaskList, 0, len(req.Tasks))
	for _, task := range req.Tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		tasks = append(tasks, task)
	}
	if err := s.repo.UpdateTasks(ctx, id, studentID, tasks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tasks")
	}
	item.Tasks = tasks
	return item, nil
}

// Move drags an owned item to a pipeline column and position.
func (s *CollegeListService) Move(ctx context.Context, studentID, id string, req models.MoveCollegeRequest) (*models.CollegeListItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	if !models.ValidApplicationStatus(req.ApplicationStatus) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}

	item, err := s.getOwned(ctx, id, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatusOrder(ctx, id, studentID, req.ApplicationStatus, req.StageOrder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move college")
	}
	item.ApplicationStatus = req.ApplicationStatus
	item.StageOrder = req.StageOrder
	return item, nil
}

// ToggleFavorite flips the favorite flag of an owned item.
func (s *CollegeListService) ToggleFavorite(ctx context.Context, studentID, id string) (*models.CollegeListItem, error) {
	item, err := s.getOwned(ctx, id, studentID)
	if err != nil {
		return nil, err
	}
	next := !item.IsFavorite
	if err := s.repo.SetFavorite(ctx, id, studentID, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle favorite")
	}
	item.IsFavorite = next
	return item, nil
}

// Delete removes an owned item.
func (s *CollegeListService) Delete(ctx context.Context, studentID, id string) error {
	if err := s.repo.Delete(ctx, id, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "college not found in your list")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete college")
	}
	return nil
}

// Stats summarizes the student's list for the dashboard.
func (s *CollegeListService) Stats(ctx context.Context, studentID string) (*models.CollegeListStats, error) {
	stats := &models.CollegeListStats{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		BySource:   make(map[string]int),
	}

	total, err := s.repo.CountByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count colleges")
	}
	stats.Total = total

	statusRows, err := s.repo.StatusCounts(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group by status")
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Key] = row.Count
	}

	priorityRows, err := s.repo.PriorityCounts(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group by priority")
	}
	for _, row := range priorityRows {
		stats.ByPriority[priorityKeyLabel(row.Key)] += row.Count
	}

	sourceRows, err := s.repo.SourceCounts(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group by source")
	}
	for _, row := range sourceRows {
		stats.BySource[row.Key] = row.Count
	}

	favorites, err := s.repo.CountFavorites(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count favorites")
	}
	stats.Favorites = favorites

	return stats, nil
}

func (s *CollegeListService) getOwned(ctx context.Context, id, studentID string) (*models.CollegeListItem, error) {
	item, err := s.repo.GetByIDAndStudent(ctx, id, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "college not found in your list")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load college")
	}
	return item, nil
}

func priorityKeyLabel(key string) string {
	switch key {
	case "1":
		return "High"
	case "2":
		return "Medium"
	case "3":
		return "Low"
	default:
		return "Not Set"
	}
}
