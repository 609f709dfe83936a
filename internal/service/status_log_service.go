package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
)

type statusLogStore interface {
	Append(ctx context.Context, entry *models.StatusLogEntry) error
	List(ctx context.Context, filter models.StatusLogFilter) ([]models.StatusLogEntry, error)
	GetByID(ctx context.Context, id int64) (*models.StatusLogEntry, error)
	UpdateRemarks(ctx context.Context, id int64, remarks *string) error
}

// StatusLogService reads the request audit trail and applies remark corrections.
type StatusLogService struct {
	store  statusLogStore
	users  UserDirectory
	logger *zap.Logger
}

// NewStatusLogService constructs the service.
func NewStatusLogService(store statusLogStore, users UserDirectory, logger *zap.Logger) *StatusLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusLogService{store: store, users: users, logger: logger}
}

// List returns audit entries oldest first. Non-registrars only see entries of their own requests.
func (s *StatusLogService) List(ctx context.Context, caller *models.JWTClaims, query dto.StatusLogQuery) ([]dto.StatusLogDetail, error) {
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.StatusLogFilter{RequestID: query.RequestID, OwnerID: query.UserID}
	if !caller.IsRegistrar() {
		if query.UserID != nil && *query.UserID != caller.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to access this resource")
		}
		owner := caller.UserID
		filter.OwnerID = &owner
	}

	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list status logs")
	}

	names := make(map[int64]*string)
	items := make([]dto.StatusLogDetail, 0, len(entries))
	for _, entry := range entries {
		name, seen := names[entry.ChangedBy]
		if !seen {
			name = s.registrarName(ctx, entry.ChangedBy)
			names[entry.ChangedBy] = name
		}
		items = append(items, dto.StatusLogDetail{StatusLogEntry: entry, ChangedByName: name})
	}
	return items, nil
}

// CorrectRemarks rewrites the remarks of one entry; status fields and changedAt stay untouched.
func (s *StatusLogService) CorrectRemarks(ctx context.Context, id int64, payload dto.CorrectStatusLogPayload) (*dto.StatusLogDetail, error) {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("status log", id)
		}
		return nil, appErrors.Internal(err, "failed to load status log")
	}

	remarks := blankToNil(payload.Remarks)
	if err := s.store.UpdateRemarks(ctx, id, remarks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("status log", id)
		}
		return nil, appErrors.Internal(err, "failed to update status log")
	}
	entry.Remarks = remarks
	s.logger.Info("status log remarks corrected", zap.Int64("log_id", id), zap.Int64("request_id", entry.RequestID))
	return &dto.StatusLogDetail{StatusLogEntry: *entry, ChangedByName: s.registrarName(ctx, entry.ChangedBy)}, nil
}

// registrarName resolves a display name only when the actor is a registrar.
func (s *StatusLogService) registrarName(ctx context.Context, userID int64) *string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("status log actor lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil
	}
	if user.Role != models.RoleRegistrar {
		return nil
	}
	return &user.Name
}
