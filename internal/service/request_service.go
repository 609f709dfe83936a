package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, at time.Time) error
	SetDateReady(ctx context.Context, id int64, readyAt time.Time) error
	UpdateFields(ctx context.Context, req *models.Request) error
	Delete(ctx context.Context, id int64) error
}

type paymentLedger interface {
	FindLatestByRequestID(ctx context.Context, requestID int64) (*models.Payment, error)
}

type statusLogAppender interface {
	Append(ctx context.Context, entry *models.StatusLogEntry) error
}

type inboxNotifier interface {
	Notify(ctx context.Context, userID int64, requestID *int64, message string) (*models.Notification, error)
	Mirror(n *models.Notification)
}

type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// dateReadyLayouts are the accepted shapes of a dateReady hint.
var dateReadyLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// RequestServiceParams groups constructor dependencies.
type RequestServiceParams struct {
	Requests   requestStore
	Catalog    DocumentLookup
	Users      UserDirectory
	Payments   paymentLedger
	StatusLogs statusLogAppender
	ClaimSlips claimSlipStore
	Notifier   inboxNotifier
	Tx         txRunner
	Exporters  map[string]DatasetRenderer
	Validator  *validator.Validate
	Metrics    *MetricsService
	Logger     *zap.Logger
	Location   *time.Location
	Now        func() time.Time
}

// RequestService runs the document request lifecycle: creation, status
// transitions with their side effects, and the enriched read model.
type RequestService struct {
	requests   requestStore
	catalog    DocumentLookup
	users      UserDirectory
	payments   paymentLedger
	statusLogs statusLogAppender
	claimSlips claimSlipStore
	notifier   inboxNotifier
	tx         txRunner
	exporters  map[string]DatasetRenderer
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewRequestService constructs the lifecycle engine.
func NewRequestService(params RequestServiceParams) *RequestService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &RequestService{
		requests:   params.Requests,
		catalog:    params.Catalog,
		users:      params.Users,
		payments:   params.Payments,
		statusLogs: params.StatusLogs,
		claimSlips: params.ClaimSlips,
		notifier:   params.Notifier,
		tx:         params.Tx,
		exporters:  params.Exporters,
		validator:  validate,
		metrics:    params.Metrics,
		logger:     logger,
		loc:        loc,
		now:        now,
	}
}

// Create opens a PENDING request for the caller and notifies every registrar.
func (s *RequestService) Create(ctx context.Context, caller *models.JWTClaims, payload dto.CreateRequestPayload) (*dto.RequestDetail, error) {
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	doc, err := s.resolveDocument(ctx, payload.DocumentID)
	if err != nil {
		return nil, err
	}

	req := &models.Request{
		UserID:     caller.UserID,
		DocumentID: doc.ID,
		Status:     models.RequestStatusPending,
		Copies:     payload.Copies,
		DateNeeded: payload.DateNeeded.OrNil(),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, appErrors.Internal(err, "failed to create request")
	}
	s.logger.Info("request created", zap.Int64("request_id", req.ID), zap.Int64("user_id", req.UserID), zap.Int64("document_id", req.DocumentID))

	e := s.newEnrichment()
	e.docs[doc.ID] = doc
	detail := e.apply(ctx, *req)
	s.notifyRegistrars(ctx, detail)
	return detail, nil
}

// notifyRegistrars fans the new request out to every registrar. Failures are
// logged and never undo the creation.
func (s *RequestService) notifyRegistrars(ctx context.Context, detail *dto.RequestDetail) {
	registrars, err := s.users.ListByRole(ctx, models.RoleRegistrar)
	if err != nil {
		s.logger.Warn("list registrars for fan-out failed", zap.Int64("request_id", detail.ID), zap.Error(err))
		return
	}

	message := creationMessage(detail)
	requestID := detail.ID
	for _, registrar := range registrars {
		n, err := s.notifier.Notify(ctx, registrar.ID, &requestID, message)
		s.metrics.RecordNotification("inbox", err == nil)
		if err != nil {
			s.logger.Warn("notify registrar failed", zap.Int64("request_id", requestID), zap.Int64("registrar_id", registrar.ID), zap.Error(err))
			continue
		}
		s.notifier.Mirror(n)
	}
}

func creationMessage(detail *dto.RequestDetail) string {
	name := fmt.Sprintf("user #%d", detail.UserID)
	if detail.UserName != nil {
		name = *detail.UserName
	}
	if detail.StudentID != nil && *detail.StudentID != "" {
		name = fmt.Sprintf("%s (%s)", name, *detail.StudentID)
	}
	document := fmt.Sprintf("document #%d", detail.DocumentID)
	if detail.DocumentName != nil {
		document = *detail.DocumentName
	}
	return fmt.Sprintf("New request #%d from %s for %s.", detail.ID, name, document)
}

func statusMessage(requestID int64, document string, status models.RequestStatus, remarks *string) string {
	message := fmt.Sprintf("Your request #%d for %s is now %s.", requestID, document, status)
	if remarks != nil {
		message += " Remarks: " + *remarks
	}
	return message
}

// ChangeStatus moves a request to a new status. The status write, dateReady
// stamp, audit entry, claim slip and owner notification commit together under
// a row lock on the request. The e-mail mirror is queued after commit.
func (s *RequestService) ChangeStatus(ctx context.Context, requestID int64, payload dto.ChangeStatusPayload, actingRegistrarID int64) (*dto.RequestDetail, error) {
	remarks := blankToNil(payload.Remarks)

	var (
		updated      *models.Request
		oldStatus    models.RequestStatus
		notification *models.Notification
		notifyFailed bool
		slipIssued   bool
	)
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.requests.GetForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFound("request", requestID)
			}
			return appErrors.Internal(err, "failed to load request")
		}

		next, ok := models.ParseRequestStatus(payload.Status)
		if !ok {
			return appErrors.InvalidArgument("invalid status %q", payload.Status)
		}
		if next == current.Status {
			return appErrors.InvalidArgument("request is already in status %s", next)
		}

		now := s.now().In(s.loc)
		oldStatus = current.Status
		if err := s.requests.UpdateStatus(txCtx, requestID, next, now.UTC()); err != nil {
			return appErrors.Internal(err, "failed to update request status")
		}
		current.Status = next
		current.UpdatedAt = now.UTC()

		if next == models.RequestStatusApproved && oldStatus != models.RequestStatusApproved && current.DateReady == nil {
			readyAt := s.resolveDateReady(payload.DateReady, now)
			if err := s.requests.SetDateReady(txCtx, requestID, readyAt); err != nil {
				return appErrors.Internal(err, "failed to set date ready")
			}
			current.DateReady = &readyAt
		}

		old := string(oldStatus)
		entry := &models.StatusLogEntry{
			RequestID: requestID,
			OldStatus: &old,
			NewStatus: string(next),
			ChangedBy: actingRegistrarID,
			Remarks:   remarks,
			ChangedAt: now.UTC(),
		}
		if err := s.statusLogs.Append(txCtx, entry); err != nil {
			return appErrors.Internal(err, "failed to append status log")
		}

		if next == models.RequestStatusApproved {
			slipIssued, err = s.issueClaimSlip(txCtx, current, now, actingRegistrarID)
			if err != nil {
				return err
			}
		}

		document := fmt.Sprintf("document #%d", current.DocumentID)
		if doc, err := s.catalog.FindByID(txCtx, current.DocumentID); err == nil {
			document = doc.Name
		} else {
			s.logger.Warn("document lookup for status notification failed", zap.Int64("document_id", current.DocumentID), zap.Error(err))
		}
		id := requestID
		notification, err = s.notifier.Notify(txCtx, current.UserID, &id, statusMessage(requestID, document, next, remarks))
		if err != nil {
			notifyFailed = true
			return appErrors.Internal(err, "failed to notify request owner")
		}

		updated = current
		return nil
	})
	if err != nil {
		if notifyFailed {
			s.metrics.RecordNotification("inbox", false)
		}
		return nil, appErrors.FromError(err)
	}

	s.metrics.RecordNotification("inbox", true)
	s.notifier.Mirror(notification)
	s.metrics.RecordTransition(oldStatus, updated.Status)
	if slipIssued {
		s.metrics.RecordClaimSlipIssued()
	}
	s.logger.Info("request status changed",
		zap.Int64("request_id", requestID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(updated.Status)),
		zap.Int64("changed_by", actingRegistrarID),
	)
	return s.newEnrichment().apply(ctx, *updated), nil
}

// issueClaimSlip writes the request's claim slip unless one already exists.
func (s *RequestService) issueClaimSlip(ctx context.Context, req *models.Request, now time.Time, issuedBy int64) (bool, error) {
	if _, err := s.claimSlips.FindByRequestID(ctx, req.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, appErrors.Internal(err, "failed to look up claim slip")
	}

	readyOn := now
	if req.DateReady != nil {
		readyOn = req.DateReady.In(s.loc)
	}
	slip := NewClaimSlip(req.ID, now.Year(), readyOn, issuedBy)
	slip.CreatedAt = now.UTC()
	created, err := s.claimSlips.CreateIfAbsent(ctx, &slip)
	if err != nil {
		return false, appErrors.Internal(err, "failed to issue claim slip")
	}
	if !created {
		s.logger.Info("claim slip already issued concurrently", zap.Int64("request_id", req.ID))
	}
	return created, nil
}

// resolveDateReady picks the hinted calendar date, or today, at noon in the
// service location. Unparseable hints are ignored.
func (s *RequestService) resolveDateReady(hint *string, now time.Time) time.Time {
	day := now
	if hint != nil {
		if raw := strings.TrimSpace(*hint); raw != "" {
			parsed, ok := parseDateHint(raw, s.loc)
			if ok {
				day = parsed
			} else {
				s.logger.Warn("ignoring unparseable dateReady hint", zap.String("hint", raw))
			}
		}
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, s.loc)
}

func parseDateHint(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateReadyLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Get returns the enriched view of one request.
func (s *RequestService) Get(ctx context.Context, caller *models.JWTClaims, id int64) (*dto.RequestDetail, error) {
	req, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.newEnrichment().apply(ctx, *req), nil
}

// List returns enriched requests newest first. Non-registrars only see their own.
func (s *RequestService) List(ctx context.Context, caller *models.JWTClaims, query dto.RequestQuery) ([]dto.RequestDetail, error) {
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{UserID: query.UserID, Status: query.Status}
	if !caller.IsRegistrar() {
		if query.UserID != nil && *query.UserID != caller.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to access this resource")
		}
		owner := caller.UserID
		filter.UserID = &owner
	}
	return s.list(ctx, filter)
}

func (s *RequestService) list(ctx context.Context, filter models.RequestFilter) ([]dto.RequestDetail, error) {
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list requests")
	}
	e := s.newEnrichment()
	items := make([]dto.RequestDetail, 0, len(requests))
	for _, req := range requests {
		items = append(items, *e.apply(ctx, req))
	}
	return items, nil
}

// Update edits copies, dateNeeded and document. Owner and status are never touched here.
func (s *RequestService) Update(ctx context.Context, caller *models.JWTClaims, id int64, payload dto.UpdateRequestPayload) (*dto.RequestDetail, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	req, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	e := s.newEnrichment()
	if payload.DocumentID != nil && *payload.DocumentID != req.DocumentID {
		doc, err := s.resolveDocument(ctx, *payload.DocumentID)
		if err != nil {
			return nil, err
		}
		req.DocumentID = doc.ID
		e.docs[doc.ID] = doc
	}
	if payload.Copies != nil {
		req.Copies = *payload.Copies
	}
	if d := payload.DateNeeded.OrNil(); d != nil {
		req.DateNeeded = d
	}
	req.UpdatedAt = s.now().UTC()

	if err := s.requests.UpdateFields(ctx, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("request", id)
		}
		return nil, appErrors.Internal(err, "failed to update request")
	}
	return e.apply(ctx, *req), nil
}

// Delete removes a request owned by the caller, or any request for registrars.
func (s *RequestService) Delete(ctx context.Context, caller *models.JWTClaims, id int64) error {
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFound("request", id)
		}
		return appErrors.Internal(err, "failed to delete request")
	}
	s.logger.Info("request deleted", zap.Int64("request_id", id), zap.Int64("deleted_by", caller.UserID))
	return nil
}

func (s *RequestService) load(ctx context.Context, caller *models.JWTClaims, id int64) (*models.Request, error) {
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("request", id)
		}
		return nil, appErrors.Internal(err, "failed to load request")
	}
	if err := authorizeOwner(caller, req.UserID); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) resolveDocument(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.NotFound("document", id)
		}
		return nil, appErrors.Internal(err, "failed to resolve document")
	}
	return doc, nil
}
