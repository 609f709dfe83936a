package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/export"
)

// ClaimNumber formats the printed slip number. It embeds the request id and
// is not unique on its own; the request_id constraint is what guarantees one
// slip per request.
func ClaimNumber(year int, requestID int64) string {
	return fmt.Sprintf("REQ-%d-%03d", year, requestID)
}

// NewClaimSlip builds the slip issued on a request's first approval.
func NewClaimSlip(requestID int64, year int, dateReady time.Time, issuedBy int64) models.ClaimSlip {
	return models.ClaimSlip{
		RequestID:   requestID,
		ClaimNumber: ClaimNumber(year, requestID),
		DateReady:   models.NewDate(dateReady),
		IssuedBy:    issuedBy,
	}
}

type claimSlipStore interface {
	FindByRequestID(ctx context.Context, requestID int64) (*models.ClaimSlip, error)
	CreateIfAbsent(ctx context.Context, slip *models.ClaimSlip) (bool, error)
}

type requestReader interface {
	GetByID(ctx context.Context, id int64) (*models.Request, error)
}

// DocumentLookup resolves catalog entries, returning a NOT_FOUND error for unknown ids.
type DocumentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Document, error)
}

// ClaimSlipService serves issued claim slips.
type ClaimSlipService struct {
	slips    claimSlipStore
	requests requestReader
	users    UserDirectory
	catalog  DocumentLookup
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewClaimSlipService constructs the service.
func NewClaimSlipService(slips claimSlipStore, requests requestReader, users UserDirectory, catalog DocumentLookup, pdf *export.PDFExporter, logger *zap.Logger) *ClaimSlipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ClaimSlipService{slips: slips, requests: requests, users: users, catalog: catalog, pdf: pdf, logger: logger}
}

// GetByRequest returns the slip of a request joined with its printable fields.
func (s *ClaimSlipService) GetByRequest(ctx context.Context, caller *models.JWTClaims, requestID int64) (*dto.ClaimSlipDetail, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("request", requestID)
		}
		return nil, appErrors.Internal(err, "failed to load request")
	}
	if err := authorizeOwner(caller, req.UserID); err != nil {
		return nil, err
	}

	slip, err := s.slips.FindByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("claim slip for request %d not found", requestID))
		}
		return nil, appErrors.Internal(err, "failed to load claim slip")
	}

	detail := &dto.ClaimSlipDetail{ClaimSlip: *slip, Copies: req.Copies}
	if owner := s.user(ctx, req.UserID); owner != nil {
		detail.StudentName = &owner.Name
		detail.StudentID = owner.SID
	}
	if issuer := s.user(ctx, slip.IssuedBy); issuer != nil {
		detail.IssuedByName = &issuer.Name
	}
	if doc, err := s.catalog.FindByID(ctx, req.DocumentID); err == nil {
		detail.DocumentName = &doc.Name
	} else {
		s.logger.Warn("claim slip document lookup failed", zap.Int64("document_id", req.DocumentID), zap.Error(err))
	}
	return detail, nil
}

// RenderPDF produces the printable slip and a download filename.
func (s *ClaimSlipService) RenderPDF(ctx context.Context, caller *models.JWTClaims, requestID int64) ([]byte, string, error) {
	detail, err := s.GetByRequest(ctx, caller, requestID)
	if err != nil {
		return nil, "", err
	}
	sheet := export.ClaimSlipSheet{
		ClaimNumber:  detail.ClaimNumber,
		DateReady:    detail.DateReady.String(),
		StudentName:  derefString(detail.StudentName),
		StudentID:    derefString(detail.StudentID),
		DocumentName: derefString(detail.DocumentName),
		Copies:       detail.Copies,
		IssuedBy:     derefString(detail.IssuedByName),
	}
	body, err := s.pdf.RenderClaimSlip(sheet)
	if err != nil {
		return nil, "", appErrors.Internal(err, "failed to render claim slip")
	}
	return body, detail.ClaimNumber + "." + s.pdf.Extension(), nil
}

func (s *ClaimSlipService) user(ctx context.Context, id int64) *models.User {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("claim slip user lookup failed", zap.Int64("user_id", id), zap.Error(err))
		}
		return nil
	}
	return user
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
