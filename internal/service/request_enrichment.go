package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
)

// enrichment joins requests with directory, catalog and payment data.
// Lookups are memoized for the lifetime of one read so list reads hit each
// user and document once.
type enrichment struct {
	s     *RequestService
	users map[int64]*models.User
	docs  map[int64]*models.Document
}

func (s *RequestService) newEnrichment() *enrichment {
	return &enrichment{
		s:     s,
		users: make(map[int64]*models.User),
		docs:  make(map[int64]*models.Document),
	}
}

// apply builds the read model. Missing or failing lookups leave fields empty.
func (e *enrichment) apply(ctx context.Context, req models.Request) *dto.RequestDetail {
	detail := dto.NewRequestDetail(req)

	if user := e.user(ctx, req.UserID); user != nil {
		name := user.Name
		detail.UserName = &name
		detail.StudentID = user.SID
	}
	if doc := e.document(ctx, req.DocumentID); doc != nil {
		name := doc.Name
		detail.DocumentName = &name
	}

	payment, err := e.s.payments.FindLatestByRequestID(ctx, req.ID)
	switch {
	case err == nil:
		proof := payment.ProofOfPayment
		detail.ProofOfPayment = &proof
	case !errors.Is(err, sql.ErrNoRows):
		e.s.logger.Warn("payment lookup failed", zap.Int64("request_id", req.ID), zap.Error(err))
	}
	return detail
}

func (e *enrichment) user(ctx context.Context, id int64) *models.User {
	if user, ok := e.users[id]; ok {
		return user
	}
	user, err := e.s.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			e.s.logger.Warn("user lookup failed", zap.Int64("user_id", id), zap.Error(err))
		}
		user = nil
	}
	e.users[id] = user
	return user
}

func (e *enrichment) document(ctx context.Context, id int64) *models.Document {
	if doc, ok := e.docs[id]; ok {
		return doc
	}
	doc, err := e.s.catalog.FindByID(ctx, id)
	if err != nil {
		e.s.logger.Warn("document lookup failed", zap.Int64("document_id", id), zap.Error(err))
		doc = nil
	}
	e.docs[id] = doc
	return doc
}
