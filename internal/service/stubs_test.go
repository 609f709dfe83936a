package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/jobs"
)

type requestStoreStub struct {
	items  map[int64]*models.Request
	nextID int64
	locked []int64
}

func newRequestStoreStub() *requestStoreStub {
	return &requestStoreStub{items: make(map[int64]*models.Request), nextID: 100}
}

func (r *requestStoreStub) put(req models.Request) {
	copy := req
	r.items[req.ID] = &copy
}

func (r *requestStoreStub) Create(ctx context.Context, req *models.Request) error {
	r.nextID++
	req.ID = r.nextID
	req.UpdatedAt = req.CreatedAt
	r.put(*req)
	return nil
}

func (r *requestStoreStub) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	req, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *req
	return &copy, nil
}

func (r *requestStoreStub) GetForUpdate(ctx context.Context, id int64) (*models.Request, error) {
	r.locked = append(r.locked, id)
	return r.GetByID(ctx, id)
}

func (r *requestStoreStub) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	result := make([]models.Request, 0, len(r.items))
	for _, req := range r.items {
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		result = append(result, *req)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *requestStoreStub) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, at time.Time) error {
	req, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	req.Status = status
	req.UpdatedAt = at
	return nil
}

func (r *requestStoreStub) SetDateReady(ctx context.Context, id int64, readyAt time.Time) error {
	req, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	if req.DateReady == nil {
		req.DateReady = &readyAt
	}
	return nil
}

func (r *requestStoreStub) UpdateFields(ctx context.Context, req *models.Request) error {
	current, ok := r.items[req.ID]
	if !ok {
		return sql.ErrNoRows
	}
	current.DocumentID = req.DocumentID
	current.Copies = req.Copies
	current.DateNeeded = req.DateNeeded
	current.UpdatedAt = req.UpdatedAt
	return nil
}

func (r *requestStoreStub) Delete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type catalogStub struct {
	docs    map[int64]*models.Document
	lookups int
}

func (c *catalogStub) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	c.lookups++
	doc, ok := c.docs[id]
	if !ok {
		return nil, appErrors.NotFound("document", id)
	}
	copy := *doc
	return &copy, nil
}

type userDirectoryStub struct {
	users   map[int64]*models.User
	lookups int
	listErr error
}

func (u *userDirectoryStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u.lookups++
	user, ok := u.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *user
	return &copy, nil
}

func (u *userDirectoryStub) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if u.listErr != nil {
		return nil, u.listErr
	}
	var result []models.User
	for _, user := range u.users {
		if user.Role == role {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type paymentLedgerStub struct {
	latest map[int64]*models.Payment
	err    error
}

func (p *paymentLedgerStub) FindLatestByRequestID(ctx context.Context, requestID int64) (*models.Payment, error) {
	if p.err != nil {
		return nil, p.err
	}
	payment, ok := p.latest[requestID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return payment, nil
}

type statusLogStoreStub struct {
	entries []models.StatusLogEntry
	filter  models.StatusLogFilter
	err     error
}

func (s *statusLogStoreStub) Append(ctx context.Context, entry *models.StatusLogEntry) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *statusLogStoreStub) List(ctx context.Context, filter models.StatusLogFilter) ([]models.StatusLogEntry, error) {
	s.filter = filter
	return append([]models.StatusLogEntry(nil), s.entries...), nil
}

func (s *statusLogStoreStub) GetByID(ctx context.Context, id int64) (*models.StatusLogEntry, error) {
	for _, entry := range s.entries {
		if entry.ID == id {
			copy := entry
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *statusLogStoreStub) UpdateRemarks(ctx context.Context, id int64, remarks *string) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Remarks = remarks
			return nil
		}
	}
	return sql.ErrNoRows
}

type claimSlipStoreStub struct {
	slips       map[int64]*models.ClaimSlip
	createCalls int
	// lostRace makes CreateIfAbsent behave as if another transaction inserted first.
	lostRace bool
}

func newClaimSlipStoreStub() *claimSlipStoreStub {
	return &claimSlipStoreStub{slips: make(map[int64]*models.ClaimSlip)}
}

func (c *claimSlipStoreStub) FindByRequestID(ctx context.Context, requestID int64) (*models.ClaimSlip, error) {
	slip, ok := c.slips[requestID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *slip
	return &copy, nil
}

func (c *claimSlipStoreStub) CreateIfAbsent(ctx context.Context, slip *models.ClaimSlip) (bool, error) {
	c.createCalls++
	if c.lostRace {
		return false, nil
	}
	if _, ok := c.slips[slip.RequestID]; ok {
		return false, nil
	}
	slip.ID = int64(len(c.slips) + 1)
	copy := *slip
	c.slips[slip.RequestID] = &copy
	return true, nil
}

type notificationStoreStub struct {
	items   []*models.Notification
	failFor map[int64]bool
}

func newNotificationStoreStub() *notificationStoreStub {
	return &notificationStoreStub{failFor: make(map[int64]bool)}
}

func (n *notificationStoreStub) Create(ctx context.Context, notification *models.Notification) error {
	if n.failFor[notification.UserID] {
		return errors.New("insert failed")
	}
	notification.ID = int64(len(n.items) + 1)
	copy := *notification
	n.items = append(n.items, &copy)
	return nil
}

func (n *notificationStoreStub) forUser(userID int64) []*models.Notification {
	var result []*models.Notification
	for _, item := range n.items {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	return result
}

func (n *notificationStoreStub) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	var result []models.Notification
	for i := len(n.items) - 1; i >= 0; i-- {
		if n.items[i].UserID == userID {
			result = append(result, *n.items[i])
		}
	}
	return result, nil
}

func (n *notificationStoreStub) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	for _, item := range n.items {
		if item.ID == id {
			copy := *item
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (n *notificationStoreStub) MarkRead(ctx context.Context, id int64) error {
	for _, item := range n.items {
		if item.ID == id {
			item.IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (n *notificationStoreStub) CountUnread(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, item := range n.items {
		if item.UserID == userID && !item.IsRead {
			count++
		}
	}
	return count, nil
}

func (n *notificationStoreStub) Delete(ctx context.Context, id int64) error {
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (n *notificationStoreStub) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	kept := n.items[:0]
	var removed int64
	for _, item := range n.items {
		if item.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	n.items = kept
	return removed, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type txStub struct {
	calls     int
	commitErr error
}

func (t *txStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return t.commitErr
}
