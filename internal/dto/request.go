package dto

import (
	"fmt"
	"time"

	"github.com/noah-isme/registrar-api/internal/models"
)

// CreateRequestPayload is submitted by a student to open a request.
type CreateRequestPayload struct {
	DocumentID int64        `json:"documentId" validate:"required,gt=0"`
	Copies     int          `json:"copies" validate:"required,min=1,max=50"`
	DateNeeded *models.Date `json:"dateNeeded"`
}

// UpdateRequestPayload edits the plain fields of a request. Owner, status and
// audit timestamps are not editable here.
type UpdateRequestPayload struct {
	DocumentID *int64       `json:"documentId" validate:"omitempty,gt=0"`
	Copies     *int         `json:"copies" validate:"omitempty,min=1,max=50"`
	DateNeeded *models.Date `json:"dateNeeded"`
}

// ChangeStatusPayload moves a request to another status.
type ChangeStatusPayload struct {
	Status    string  `json:"status"`
	Remarks   *string `json:"remarks"`
	DateReady *string `json:"dateReady"`
}

// RequestQuery mirrors supported listing filters.
type RequestQuery struct {
	UserID *int64
	Status []models.RequestStatus
}

// RequestDetail is the enriched read model of a request.
type RequestDetail struct {
	models.Request
	ReferenceCode  string  `json:"referenceCode"`
	UserName       *string `json:"userName,omitempty"`
	StudentID      *string `json:"studentId,omitempty"`
	DocumentName   *string `json:"documentName,omitempty"`
	ProofOfPayment *string `json:"proofOfPayment,omitempty"`
}

// NewRequestDetail wraps a request without any joined fields.
func NewRequestDetail(req models.Request) *RequestDetail {
	return &RequestDetail{Request: req, ReferenceCode: fmt.Sprintf("REQ-%d", req.ID)}
}

// ExportRow flattens the detail for tabular exports.
func (d RequestDetail) ExportRow(loc *time.Location) map[string]string {
	row := map[string]string{
		"Reference":    d.ReferenceCode,
		"Student":      deref(d.UserName),
		"Student ID":   deref(d.StudentID),
		"Document":     deref(d.DocumentName),
		"Copies":       fmt.Sprintf("%d", d.Copies),
		"Status":       string(d.Status),
		"Date Needed":  "",
		"Date Ready":   "",
		"Submitted At": d.CreatedAt.In(loc).Format("2006-01-02 15:04"),
	}
	if d.DateNeeded != nil {
		row["Date Needed"] = d.DateNeeded.String()
	}
	if d.DateReady != nil {
		row["Date Ready"] = d.DateReady.In(loc).Format(models.DateLayout)
	}
	return row
}

// RequestExportHeaders is the column order for request exports.
var RequestExportHeaders = []string{"Reference", "Student", "Student ID", "Document", "Copies", "Status", "Date Needed", "Date Ready", "Submitted At"}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
