package dto

import "github.com/noah-isme/registrar-api/internal/models"

// ClaimSlipDetail joins a claim slip with the data printed on it.
type ClaimSlipDetail struct {
	models.ClaimSlip
	StudentName  *string `json:"studentName,omitempty"`
	StudentID    *string `json:"studentId,omitempty"`
	DocumentName *string `json:"documentName,omitempty"`
	Copies       int     `json:"copies"`
	IssuedByName *string `json:"issuedByName,omitempty"`
}
