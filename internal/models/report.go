package models

import (
	"errors"
	"strings"
)

// Category is a report category as stored by the backend
type Category string

const (
	CategoryScam          Category = "SCAM"
	CategorySpam          Category = "SPAM"
	CategoryTelemarketing Category = "TELEMARKETING"
	CategoryFraud         Category = "FRAUD"
	CategoryOther         Category = "OTHER"
)

// Status is a report moderation status as stored by the backend
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidStatus   = errors.New("invalid status")
)

// ParseCategory upper-cases and validates a category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CategoryScam, CategorySpam, CategoryTelemarketing, CategoryFraud, CategoryOther:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// ParseStatus upper-cases and validates a status
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// IsModerationTarget reports whether an admin may move a report into this status
func (s Status) IsModerationTarget() bool {
	return s == StatusApproved || s == StatusRejected
}

// Report is the backend representation of a phone number report
type Report struct {
	ID          string      `json:"id"`
	PhoneNumber string      `json:"phoneNumber"`
	Message     string      `json:"message"`
	Category    string      `json:"category"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"createdAt,omitempty"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
	UserID      string      `json:"userId"`
	User        *ReportUser `json:"user,omitempty"`
}

// ReportUser is the author summary embedded in a report
type ReportUser struct {
	Name string `json:"name"`
}

// UnknownAuthor is shown when a report carries no author name
const UnknownAuthor = "Unknown"

// SubmissionResponse is the caller facing form of a report
type SubmissionResponse struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`
	Message     string `json:"message"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// NewSubmissionResponse creates a SubmissionResponse from Report
func NewSubmissionResponse(r *Report) SubmissionResponse {
	name := UnknownAuthor
	if r.User != nil && r.User.Name != "" {
		name = r.User.Name
	}

	return SubmissionResponse{
		ID:          r.ID,
		PhoneNumber: r.PhoneNumber,
		Name:        name,
		Message:     r.Message,
		Category:    r.Category,
		Status:      strings.ToLower(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

// NewSubmissionResponses maps a list of reports
func NewSubmissionResponses(reports []Report) []SubmissionResponse {
	result := make([]SubmissionResponse, 0, len(reports))
	for i := range reports {
		result = append(result, NewSubmissionResponse(&reports[i]))
	}
	return result
}

// SubmissionRequest represents a request body for creating or updating a submission
type SubmissionRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
	Category    string `json:"category"`
}

// CreateReportRequest is the backend body for report creation
type CreateReportRequest struct {
	PhoneNumber string   `json:"phoneNumber"`
	Message     string   `json:"message"`
	Category    Category `json:"category"`
	UserID      string   `json:"userId"`
}

// UpdateReportRequest is the backend body for report update
type UpdateReportRequest struct {
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Message     string   `json:"message,omitempty"`
	Category    Category `json:"category,omitempty"`
}

// UpdateStatusRequest represents a request body for admin status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
