package models

import "time"

// Audit actions recorded for admin moderation
const (
	AuditActionReportStatus = "report.status"
	AuditActionUserBlock    = "user.block"
	AuditActionUserUnblock  = "user.unblock"
	AuditActionUserDelete   = "user.delete"
)

// Audit target types
const (
	AuditTargetReport = "report"
	AuditTargetUser   = "user"
)

// AuditEntry is a single admin action
type AuditEntry struct {
	ID         int       `json:"id"`
	ActorID    string    `json:"actorId"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Detail     string    `json:"detail"`
	RequestID  string    `json:"requestId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	Action string
	Page   int
	Count  int
}

// AuditListResponse is a page of audit entries
type AuditListResponse struct {
	Items []AuditEntry `json:"items"`
	Page  int          `json:"page"`
	Count int          `json:"count"`
	Total int          `json:"total"`
}
