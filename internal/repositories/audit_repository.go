package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

type auditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit log repository backed by MySQL
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *auditRepository {
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// Method Create is an AuditRepository implementation for inserting an audit entry into a database.
//
// ID and CreatedAt of "entry" are filled from the inserted row.
func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (actor_id, action, target_type, target_id, detail, request_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Detail,
		entry.RequestID,
	)
	if err != nil {
		r.logger.Error("failed to insert audit entry", zap.Error(err))
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = int(id)

	// created_at is set by the database default
	err = r.db.QueryRowContext(ctx, "SELECT created_at FROM audit_entries WHERE id = ?", id).Scan(&entry.CreatedAt)
	if err != nil {
		r.logger.Error("failed to read audit entry timestamp", zap.Error(err))
		return fmt.Errorf("failed to read audit entry timestamp: %w", err)
	}

	return nil
}

// Method List is an AuditRepository implementation for retrieving a page of audit entries from a database.
//
// Entries are ordered newest first. The total number of entries matching the filter is returned alongside the page.
func (r *auditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int, error) {
	var where []string
	var args []any
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, filter.Action)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_entries %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count audit entries", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, actor_id, action, target_type, target_id, detail, request_id, created_at
		FROM audit_entries
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	offset := (filter.Page - 1) * filter.Count
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Count, offset)...)
	if err != nil {
		r.logger.Error("failed to query audit entries", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0, filter.Count)
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Detail,
			&entry.RequestID,
			&entry.CreatedAt,
		); err != nil {
			r.logger.Error("failed to scan audit entry", zap.Error(err))
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, total, nil
}
