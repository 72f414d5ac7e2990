// ABOUTME: Audit log entity and store methods for tracking privileged actions
// ABOUTME: Records who changed which location, review or user account

package store

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents an auditable action.
type AuditAction string

const (
	AuditAddLocation    AuditAction = "add_location"
	AuditEditLocation   AuditAction = "edit_location"
	AuditDeleteLocation AuditAction = "delete_location"
	AuditAddReview      AuditAction = "add_review"
	AuditDeleteReview   AuditAction = "delete_review"
	AuditBlockUser      AuditAction = "block_user"
	AuditUnblockUser    AuditAction = "unblock_user"
	AuditSetRole        AuditAction = "set_role"
)

// ValidAuditActions lists all valid audit actions.
var ValidAuditActions = []AuditAction{
	AuditAddLocation,
	AuditEditLocation,
	AuditDeleteLocation,
	AuditAddReview,
	AuditDeleteReview,
	AuditBlockUser,
	AuditUnblockUser,
	AuditSetRole,
}

// ParseAuditAction returns the action named s.
func ParseAuditAction(s string) (AuditAction, error) {
	a := AuditAction(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(ValidAuditActions, a) {
		return "", fmt.Errorf("unknown audit action %q", s)
	}
	return a, nil
}

// auditTimeFormat is fixed width so ts sorts lexicographically.
const auditTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string         // UUID v4
	ActorID    string         // who performed the action
	Action     AuditAction    // what action was performed
	TargetType string         // "location", "review", "user"
	TargetID   string         // ID of the affected resource
	Timestamp  time.Time      // when it happened
	Detail     map[string]any // additional context
}

// AuditFilter narrows ListAuditLog. Empty fields match every entry.
type AuditFilter struct {
	ActorID  string
	Action   AuditAction
	TargetID string
	Limit    int // newest entries to return; 0 means 100, capped at 1000
}

func (f AuditFilter) matches(e AuditEntry) bool {
	return (f.ActorID == "" || e.ActorID == f.ActorID) &&
		(f.Action == "" || e.Action == f.Action) &&
		(f.TargetID == "" || e.TargetID == f.TargetID)
}

// where renders the set fields as a SQL condition and its arguments.
func (f AuditFilter) where() (string, []any) {
	var conds []string
	var args []any
	for _, c := range []struct {
		column string
		value  string
	}{
		{"actor_id", f.ActorID},
		{"action", string(f.Action)},
		{"target_id", f.TargetID},
	} {
		if c.value != "" {
			conds = append(conds, c.column+" = ?")
			args = append(args, c.value)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func auditLimit(limit int) int {
	return min(cmp.Or(max(limit, 0), 100), 1000)
}

// AuditStore records privileged actions.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, e *AuditEntry) error
	ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}

// stamp assigns an id and a UTC timestamp to entries that lack them.
func (e *AuditEntry) stamp() {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
}

// AppendAuditLog inserts e. The table's CHECK constraint rejects unknown
// actions.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	e.stamp()

	var detail sql.NullString
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("encoding audit detail: %w", err)
		}
		detail = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (audit_id, actor_id, action, target_type, target_id, ts, detail_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, string(e.Action), e.TargetType, e.TargetID,
		e.Timestamp.UTC().Format(auditTimeFormat), detail,
	)
	if err != nil {
		return fmt.Errorf("recording %s on %s: %w", e.Action, e.TargetID, err)
	}

	s.logger.Debug("audit", "action", e.Action, "actor", e.ActorID, "target", e.TargetType+"/"+e.TargetID)
	return nil
}

// ListAuditLog returns matching entries, newest first.
func (s *SQLiteStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	where, args := f.where()
	query := `SELECT audit_id, actor_id, action, target_type, target_id, ts, detail_json
		FROM audit_log ` + where + ` ORDER BY ts DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, append(args, auditLimit(f.Limit))...)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []AuditEntry{}
	for rows.Next() {
		var (
			e      AuditEntry
			ts     string
			detail sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &ts, &detail); err != nil {
			return nil, fmt.Errorf("reading audit entry: %w", err)
		}
		if e.Timestamp, err = time.Parse(auditTimeFormat, ts); err != nil {
			return nil, fmt.Errorf("audit entry %s: bad timestamp %q: %w", e.ID, ts, err)
		}
		if detail.Valid {
			if err := json.Unmarshal([]byte(detail.String), &e.Detail); err != nil {
				return nil, fmt.Errorf("audit entry %s: bad detail: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
