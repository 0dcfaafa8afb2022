package core

import (
	"context"
	"encoding/json"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditAction names an audited change.
type AuditAction string

const (
	ActionImport        AuditAction = "import"
	ActionProductCreate AuditAction = "product_create"
	ActionProductUpdate AuditAction = "product_update"
	ActionProductDelete AuditAction = "product_delete"
	ActionSaleCreate    AuditAction = "sale_create"
	ActionDataReset     AuditAction = "data_reset"
	ActionUserRegister  AuditAction = "user_register"
)

type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditLogParams describes one audit entry. Detail is stored as JSON.
type AuditLogParams struct {
	Action AuditAction
	UserID uuid.UUID
	Entity string
	Detail map[string]any
}

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionProductDelete:
		return SeverityHigh
	case ActionDataReset:
		return SeverityCritical
	case ActionUserRegister:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit records an audit entry with the request's IP and user agent.
// Failures are logged and swallowed; auditing never fails the operation.
// It must not be called while a batch is open on the same store.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) {
	var detail []byte
	if params.Detail != nil {
		detail, _ = json.Marshal(params.Detail)
	}

	userID := pgtype.UUID{}
	if params.UserID != uuid.Nil {
		userID = ToPgUUID(params.UserID)
	}
	meta := RequestMetaFrom(ctx)

	_, err := s.store.InsertAuditLog(context.WithoutCancel(ctx), db.InsertAuditLogParams{
		UserID:    userID,
		Action:    string(params.Action),
		Severity:  string(determineSeverity(params.Action)),
		Entity:    params.Entity,
		Detail:    detail,
		IpAddress: ToPgText(meta.IPAddress),
		UserAgent: ToPgText(meta.UserAgent),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("audit log write failed", "action", params.Action, "error", err)
	}
}
