package authenticator

import (
	"context"

	"github.com/dmitrymomot/otpgate/pkg/audit"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

// CorruptionAuditor reports unreadable secret store data as a warning-level
// storage.corrupted event.
func CorruptionAuditor(l *audit.Logger) secretstore.CorruptionHandler {
	return func(ctx context.Context, userID string, err error) {
		if l == nil {
			return
		}
		_ = l.LogFailure(ctx, audit.ActionStorageCorrupted, err.Error(),
			audit.WithUserID(userID),
			audit.WithSeverity(audit.SeverityWarning),
			audit.WithResource("secret_store", userID),
		)
	}
}

func (s *Service) emit(ctx context.Context, action string, opts ...audit.EventOption) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, action, opts...); err != nil {
		s.logger.WarnContext(ctx, "audit event dropped", logger.Error(err))
	}
}

func (s *Service) failure(ctx context.Context, action, reason, userID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogFailure(ctx, action, reason, audit.WithUserID(userID)); err != nil {
		s.logger.WarnContext(ctx, "audit event dropped", logger.Error(err))
	}
}

func (s *Service) violation(ctx context.Context, reason, userID string) {
	s.logger.WarnContext(ctx, "security violation", logger.UserID(userID))
	if s.audit == nil {
		return
	}
	_ = s.audit.LogFailure(ctx, audit.ActionSecurityViolation, reason,
		audit.WithUserID(userID),
		audit.WithSeverity(audit.SeverityCritical),
	)
}

func (s *Service) systemError(ctx context.Context, op string, err error, userID string) {
	s.logger.ErrorContext(ctx, "authenticator operation failed",
		logger.UserID(userID),
		logger.Error(err),
	)
	if s.audit == nil {
		return
	}
	_ = s.audit.LogError(ctx, audit.ActionSystemError, err,
		audit.WithUserID(userID),
		audit.WithMetadata("op", op),
	)
}
