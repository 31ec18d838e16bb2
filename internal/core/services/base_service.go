package services

import (
	"context"
	"log/slog"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	OrgAuthorizer portssvc.OrganizationSvcFacade
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// AuthorizeOrg checks that the actor may act on the organization at the
// required role. Every store operation calls this before touching data; there
// is no unscoped path.
func (s *BaseService) AuthorizeOrg(ctx context.Context, userID, organizationID string, minRole domain.OrganizationRole) error {
	return s.OrgAuthorizer.AuthorizeOrgAction(ctx, userID, organizationID, minRole)
}
