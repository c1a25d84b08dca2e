package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PrivilegeChecker answers module privilege questions for a role
type PrivilegeChecker interface {
	Authorize(ctx context.Context, roleID uint64, module string, action identity.Action) error
	IsAdmin(ctx context.Context, roleID uint64) (bool, error)
}

// Privileges builds privilege gates on top of a PrivilegeChecker
type Privileges struct {
	checker PrivilegeChecker
	logger  *zap.Logger
}

// NewPrivileges creates the privilege gates
func NewPrivileges(checker PrivilegeChecker, logger *zap.Logger) *Privileges {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Privileges{checker: checker, logger: logger}
}

// Require allows the request when the caller's role may perform action on module
func (p *Privileges) Require(module string, action identity.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID := GetRoleID(c)
		if roleID == 0 {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required", nil)
			return
		}
		if err := p.checker.Authorize(c.Request.Context(), roleID, module, action); err != nil {
			p.deny(c, roleID, err, map[string]any{"module": module, "action": string(action)})
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only administrator roles
func (p *Privileges) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID := GetRoleID(c)
		if roleID == 0 {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required", nil)
			return
		}
		admin, err := p.checker.IsAdmin(c.Request.Context(), roleID)
		if err != nil {
			p.deny(c, roleID, err, nil)
			return
		}
		if !admin {
			p.deny(c, roleID, shared.ErrForbidden, map[string]any{"required": "admin"})
			return
		}
		c.Next()
	}
}

func (p *Privileges) deny(c *gin.Context, roleID uint64, err error, details map[string]any) {
	if !errors.Is(err, shared.ErrForbidden) {
		p.logger.Error("privilege check failed",
			zap.Uint64("role_id", roleID),
			zap.String("request_id", GetRequestID(c)),
			zap.Error(err),
		)
		abort(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Privilege check failed", nil)
		return
	}
	p.logger.Warn("privilege denied",
		zap.Uint64("role_id", roleID),
		zap.String("path", c.Request.URL.Path),
		zap.Any("details", details),
	)
	abort(c, http.StatusForbidden, dto.ErrCodeForbidden, "Insufficient privileges", details)
}
