package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// InvalidationBroadcaster tells other instances to drop a role from their
// privilege caches. A role id of 0 means every role.
type InvalidationBroadcaster interface {
	Broadcast(ctx context.Context, roleID uint64) error
}

// PrivilegeService answers module privilege checks from the cache and
// keeps the cache coherent when privileges are replaced.
type PrivilegeService struct {
	roles       identity.RoleRepository
	cache       *PrivilegeCache
	broadcaster InvalidationBroadcaster
	logger      *zap.Logger
	loads       singleflight.Group
}

// NewPrivilegeService creates a PrivilegeService. broadcaster may be nil
// for single-instance deployments.
func NewPrivilegeService(roles identity.RoleRepository, cache *PrivilegeCache, broadcaster InvalidationBroadcaster, logger *zap.Logger) *PrivilegeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrivilegeService{
		roles:       roles,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Access returns a role's privileges, loading them once per expiry
func (s *PrivilegeService) Access(ctx context.Context, roleID uint64) (RoleAccess, error) {
	if access, ok := s.cache.Get(roleID); ok {
		return access, nil
	}

	v, err, _ := s.loads.Do(strconv.FormatUint(roleID, 10), func() (any, error) {
		role, err := s.roles.FindByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		access := RoleAccess{RoleID: role.ID, RoleName: role.RoleName, Admin: role.IsAdmin()}
		if !access.Admin {
			privs, err := s.roles.FindPrivileges(ctx, roleID)
			if err != nil {
				return nil, fmt.Errorf("load privileges: %w", err)
			}
			access.Privileges = identity.NewModulePrivileges(privs)
		}
		s.cache.Put(access)
		return access, nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return RoleAccess{}, shared.ErrForbidden.WithDetail("role_id", roleID)
		}
		return RoleAccess{}, err
	}
	return v.(RoleAccess), nil
}

// Authorize returns nil when the role may perform action on module.
// Administrators are always allowed.
func (s *PrivilegeService) Authorize(ctx context.Context, roleID uint64, module string, action identity.Action) error {
	access, err := s.Access(ctx, roleID)
	if err != nil {
		return err
	}
	if access.Admin {
		return nil
	}
	return access.Privileges.Check(module, action)
}

// IsAdmin reports whether the role bypasses privilege checks
func (s *PrivilegeService) IsAdmin(ctx context.Context, roleID uint64) (bool, error) {
	access, err := s.Access(ctx, roleID)
	if err != nil {
		return false, err
	}
	return access.Admin, nil
}

// ReplacePrivileges swaps a role's privilege set and invalidates its cache
// entry here and, through the broadcaster, on other instances.
func (s *PrivilegeService) ReplacePrivileges(ctx context.Context, roleID uint64, privs []identity.RolePrivilege) error {
	if err := identity.ValidatePrivileges(roleID, privs); err != nil {
		return err
	}
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return err
	}
	if err := s.roles.ReplacePrivileges(ctx, roleID, privs); err != nil {
		return err
	}

	s.cache.Invalidate(roleID)
	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(ctx, roleID); err != nil {
			s.logger.Warn("privilege invalidation broadcast failed",
				zap.Uint64("role_id", roleID),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("role privileges replaced",
		zap.Uint64("role_id", roleID),
		zap.Int("modules", len(privs)),
	)
	return nil
}

// Invalidate drops a role from the local cache; 0 drops every role. It is
// the hook remote invalidations are delivered to.
func (s *PrivilegeService) Invalidate(roleID uint64) {
	if roleID == 0 {
		s.cache.InvalidateAll()
		return
	}
	s.cache.Invalidate(roleID)
}
