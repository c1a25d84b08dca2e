package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/stockledger/backend/internal/application/identity"
	"github.com/stockledger/backend/internal/domain/identity"
)

// RoleHandler serves role privilege administration
type RoleHandler struct {
	BaseHandler
	privileges *appidentity.PrivilegeService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(privileges *appidentity.PrivilegeService) *RoleHandler {
	return &RoleHandler{privileges: privileges}
}

// PrivilegeRequest grants actions on one module
type PrivilegeRequest struct {
	Module      string `json:"module" binding:"required,max=100" example:"Inventory Outward"`
	ModuleGroup string `json:"module_group" binding:"max=100" example:"Inventory"`
	SortOrder   int    `json:"sort_order"`
	CanView     bool   `json:"can_view"`
	CanAdd      bool   `json:"can_add"`
	CanEdit     bool   `json:"can_edit"`
	CanDelete   bool   `json:"can_delete"`
}

// ReplacePrivilegesRequest is the full privilege set of a role
type ReplacePrivilegesRequest struct {
	Privileges []PrivilegeRequest `json:"privileges" binding:"dive"`
}

// ReplacePrivilegesResponse echoes the stored privilege set
type ReplacePrivilegesResponse struct {
	RoleID     uint64             `json:"role_id"`
	Privileges []PrivilegeRequest `json:"privileges"`
}

// ReplacePrivileges godoc
// @ID           replaceRolePrivileges
// @Summary      Replace a role's module privileges
// @Description  Administrators only. Cached privileges of the role are dropped on every instance.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id      path int                      true "Role ID"
// @Param        request body ReplacePrivilegesRequest true "Privileges"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /roles/{id}/privileges [put]
func (h *RoleHandler) ReplacePrivileges(c *gin.Context) {
	roleID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ReplacePrivilegesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	privs := make([]identity.RolePrivilege, len(req.Privileges))
	for i, p := range req.Privileges {
		privs[i] = identity.RolePrivilege{
			RoleID:      roleID,
			Module:      p.Module,
			ModuleGroup: p.ModuleGroup,
			SortOrder:   p.SortOrder,
			CanView:     p.CanView,
			CanAdd:      p.CanAdd,
			CanEdit:     p.CanEdit,
			CanDelete:   p.CanDelete,
		}
	}
	if err := h.privileges.ReplacePrivileges(c.Request.Context(), roleID, privs); err != nil {
		h.HandleError(c, err)
		return
	}
	if req.Privileges == nil {
		req.Privileges = []PrivilegeRequest{}
	}
	h.Success(c, ReplacePrivilegesResponse{RoleID: roleID, Privileges: req.Privileges})
}
