package models

import apperr "payment-service/errors"

// TenantContext carries the tenant scope extracted by the auth middleware.
// Core operations take it as an explicit parameter; there is no ambient
// per-request state.
type TenantContext struct {
	OrganizationID string
	BranchID       string
	UserID         string
}

// Validate fails fast when the tenant scope is incomplete.
func (t TenantContext) Validate() error {
	if t.OrganizationID == "" || t.BranchID == "" {
		return apperr.ErrMissingTenant
	}
	return nil
}
