package auth

import (
	"github.com/jcmexdev/marketplace/internal/pkg/config"
	"github.com/jcmexdev/marketplace/internal/tenant"
)

// NewChainFromConfig verifies tokens remotely when AUTH_SERVICE_URL is set
// and in process against users otherwise. User tokens must carry TENANT_ID,
// admin tokens ADMIN_TENANT_ID.
func NewChainFromConfig(cfg config.Config, users UserDirectory, tenants tenant.Resolver) *Chain {
	if cfg.AuthServiceURL != "" {
		return NewChain(
			NewRemoteVerifier(cfg.AuthServiceURL, "/api/auth/v1/verify-token", cfg.TenantID, cfg.UpstreamTimeout),
			NewRemoteVerifier(cfg.AuthServiceURL, "/api/auth/v1/verify-admin-token", cfg.AdminTenant(), cfg.UpstreamTimeout),
			tenants,
		)
	}
	return NewChain(
		NewJWTVerifier(cfg.JWTSecret, RoleUser, cfg.TenantID, users),
		NewJWTVerifier(cfg.AdminJWTSecret, RoleAdmin, cfg.AdminTenant(), users),
		tenants,
	)
}
