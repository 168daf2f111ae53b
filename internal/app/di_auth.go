package app

import (
	"fmt"

	authRepository "github.com/allisson/sealed/internal/auth/repository"
	authService "github.com/allisson/sealed/internal/auth/service"
	authUsecase "github.com/allisson/sealed/internal/auth/usecase"
)

// KeySet returns the JWKS-backed key set used to verify bearer tokens.
func (c *Container) KeySet() authService.KeySet {
	c.keySetInit.Do(func() {
		c.keySet = authService.NewRemoteKeySet(
			c.config.AuthJWKSURL,
			c.config.AuthJWKSFetchTimeout,
			c.Logger(),
		).WithMinRefreshInterval(c.config.AuthJWKSMinRefreshInterval)
	})
	return c.keySet
}

// TokenVerifier returns the bearer token verifier.
func (c *Container) TokenVerifier() (authService.TokenVerifier, error) {
	err := c.lazy(&c.tokenVerifierInit, "tokenVerifier", func() error {
		if c.config.AuthJWKSURL == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required")
		}
		c.tokenVerifier = authService.NewJWTVerifier(c.KeySet(), authService.JWTVerifierConfig{
			Issuer:   c.config.AuthIssuer,
			Audience: c.config.AuthAudience,
			Leeway:   c.config.AuthClockSkew,
		}, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenVerifier, nil
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (authUsecase.AuditLogRepository, error) {
	err := c.lazy(&c.auditLogRepoInit, "auditLogRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for audit log repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.auditLogRepo = authRepository.NewPostgreSQLAuditLogRepository(db)
		case "mysql":
			c.auditLogRepo = authRepository.NewMySQLAuditLogRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogRepo, nil
}

// AuditLogUseCase returns the audit log use case wrapped with metrics.
func (c *Container) AuditLogUseCase() (authUsecase.AuditLogUseCase, error) {
	err := c.lazy(&c.auditLogUseCaseInit, "auditLogUseCase", func() error {
		repo, err := c.AuditLogRepository()
		if err != nil {
			return fmt.Errorf("failed to get audit log repository: %w", err)
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		c.auditLogUseCase = authUsecase.NewAuditLogUseCaseWithMetrics(
			authUsecase.NewAuditLogUseCase(repo),
			businessMetrics,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogUseCase, nil
}
