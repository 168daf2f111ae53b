package app

import (
	"fmt"

	secretsHTTP "github.com/allisson/sealed/internal/secrets/http"
	secretsRepository "github.com/allisson/sealed/internal/secrets/repository"
	secretsUsecase "github.com/allisson/sealed/internal/secrets/usecase"
)

// SecretRepository returns the secret repository based on database driver.
func (c *Container) SecretRepository() (secretsUsecase.SecretRepository, error) {
	err := c.lazy(&c.secretRepoInit, "secretRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for secret repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.secretRepo = secretsRepository.NewPostgreSQLSecretRepository(db)
		case "mysql":
			c.secretRepo = secretsRepository.NewMySQLSecretRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.secretRepo, nil
}

// SecretUseCase returns the secret use case decorated with metrics and auditing.
func (c *Container) SecretUseCase() (secretsUsecase.SecretUseCase, error) {
	err := c.lazy(&c.secretUseCaseInit, "secretUseCase", func() (err error) {
		c.secretUseCase, err = c.initSecretUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.secretUseCase, nil
}

// SecretHandler returns the HTTP handler for secret operations.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	err := c.lazy(&c.secretHandlerInit, "secretHandler", func() error {
		useCase, err := c.SecretUseCase()
		if err != nil {
			return fmt.Errorf("failed to get secret use case for secret handler: %w", err)
		}
		c.secretHandler = secretsHTTP.NewSecretHandler(useCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.secretHandler, nil
}

func (c *Container) initSecretUseCase() (secretsUsecase.SecretUseCase, error) {
	algorithm, err := c.DEKAlgorithm()
	if err != nil {
		return nil, err
	}

	secretRepo, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository: %w", err)
	}

	keyWrapper, err := c.KeyWrapper()
	if err != nil {
		return nil, fmt.Errorf("failed to get key wrapper: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case: %w", err)
	}

	useCase := secretsUsecase.NewSecretUseCase(secretRepo, c.EnvelopeEngine(), keyWrapper, secretsUsecase.Config{
		Algorithm:     algorithm,
		MaxSecretSize: c.config.MaxSecretSizeBytes,
		KMSTimeout:    c.config.KMSTimeout,
		DBTimeout:     c.config.DBQueryTimeout,
	})
	useCase = secretsUsecase.NewSecretUseCaseWithMetrics(useCase, businessMetrics)
	return secretsUsecase.NewSecretUseCaseWithAudit(useCase, auditLogUseCase, c.Logger()), nil
}
