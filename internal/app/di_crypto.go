package app

import (
	"fmt"

	"github.com/allisson/sealed/internal/config"
	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	cryptoService "github.com/allisson/sealed/internal/crypto/service"
	"github.com/allisson/sealed/internal/http"
)

// EnvelopeEngine returns the envelope encryption engine.
func (c *Container) EnvelopeEngine() cryptoService.EnvelopeEngine {
	c.envelopeEngineInit.Do(func() {
		c.envelopeEngine = cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager())
	})
	return c.envelopeEngine
}

// KeyWrapper returns the KMS key wrapper selected by KMS_PROVIDER, decorated
// with unwrap retries and metrics.
func (c *Container) KeyWrapper() (cryptoService.KeyWrapper, error) {
	err := c.lazy(&c.keyWrapperInit, "keyWrapper", func() (err error) {
		c.keyWrapper, err = c.initKeyWrapper()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.keyWrapper, nil
}

// KMSReadiness returns a readiness probe for the KMS, or nil when the
// provider offers no cheap health endpoint.
func (c *Container) KMSReadiness() (http.ReadinessCheck, error) {
	if _, err := c.KeyWrapper(); err != nil {
		return nil, err
	}
	if c.vaultWrapper == nil {
		return nil, nil
	}
	return c.vaultWrapper.Ping, nil
}

// DEKAlgorithm returns the configured AEAD for new secrets.
func (c *Container) DEKAlgorithm() (cryptoDomain.Algorithm, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.DEKAlgorithm)
	if err != nil {
		return "", fmt.Errorf("invalid DEK_ALGORITHM: %w", err)
	}
	return algorithm, nil
}

// initKeyWrapper builds the base wrapper for the provider and layers the decorators.
func (c *Container) initKeyWrapper() (cryptoService.KeyWrapper, error) {
	var base cryptoService.KeyWrapper

	switch c.config.KMSProvider {
	case config.KMSProviderVaultTransit:
		wrapper, err := cryptoService.NewVaultTransitWrapper(cryptoService.VaultTransitConfig{
			Address: c.config.VaultAddr,
			Token:   c.config.VaultToken,
			KeyName: c.config.KMSKeyName,
			Timeout: c.config.KMSTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create vault transit wrapper: %w", err)
		}
		c.vaultWrapper = wrapper
		base = wrapper
	case config.KMSProviderKeeper:
		keeper, err := cryptoService.NewKMSService().OpenKeeper(c.ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		wrapper, err := cryptoService.NewKeeperWrapper(keeper, c.config.KMSKeyName, c.config.KMSKeyVersion)
		if err != nil {
			_ = keeper.Close()
			return nil, fmt.Errorf("failed to create keeper wrapper: %w", err)
		}
		c.keeperWrapper = wrapper
		base = wrapper
	default:
		return nil, fmt.Errorf("unsupported KMS provider: %q", c.config.KMSProvider)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key wrapper: %w", err)
	}

	retries := c.config.KMSUnwrapMaxRetries
	if retries < 0 {
		retries = 0
	}
	retrying := cryptoService.NewRetryingKeyWrapper(
		base,
		uint64(retries),
		c.config.KMSUnwrapRetryInterval,
		c.Logger(),
	)

	return cryptoService.NewKeyWrapperWithMetrics(retrying, businessMetrics), nil
}
