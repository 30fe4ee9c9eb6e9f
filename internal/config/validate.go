package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateWorker() error {
	if strings.ContainsAny(c.Worker.Binary, " \t") && !strings.Contains(c.Worker.Binary, "/") {
		return fmt.Errorf("worker.binary %q must be a single executable name or path", c.Worker.Binary)
	}
	if c.Worker.KillGraceSeconds < 0 || c.Worker.KillGraceSeconds > maxKillGraceSeconds {
		return fmt.Errorf("worker.kill_grace_seconds must be between 0 and %d", maxKillGraceSeconds)
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.MaxParallel < 0 || c.Queue.MaxParallel > maxParallelUpperBound {
		return fmt.Errorf("queue.max_parallel must be between 0 and %d", maxParallelUpperBound)
	}
	if c.Queue.SignalBuffer > maxSignalBuffer {
		return fmt.Errorf("queue.signal_buffer must not exceed %d", maxSignalBuffer)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if !c.Catalog.Enabled {
		return nil
	}
	if len(c.Catalog.Storefront) != storefrontLength {
		return fmt.Errorf("catalog.storefront %q must be a two-letter country code", c.Catalog.Storefront)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"catalog.base_url", c.Catalog.BaseURL},
		{"catalog.web_url", c.Catalog.WebURL},
	} {
		parsed, err := url.Parse(field.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s %q must be an absolute URL", field.name, field.value)
		}
	}
	if c.Catalog.TimeoutSeconds <= 0 || c.Catalog.TimeoutSeconds > maxCatalogTimeoutSeconds {
		return fmt.Errorf("catalog.timeout_seconds must be between 1 and %d", maxCatalogTimeoutSeconds)
	}
	if c.Catalog.Retries < 0 || c.Catalog.Retries > maxCatalogRetries {
		return fmt.Errorf("catalog.retries must be between 0 and %d", maxCatalogRetries)
	}
	if c.Catalog.ArtworkSize > maxArtworkSize {
		return fmt.Errorf("catalog.artwork_size must not exceed %d", maxArtworkSize)
	}
	if c.Catalog.CacheTTLHours < 0 {
		return errors.New("catalog.cache_ttl_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
