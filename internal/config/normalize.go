package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeWorker(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv(apiTokenEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = value
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeWorker() error {
	var err error
	c.Worker.Binary = strings.TrimSpace(c.Worker.Binary)
	if c.Worker.Binary == "" {
		c.Worker.Binary = defaultWorkerBinary
	}
	if strings.TrimSpace(c.Worker.WorkingDir) == "" {
		c.Worker.WorkingDir = defaultWorkerDir
	}
	if c.Worker.WorkingDir, err = expandPath(c.Worker.WorkingDir); err != nil {
		return fmt.Errorf("worker.working_dir: %w", err)
	}
	if strings.TrimSpace(c.Worker.SettingsPath) != "" {
		if c.Worker.SettingsPath, err = expandPath(c.Worker.SettingsPath); err != nil {
			return fmt.Errorf("worker.settings_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeQueue() {
	if c.Queue.SignalBuffer <= 0 {
		c.Queue.SignalBuffer = defaultSignalBuffer
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Storefront = strings.ToLower(strings.TrimSpace(c.Catalog.Storefront))
	if c.Catalog.Storefront == "" {
		c.Catalog.Storefront = defaultStorefront
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.WebURL = strings.TrimRight(strings.TrimSpace(c.Catalog.WebURL), "/")
	if c.Catalog.WebURL == "" {
		c.Catalog.WebURL = defaultCatalogWebURL
	}
	if c.Catalog.ArtworkSize <= 0 {
		c.Catalog.ArtworkSize = defaultArtworkSize
	}
	if c.Catalog.CacheSize <= 0 {
		c.Catalog.CacheSize = defaultCatalogCacheSize
	}
	if strings.TrimSpace(c.Catalog.CachePath) != "" {
		var err error
		if c.Catalog.CachePath, err = expandPath(c.Catalog.CachePath); err != nil {
			return fmt.Errorf("catalog.cache_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
