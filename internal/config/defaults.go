package config

const (
	defaultConfigPath         = "~/.config/cadence/config.toml"
	defaultLogDir             = "~/.local/share/cadence/logs"
	defaultStateDir           = "~/.local/share/cadence"
	defaultAPIBind            = "127.0.0.1:7487"
	defaultWorkerBinary       = "apple-music-downloader"
	defaultWorkerDir          = "/app"
	defaultKillGraceSeconds   = 10
	defaultMaxParallel        = 3
	defaultSignalBuffer       = 1
	defaultStorefront         = "us"
	defaultCatalogBaseURL     = "https://amp-api.music.apple.com"
	defaultCatalogWebURL      = "https://music.apple.com"
	defaultCatalogTimeout     = 10
	defaultCatalogRetries     = 2
	defaultArtworkSize        = 600
	defaultCatalogCacheSize   = 256
	defaultCatalogCachePath   = "~/.local/share/cadence/catalog.db"
	defaultCatalogCacheTTL    = 72
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	apiTokenEnv               = "CADENCE_API_TOKEN"
	maxParallelUpperBound     = 64
	maxArtworkSize            = 4096
	maxCatalogRetries         = 10
	maxKillGraceSeconds       = 300
	maxCatalogTimeoutSeconds  = 300
	maxSignalBuffer           = 1024
	storefrontLength          = 2
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
			APIBind:  defaultAPIBind,
		},
		Worker: Worker{
			Binary:           defaultWorkerBinary,
			WorkingDir:       defaultWorkerDir,
			KillGraceSeconds: defaultKillGraceSeconds,
		},
		Queue: Queue{
			MaxParallel:  defaultMaxParallel,
			SignalBuffer: defaultSignalBuffer,
		},
		Catalog: Catalog{
			Enabled:        true,
			Storefront:     defaultStorefront,
			BaseURL:        defaultCatalogBaseURL,
			WebURL:         defaultCatalogWebURL,
			TimeoutSeconds: defaultCatalogTimeout,
			Retries:        defaultCatalogRetries,
			ArtworkSize:    defaultArtworkSize,
			CacheSize:      defaultCatalogCacheSize,
			CachePath:      defaultCatalogCachePath,
			CacheTTLHours:  defaultCatalogCacheTTL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
