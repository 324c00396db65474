package config

import "time"

const (
	// DefaultTimeout bounds every outbound request; checks run inside the
	// caller's command and must not hang it.
	DefaultTimeout = 2 * time.Second
	// DefaultTransientTTL is how long resolved metadata stays fresh.
	DefaultTransientTTL = 6 * time.Hour
	// DownloadTimeout applies to zipball downloads only.
	DownloadTimeout = 5 * time.Minute
	// DefaultMaxPackageSize is 256 MiB.
	DefaultMaxPackageSize = 256 << 20
	// DefaultMaxExtractedSize caps the uncompressed size of a package.
	DefaultMaxExtractedSize = 4 * DefaultMaxPackageSize
)

type Config struct {
	Timeout         time.Duration
	DownloadTimeout time.Duration
	TransientTTL    time.Duration
	// ForceRefresh bypasses every transient. Development only.
	ForceRefresh bool
	// MaxPackageSize caps a zipball download, 0 meaning no cap.
	MaxPackageSize int64
	// MaxExtractedSize caps the bytes written while unpacking, 0 meaning no cap.
	MaxExtractedSize int64
}

func baseConfig() Config {
	return Config{
		Timeout:          DefaultTimeout,
		DownloadTimeout:  DownloadTimeout,
		TransientTTL:     DefaultTransientTTL,
		MaxPackageSize:   DefaultMaxPackageSize,
		MaxExtractedSize: DefaultMaxExtractedSize,
	}
}

func DefaultCheckerConfig() Config {
	return baseConfig()
}

func DefaultUpgradeConfig() Config {
	return baseConfig()
}

// WithOverrides applies PLUGUP_* settings on top of c. Zero values keep the
// defaults.
func (c Config) WithOverrides(timeout, ttl time.Duration, force bool) Config {
	if timeout > 0 {
		c.Timeout = timeout
	}
	if ttl > 0 {
		c.TransientTTL = ttl
	}
	c.ForceRefresh = c.ForceRefresh || force
	return c
}
