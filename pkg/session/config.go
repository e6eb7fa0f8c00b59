package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultClientID is the well-known public client id for Dataverse
// applications.
const DefaultClientID = "51f81489-12ee-4a9e-aaae-a2591f45987d"

// Config holds the connection settings for a Dataverse organization.
type Config struct {
	// TenantID is the directory the organization lives in.
	TenantID string `mapstructure:"tenant_id"`

	// ResourceURL is the organization root, e.g. https://org.crm.dynamics.com.
	ResourceURL string `mapstructure:"resource_url"`

	// ClientID identifies the application to the token issuer.
	ClientID string `mapstructure:"client_id"`

	// Scopes requested for the bearer token. Defaults to
	// "<ResourceURL>/.default".
	Scopes []string `mapstructure:"scopes"`

	// FetchRelationships controls whether the metadata fetch expands the
	// relationship lists. Expensive, so off by default.
	FetchRelationships bool `mapstructure:"fetch_relationships"`

	// MetadataSnapshotPath, when set, caches the metadata snapshot on disk.
	MetadataSnapshotPath string `mapstructure:"metadata_snapshot_path"`

	// HTTPTimeout bounds each Web API call.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ClientID:    DefaultClientID,
		HTTPTimeout: 60 * time.Second,
	}
}

// LoadConfig reads configuration from the named file, with DATAVERSE_*
// environment variables taking precedence over file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("dataverse")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("client_id", DefaultClientID)
	v.SetDefault("http_timeout", "60s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every connection needs.
func (c *Config) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("config: tenant_id is required")
	}
	if c.ResourceURL == "" {
		return fmt.Errorf("config: resource_url is required")
	}
	return nil
}

// AuthorityURL returns the token issuer endpoint for the tenant.
func (c *Config) AuthorityURL() string {
	return "https://login.microsoftonline.com/" + c.TenantID
}

// EffectiveScopes returns the configured scopes or the resource default.
func (c *Config) EffectiveScopes() []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	return []string{strings.TrimRight(c.ResourceURL, "/") + "/.default"}
}
