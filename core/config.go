package core

import (
	"fmt"
	"net/url"
	"strings"
)

type ProviderConfig struct {
	Region   string `koanf:"region" mapstructure:"region"`
	Endpoint string `koanf:"endpoint" mapstructure:"endpoint"`
	ClientID string `koanf:"client_id" mapstructure:"client_id"`
}

type RecordingConfig struct {
	Disabled bool `koanf:"disabled" mapstructure:"disabled"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Provider    ProviderConfig  `koanf:"provider" mapstructure:"provider"`
	Recording   RecordingConfig `koanf:"recording" mapstructure:"recording"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "verify",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if endpoint := strings.TrimSpace(c.Provider.Endpoint); endpoint != "" {
		parsed, err := url.Parse(endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: provider.endpoint must be an absolute url")
		}
	}
	return nil
}

// ProviderEndpoint resolves the identity provider endpoint, deriving the
// regional default when no explicit endpoint is configured.
func (c Config) ProviderEndpoint() string {
	if endpoint := strings.TrimSpace(c.Provider.Endpoint); endpoint != "" {
		return endpoint
	}
	region := strings.TrimSpace(c.Provider.Region)
	if region == "" {
		return ""
	}
	return "https://cognito-idp." + region + ".amazonaws.com/"
}
