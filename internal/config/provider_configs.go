package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"sovereign-chat/internal/infrastructure/logger"
)

// OAuthProvider describes a third-party account users can connect.
type OAuthProvider struct {
	Name          string
	AuthorizeURL  string
	TokenURL      string
	ProfileURL    string
	ClientID      string
	ClientSecret  string
	Scopes        []string
	IDField       string
	UsernameField string
}

type oauthProviderDocument struct {
	Providers []oauthProviderEntry `yaml:"providers"`
}

type oauthProviderEntry struct {
	EnableRaw     string   `yaml:"enable"`
	Name          string   `yaml:"name"`
	AuthorizeURL  string   `yaml:"authorize_url"`
	TokenURL      string   `yaml:"token_url"`
	ProfileURL    string   `yaml:"profile_url"`
	ClientID      string   `yaml:"client_id"`
	ClientSecret  string   `yaml:"client_secret"`
	Scopes        []string `yaml:"scopes"`
	IDField       string   `yaml:"id_field"`
	UsernameField string   `yaml:"username_field"`
}

// LoadOAuthProviders parses the yaml provider list at path. Values support
// ${ENV} expansion so secrets stay in the environment.
func LoadOAuthProviders(path string) ([]OAuthProvider, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("oauth provider config path is empty")
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read oauth provider config %q: %w", cleanPath, err)
	}
	log := logger.GetLogger()
	log.Info().Str("path", cleanPath).Msg("loading oauth provider config file")
	return ParseOAuthProviders(data)
}

// ParseOAuthProviders parses provider yaml, skipping entries with enable=false.
func ParseOAuthProviders(data []byte) ([]OAuthProvider, error) {
	log := logger.GetLogger()

	var doc oauthProviderDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse oauth provider config: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Providers))
	result := make([]OAuthProvider, 0, len(doc.Providers))
	for idx, entry := range doc.Providers {
		enabled, err := parseEnabled(entry.EnableRaw)
		if err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", idx, err)
		}
		if !enabled {
			log.Info().Str("name", entry.Name).Msg("skipping oauth provider (enable=false)")
			continue
		}
		provider, err := normalizeOAuthProvider(entry)
		if err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", idx, err)
		}
		if _, dup := seen[provider.Name]; dup {
			return nil, fmt.Errorf("providers[%d]: duplicate provider %q", idx, provider.Name)
		}
		seen[provider.Name] = struct{}{}
		result = append(result, provider)
	}
	return result, nil
}

func normalizeOAuthProvider(entry oauthProviderEntry) (OAuthProvider, error) {
	name := strings.ToLower(strings.TrimSpace(entry.Name))
	if name == "" {
		return OAuthProvider{}, errors.New("provider name is required")
	}

	p := OAuthProvider{
		Name:          name,
		AuthorizeURL:  strings.TrimSpace(os.ExpandEnv(entry.AuthorizeURL)),
		TokenURL:      strings.TrimSpace(os.ExpandEnv(entry.TokenURL)),
		ProfileURL:    strings.TrimSpace(os.ExpandEnv(entry.ProfileURL)),
		ClientID:      strings.TrimSpace(os.ExpandEnv(entry.ClientID)),
		ClientSecret:  strings.TrimSpace(os.ExpandEnv(entry.ClientSecret)),
		Scopes:        entry.Scopes,
		IDField:       firstNonEmpty(entry.IDField, "id"),
		UsernameField: firstNonEmpty(entry.UsernameField, "login"),
	}
	for field, value := range map[string]string{
		"authorize_url": p.AuthorizeURL,
		"token_url":     p.TokenURL,
		"profile_url":   p.ProfileURL,
		"client_id":     p.ClientID,
	} {
		if value == "" {
			return OAuthProvider{}, fmt.Errorf("%s: %s is required", name, field)
		}
	}
	return p, nil
}

func parseEnabled(raw string) (bool, error) {
	value := strings.TrimSpace(os.ExpandEnv(raw))
	if value == "" {
		return true, nil
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid enable value %q", raw)
	}
	return enabled, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// OAuthProviderByName finds a configured provider.
func (c *Config) OAuthProviderByName(name string) (OAuthProvider, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range c.OAuthProviders {
		if p.Name == name {
			return p, true
		}
	}
	return OAuthProvider{}, false
}
