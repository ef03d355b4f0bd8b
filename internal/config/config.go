package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"

	"github.com/queerlil/handles/client"
	"github.com/queerlil/handles/internal/domain"
)

const (
	DefaultService        = "https://at.queerlil.tools"
	DefaultJetstream      = "wss://jetstream2.us-east.bsky.network"
	DefaultChangeEndpoint = "https://cgi.queerlil.tools/bsky-handle.ps1"
	DefaultListingPath    = "/tmp/handles_records.json"
	DefaultDID            = "did:plc:4vrriezpgc4t6y5sf7lcilhv"
	DefaultListen         = ":9090"
)

type Config struct {
	Bot         Bot         `yaml:"bot"`
	Credentials Credentials `yaml:"credentials"`
	Server      Server      `yaml:"server"`
}

type Bot struct {
	domain.Config `yaml:",inline"`

	Service        string    `yaml:"service"`
	Jetstream      string    `yaml:"jetstream"`
	ChangeEndpoint string    `yaml:"changeEndpoint"`
	ListingPath    string    `yaml:"listingPath"`
	Reconnect      Reconnect `yaml:"reconnect"`
}

// Reconnect configures the feed listener's redial policy. Durations are
// Go duration strings ("500ms", "1m").
type Reconnect struct {
	Disabled   bool          `yaml:"disabled"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxElapsed time.Duration `yaml:"maxElapsed"`
}

type Credentials struct {
	Credential string `yaml:"credential"`
	Session    string `yaml:"session"`
	RemoveKey  string `yaml:"removeKey"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	RedisPassword string `yaml:"redisPassword"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	LogLevel      string `yaml:"logLevel"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.DID == "" {
		c.Bot.DID = DefaultDID
	}
	if len(c.Bot.Domains) == 0 {
		c.Bot.Domains = domain.DefaultDomains
	}
	if c.Bot.AllowedPageHost == "" {
		c.Bot.AllowedPageHost = domain.DefaultAllowedPageHost
	}
	if c.Bot.Service == "" {
		c.Bot.Service = DefaultService
	}
	if c.Bot.Jetstream == "" {
		c.Bot.Jetstream = DefaultJetstream
	}
	if c.Bot.ChangeEndpoint == "" {
		c.Bot.ChangeEndpoint = DefaultChangeEndpoint
	}
	if c.Bot.ListingPath == "" {
		c.Bot.ListingPath = DefaultListingPath
	}
	if c.Bot.Reconnect.Initial == 0 {
		c.Bot.Reconnect.Initial = time.Second
	}
	if c.Bot.Reconnect.Max == 0 {
		c.Bot.Reconnect.Max = time.Minute
	}

	if c.Credentials.Credential == "" {
		c.Credentials.Credential = "./credentials/handles.json"
	}
	if c.Credentials.Session == "" {
		c.Credentials.Session = "./credentials/handles.session.json"
	}
	if c.Credentials.RemoveKey == "" {
		c.Credentials.RemoveKey = "./credentials/handles.remove.key"
	}

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
}

func (c Credentials) LoadCredential() (client.Credential, error) {
	data, err := os.ReadFile(c.Credential)
	if err != nil {
		return client.Credential{}, errors.Wrap(err, "failed to read credential")
	}
	var cred client.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return client.Credential{}, errors.Wrap(err, "failed to parse credential")
	}
	return cred, nil
}

// LoadSession returns the saved session. A missing file yields an empty one.
func (c Credentials) LoadSession() (client.AuthInfo, error) {
	data, err := os.ReadFile(c.Session)
	if err != nil {
		if os.IsNotExist(err) {
			return client.AuthInfo{}, nil
		}
		return client.AuthInfo{}, errors.Wrap(err, "failed to read session")
	}
	var auth client.AuthInfo
	if err := json.Unmarshal(data, &auth); err != nil {
		return client.AuthInfo{}, errors.Wrap(err, "failed to parse session")
	}
	return auth, nil
}

func (c Credentials) LoadRemoveKey() (string, error) {
	data, err := os.ReadFile(c.RemoveKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to read remove key")
	}
	return strings.TrimSpace(string(data)), nil
}

// SessionWriter persists refreshed sessions back to the session file.
func (c Credentials) SessionWriter() client.PersistFunc {
	path := c.Session
	return func(ctx context.Context, auth client.AuthInfo) error {
		data, err := json.Marshal(auth)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return errors.Wrap(err, "failed to create session dir")
		}
		return os.WriteFile(path, data, 0o600)
	}
}
