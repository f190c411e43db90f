// Package config loads bgparchive's configuration from a YAML file
// overlaid with environment variables, following the same koanf
// layering the ingestion tooling this codec grew out of uses.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

type Config struct {
	Service ServiceConfig `koanf:"service"`
	Archive ArchiveConfig `koanf:"archive"`
	Session SessionConfig `koanf:"session"`
	Store   StoreConfig   `koanf:"store"`
	Publish PublishConfig `koanf:"publish"`
}

type ServiceConfig struct {
	InstanceID             string `koanf:"instance_id"`
	HTTPListen             string `koanf:"http_listen"`
	LogLevel               string `koanf:"log_level"`
	ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds"`
}

// ArchiveConfig describes the archive this run decodes: a path to a file
// of concatenated BGP messages (optionally OpenBMP-framed, optionally
// zstd-compressed), or "-" for stdin.
type ArchiveConfig struct {
	Path            string `koanf:"path"`
	OpenBMPFramed   bool   `koanf:"openbmp_framed"`
	ZstdCompressed  bool   `koanf:"zstd_compressed"`
	MaxPayloadBytes int    `koanf:"max_payload_bytes"`
}

// SessionConfig mirrors one side's negotiated BGP session capabilities,
// needed to resolve ADD-PATH/AS_PATH-width ambiguity while decoding
// archived UPDATE bodies (see bgp.Capabilities).
type SessionConfig struct {
	FourByteASN  bool     `koanf:"four_byte_asn"`
	AddPathAFIs  []string `koanf:"add_path_afis"` // e.g. "ipv4/unicast"
}

type StoreConfig struct {
	Enabled  bool   `koanf:"enabled"`
	DSN      string `koanf:"dsn"`
	MaxConns int32  `koanf:"max_conns"`
	MinConns int32  `koanf:"min_conns"`
}

type PublishConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Brokers  []string      `koanf:"brokers"`
	Topic    string        `koanf:"topic"`
	ClientID string        `koanf:"client_id"`
	TLS      TLSConfig     `koanf:"tls"`
	SASL     SASLConfig    `koanf:"sasl"`
}

type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CAFile   string `koanf:"ca_file"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

type SASLConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Mechanism string `koanf:"mechanism"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
}

// Load reads path (if non-empty) as YAML, then overlays
// BGPARCHIVE_-prefixed environment variables (double underscore maps to
// a dotted path, e.g. BGPARCHIVE_STORE__DSN -> store.dsn).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("BGPARCHIVE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "BGPARCHIVE_")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env config: %w", err)
	}

	cfg := &Config{
		Service: ServiceConfig{
			InstanceID:             "bgparchive-1",
			HTTPListen:             ":8080",
			LogLevel:               "info",
			ShutdownTimeoutSeconds: 30,
		},
		Archive: ArchiveConfig{
			Path:            "-",
			MaxPayloadBytes: 4096,
		},
		Store: StoreConfig{
			MaxConns: 10,
			MinConns: 1,
		},
		Publish: PublishConfig{
			ClientID: "bgparchive",
			Topic:    "bgp-events",
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(cfg.Publish.Brokers) == 1 && strings.Contains(cfg.Publish.Brokers[0], ",") {
		cfg.Publish.Brokers = strings.Split(cfg.Publish.Brokers[0], ",")
	}
	if len(cfg.Session.AddPathAFIs) == 1 && strings.Contains(cfg.Session.AddPathAFIs[0], ",") {
		cfg.Session.AddPathAFIs = strings.Split(cfg.Session.AddPathAFIs[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Archive.Path == "" {
		return fmt.Errorf("config: archive.path is required")
	}
	if c.Archive.MaxPayloadBytes <= 0 {
		return fmt.Errorf("config: archive.max_payload_bytes must be > 0 (got %d)", c.Archive.MaxPayloadBytes)
	}
	if c.Service.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("config: service.shutdown_timeout_seconds must be > 0 (got %d)", c.Service.ShutdownTimeoutSeconds)
	}
	if c.Store.Enabled {
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required when store.enabled")
		}
		if c.Store.MaxConns <= 0 {
			return fmt.Errorf("config: store.max_conns must be > 0 (got %d)", c.Store.MaxConns)
		}
		if c.Store.MinConns < 0 {
			return fmt.Errorf("config: store.min_conns must be >= 0 (got %d)", c.Store.MinConns)
		}
	}
	if c.Publish.Enabled {
		if len(c.Publish.Brokers) == 0 {
			return fmt.Errorf("config: publish.brokers is required when publish.enabled")
		}
		if c.Publish.Topic == "" {
			return fmt.Errorf("config: publish.topic is required when publish.enabled")
		}
	}
	return nil
}

// BuildTLSConfig creates a *tls.Config from the Publish TLS settings.
// Returns nil if TLS is disabled.
func (p *PublishConfig) BuildTLSConfig() (*tls.Config, error) {
	if !p.TLS.Enabled {
		return nil, nil
	}
	tlsCfg := &tls.Config{}
	if p.TLS.CAFile != "" {
		caPEM, err := os.ReadFile(p.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsCfg.RootCAs = pool
	}
	if p.TLS.CertFile != "" && p.TLS.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(p.TLS.CertFile, p.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return tlsCfg, nil
}

// BuildSASLMechanism creates a SASL mechanism from the Publish SASL
// settings. Returns nil if SASL is disabled.
func (p *PublishConfig) BuildSASLMechanism() sasl.Mechanism {
	if !p.SASL.Enabled {
		return nil
	}
	switch strings.ToUpper(p.SASL.Mechanism) {
	case "PLAIN":
		return plain.Auth{User: p.SASL.Username, Pass: p.SASL.Password}.AsMechanism()
	default:
		return nil
	}
}
