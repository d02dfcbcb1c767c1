// internal/config/model.go
//
// Typed configuration model for the resolution service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                 – dotenv values,
//   • `conf/global.yaml`                   – primary static file,
//   • `HL_`-prefixed environment overrides – highest precedence.
//
// A Database.Password beginning with `vault:` is resolved through the
// Vault client before the DSN is assembled, so credentials stay out of
// flat files and git history.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// DSN keeps a single `%s` verb where the password goes, so operators can
// tweak host, port, or flags without touching Vault.  Password is either
// a literal or a `vault:<path>#<key>` reference resolved at load time.
type Database struct {
	DSN         string `koanf:"dsn" validate:"required"`
	Password    string `koanf:"password"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

//
// Resolver section
//

// Resolver carries the deployment defaults of the resolution core.
// DefaultSiteKey may be empty in strictly multi-tenant deployments, in
// which case key-less requests 404.
type Resolver struct {
	DefaultSiteKey  string        `koanf:"default_site_key"`
	DefaultLanguage string        `koanf:"default_language" validate:"required"`
	KeyCacheTTL     time.Duration `koanf:"key_cache_ttl"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.
type Paths struct {
	Root string // HL_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Resolver Resolver `koanf:"resolver"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
