package homepage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Deployment profiles. Development runs against a local SQLite file unless
// DATABASE_URL says otherwise; production requires DATABASE_URL.
const (
	ProfileDevelopment = "development"
	ProfileProduction  = "production"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "Home")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Profile string `validate:"oneof=development production"`
	Addr    string // Listen address (default ":3000")
	Root    string // Application root containing public/ (default ".")

	// DatabaseURL is a postgres:// URL or a SQLite path / file: DSN.
	DatabaseURL string `validate:"required_if=Profile production"`

	SessionSecret string `validate:"required_if=Profile production"`
	CookieSecure  bool   // Set true for HTTPS

	RequestTimeout time.Duration `validate:"gte=0"` // Per-request deadline for blog routes (default 10s)
	LookupLimit    int           `validate:"gte=0"` // Post lookups per IP per minute (default 120)
	HighlightStyle string        // chroma style for code blocks (default "github")
}

// defaultDatabaseURL mirrors the local "personal_website" database used in
// development.
const defaultDatabaseURL = "data/personal_website.db"

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Home"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Profile == "" {
		c.Profile = ProfileDevelopment
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Root == "" {
		c.Root = "."
	}
	if c.Profile == ProfileDevelopment {
		if c.DatabaseURL == "" {
			c.DatabaseURL = defaultDatabaseURL
		}
		if c.SessionSecret == "" {
			c.SessionSecret = randomSecret()
		}
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.LookupLimit == 0 {
		c.LookupLimit = 120
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = "github"
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *SiteConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("homepage: invalid config: %w", err)
	}
	return nil
}

// IsProduction reports whether the production profile is selected.
func (c SiteConfig) IsProduction() bool {
	return c.Profile == ProfileProduction
}

// ConfigFromEnv builds a SiteConfig from environment variables. Unset
// variables are left empty so New can apply defaults.
func ConfigFromEnv() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:           os.Getenv("SITE_NAME"),
		URL:            os.Getenv("SITE_URL"),
		Description:    os.Getenv("SITE_DESCRIPTION"),
		Author:         os.Getenv("SITE_AUTHOR"),
		Profile:        strings.ToLower(os.Getenv("APP_ENV")),
		Addr:           os.Getenv("ADDR"),
		Root:           os.Getenv("APP_ROOT"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		CookieSecure:   strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
		HighlightStyle: os.Getenv("HIGHLIGHT_STYLE"),
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("homepage: REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("LOOKUP_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("homepage: LOOKUP_LIMIT: %w", err)
		}
		cfg.LookupLimit = n
	}
	return cfg, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("homepage: generate session secret: %v", err))
	}
	return hex.EncodeToString(b)
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "<Root>/public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore makes the App use an already opened Store instead of opening
// one from DatabaseURL. The App closes it on Close.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
