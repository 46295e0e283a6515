// Package config reads server settings from the environment, after loading a
// .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"venchmarks/internal/credential"
	"venchmarks/internal/signer"
)

type Config struct {
	DatabaseURL string
	Addr        string
	BaseURL     string

	KeyAlgorithm credential.Algorithm
	RSABits      int
	Digest       signer.Digest

	// AuthHeader carries the user id set by the authenticating proxy.
	AuthHeader string
	LoginURL   string
	// DevUser, when set, is used as the identity of every request.
	DevUser string

	GinMode string
}

// UploadURL is where generated scripts submit results.
func (c *Config) UploadURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/upload"
}

// Load reads files (default ".env") into the environment and then parses
// it. A missing .env file is not an error; dotenvLoaded reports whether one
// was read.
func Load(files ...string) (cfg *Config, dotenvLoaded bool, err error) {
	err = godotenv.Load(files...)
	switch {
	case err == nil:
		dotenvLoaded = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, fmt.Errorf("load env file: %w", err)
	}

	cfg, err = FromEnv(os.Getenv)
	return cfg, dotenvLoaded, err
}

func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		DatabaseURL: get("DATABASE_URL", ""),
		Addr:        get("ADDR", ":8080"),
		AuthHeader:  get("AUTH_HEADER", "X-Forwarded-Email"),
		LoginURL:    get("LOGIN_URL", "/oauth2/start"),
		DevUser:     get("VENCH_DEV_USER", ""),
		GinMode:     get("GIN_MODE", "release"),
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	cfg.BaseURL = get("BASE_URL", defaultBaseURL(cfg.Addr))

	var err error
	if cfg.KeyAlgorithm, err = credential.ParseAlgorithm(get("KEY_ALGORITHM", "")); err != nil {
		return nil, err
	}
	if cfg.Digest, err = signer.ParseDigest(get("HMAC_DIGEST", "")); err != nil {
		return nil, err
	}

	bits := get("RSA_BITS", strconv.Itoa(credential.DefaultRSABits))
	if cfg.RSABits, err = strconv.Atoi(bits); err != nil {
		return nil, fmt.Errorf("RSA_BITS: %w", err)
	}
	if cfg.RSABits < credential.MinRSABits {
		return nil, fmt.Errorf("RSA_BITS %d is below the minimum of %d", cfg.RSABits, credential.MinRSABits)
	}

	return cfg, nil
}

func defaultBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
