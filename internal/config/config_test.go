package config

import (
	"os"
	"path/filepath"
	"testing"

	"venchmarks/internal/credential"
	"venchmarks/internal/signer"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"DATABASE_URL": "sqlite:vench.db"}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %s", cfg.Addr)
	}
	if cfg.UploadURL() != "http://localhost:8080/upload" {
		t.Errorf("UploadURL = %s", cfg.UploadURL())
	}
	if cfg.KeyAlgorithm != credential.Ed25519 || cfg.Digest != signer.SHA256 {
		t.Errorf("KeyAlgorithm/Digest = %s/%s", cfg.KeyAlgorithm, cfg.Digest)
	}
	if cfg.AuthHeader != "X-Forwarded-Email" {
		t.Errorf("AuthHeader = %s", cfg.AuthHeader)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":  "postgres://localhost/vench",
		"BASE_URL":      "https://vench.example.com/",
		"KEY_ALGORITHM": "rsa",
		"RSA_BITS":      "4096",
		"HMAC_DIGEST":   "sha1",
	}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.UploadURL() != "https://vench.example.com/upload" {
		t.Errorf("UploadURL = %s", cfg.UploadURL())
	}
	if cfg.KeyAlgorithm != credential.RSA || cfg.RSABits != 4096 || cfg.Digest != signer.SHA1 {
		t.Errorf("got %+v", cfg)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"NoDatabase":  {},
		"WeakRSA":     {"DATABASE_URL": "x.db", "RSA_BITS": "256"},
		"BadRSABits":  {"DATABASE_URL": "x.db", "RSA_BITS": "lots"},
		"BadDigest":   {"DATABASE_URL": "x.db", "HMAC_DIGEST": "md5"},
		"BadKeyAlgor": {"DATABASE_URL": "x.db", "KEY_ALGORITHM": "dsa"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromEnv(envMap(env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=sqlite:from-dotenv.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	cfg, loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded {
		t.Error("Load did not report the .env file")
	}
	if cfg.DatabaseURL != "sqlite:from-dotenv.db" {
		t.Errorf("DatabaseURL = %s", cfg.DatabaseURL)
	}
}

func TestLoadMissingDotenv(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:env.db")

	cfg, loaded, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded {
		t.Error("Load reported a missing file as loaded")
	}
	if cfg.DatabaseURL != "sqlite:env.db" {
		t.Errorf("DatabaseURL = %s", cfg.DatabaseURL)
	}
}
