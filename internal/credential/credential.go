// Package credential issues per-machine keypairs and converts the private key
// to and from the single-line form embedded in upload scripts.
package credential

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/ssh"
)

type Algorithm string

const (
	Ed25519 Algorithm = "ed25519"
	RSA     Algorithm = "rsa"
)

const (
	MinRSABits     = 2048
	DefaultRSABits = 3072
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "", Ed25519:
		return Ed25519, nil
	case RSA:
		return RSA, nil
	default:
		return "", fmt.Errorf("unsupported key algorithm %q", s)
	}
}

// KeyPair holds serialized key material. PrivatePEM is an OpenSSH private key
// block and doubles as the machine's HMAC secret.
type KeyPair struct {
	Algorithm  Algorithm
	PrivatePEM string
	PublicKey  string // authorized_keys format, no trailing newline
}

type Generator struct {
	Algorithm Algorithm
	Bits      int       // RSA only; 0 means DefaultRSABits
	Rand      io.Reader // nil means crypto/rand
}

// Generate creates a fresh keypair labelled with comment (the machine name).
func (g Generator) Generate(comment string) (*KeyPair, error) {
	random := g.Rand
	if random == nil {
		random = rand.Reader
	}

	var (
		priv crypto.PrivateKey
		pub  crypto.PublicKey
	)
	switch g.Algorithm {
	case "", Ed25519:
		p, k, err := ed25519.GenerateKey(random)
		if err != nil {
			return nil, fmt.Errorf("generate ed25519 key: %w", err)
		}
		pub, priv = p, k
	case RSA:
		bits := g.Bits
		if bits == 0 {
			bits = DefaultRSABits
		}
		if bits < MinRSABits {
			return nil, fmt.Errorf("rsa key size %d below minimum %d", bits, MinRSABits)
		}
		k, err := rsa.GenerateKey(random, bits)
		if err != nil {
			return nil, fmt.Errorf("generate rsa key: %w", err)
		}
		pub, priv = &k.PublicKey, k
	default:
		return nil, fmt.Errorf("unsupported key algorithm %q", g.Algorithm)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	algorithm := g.Algorithm
	if algorithm == "" {
		algorithm = Ed25519
	}
	return &KeyPair{
		Algorithm:  algorithm,
		PrivatePEM: string(pem.EncodeToMemory(block)),
		PublicKey:  strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))),
	}, nil
}

// Escape replaces line breaks with a literal backslash-n so the key fits on
// one line of a script or a query string.
func Escape(privatePEM string) string {
	s := strings.ReplaceAll(privatePEM, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}

func Unescape(escaped string) string {
	return strings.ReplaceAll(escaped, `\n`, "\n")
}

// Fingerprint returns the SHA256 fingerprint of an authorized_keys line, or
// "" if it does not parse.
func Fingerprint(publicKey string) string {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKey))
	if err != nil {
		return ""
	}
	return ssh.FingerprintSHA256(pub)
}
