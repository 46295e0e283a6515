// Package signer implements the upload signing protocol shared by the
// generated venchup.py script, the venchup command and the server.
//
// A machine signs a JSON payload with HMAC keyed by its private key text and
// submits the form {machine, hexmac, payload}. The server recomputes the MAC
// with the key it stored at registration.
package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"net/url"
	"strings"
)

// Form field names.
const (
	FieldMachine = "machine"
	FieldHexMAC  = "hexmac"
	FieldPayload = "payload"
)

// Digest names a hash function. The names match Python's hashlib.
type Digest string

const (
	SHA1   Digest = "sha1" // legacy scripts only
	SHA256 Digest = "sha256"
	SHA512 Digest = "sha512"
)

const DefaultDigest = SHA256

func ParseDigest(s string) (Digest, error) {
	switch d := Digest(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DefaultDigest, nil
	case SHA1, SHA256, SHA512:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported digest %q", s)
	}
}

func (d Digest) hash() (func() hash.Hash, error) {
	switch d {
	case SHA1:
		return sha1.New, nil
	case SHA256, "":
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	}
	return nil, fmt.Errorf("unsupported digest %q", string(d))
}

// MAC returns the lower-case hex HMAC of payload under key.
func MAC(payload, key []byte, d Digest) (string, error) {
	h, err := d.hash()
	if err != nil {
		return "", err
	}
	mac := hmac.New(h, key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether form carries a valid MAC of its payload under key.
func Verify(form url.Values, key []byte, d Digest) bool {
	h, err := d.hash()
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(form.Get(FieldHexMAC))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(h, key)
	mac.Write([]byte(form.Get(FieldPayload)))
	return hmac.Equal(got, mac.Sum(nil))
}

// Signer signs payloads for one machine.
type Signer struct {
	Machine string
	Key     []byte
	Digest  Digest
}

func New(machine string, key []byte, d Digest) (*Signer, error) {
	if machine == "" {
		return nil, fmt.Errorf("signer: machine name is required")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("signer: private key is required")
	}
	if _, err := d.hash(); err != nil {
		return nil, err
	}
	return &Signer{Machine: machine, Key: key, Digest: d}, nil
}

func (s *Signer) Form(payload []byte) (url.Values, error) {
	mac, err := MAC(payload, s.Key, s.Digest)
	if err != nil {
		return nil, err
	}
	return url.Values{
		FieldMachine: {s.Machine},
		FieldHexMAC:  {mac},
		FieldPayload: {string(payload)},
	}, nil
}

// Sign returns the form-encoded submission for payload.
func (s *Signer) Sign(payload []byte) (string, error) {
	form, err := s.Form(payload)
	if err != nil {
		return "", err
	}
	return form.Encode(), nil
}
