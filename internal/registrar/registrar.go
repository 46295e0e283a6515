// Package registrar registers benchmarking machines: it validates the name,
// issues a keypair, stores the machine and renders its upload script.
package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"venchmarks/internal/credential"
	"venchmarks/internal/models"
	"venchmarks/internal/repository"
	"venchmarks/internal/signer"
	"venchmarks/internal/venchup"
)

var (
	ErrInvalidName     = errors.New("invalid machine name")
	ErrDuplicateName   = errors.New("a machine with that name already exists")
	ErrUnauthenticated = errors.New("login required")
	ErrInvalidHardware = errors.New("hardware description must be a JSON object")
)

const (
	maxNameLen       = 64
	maxHardwareBytes = 64 << 10
)

// A leading letter, then at least two dash-separated groups, every group
// after the first at least three characters long: myproject-mymachine,
// v8-whatever.
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*(?:-[a-zA-Z0-9]{3,})+$`)

func ValidateName(name string) error {
	if len(name) > maxNameLen || !namePattern.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

type MachineStore interface {
	CreateMachine(ctx context.Context, m *models.Machine) error
}

type KeyGenerator interface {
	Generate(comment string) (*credential.KeyPair, error)
}

type Options struct {
	Digest    signer.Digest
	UploadURL string
	Logger    *slog.Logger
}

type Registrar struct {
	store     MachineStore
	keys      KeyGenerator
	digest    signer.Digest
	uploadURL string
	logger    *slog.Logger
	now       func() time.Time
}

func New(store MachineStore, keys KeyGenerator, opts Options) *Registrar {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	digest := opts.Digest
	if digest == "" {
		digest = signer.DefaultDigest
	}
	return &Registrar{
		store:     store,
		keys:      keys,
		digest:    digest,
		uploadURL: opts.UploadURL,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRequest carries the form input. Hardware is optional and holds
// the JSON printed by `venchup hwinfo` on the machine.
type RegisterRequest struct {
	Name        string
	Description string
	Hardware    string
	Owner       string
}

// Registration is what the owner sees once, right after registering. The
// private key is not shown again.
type Registration struct {
	Machine    models.Machine
	EscapedKey string
	Script     string
}

func (r *Registrar) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	name := strings.TrimSpace(req.Name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if req.Owner == "" {
		return nil, ErrUnauthenticated
	}
	hw, err := ParseHardware(req.Hardware)
	if err != nil {
		return nil, err
	}

	kp, err := r.keys.Generate(name)
	if err != nil {
		return nil, fmt.Errorf("issue key for %s: %w", name, err)
	}

	m := models.Machine{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		PrivateKey:  kp.PrivatePEM,
		PublicKey:   kp.PublicKey,
		Digest:      string(r.digest),
		Hardware:    hw,
		Owner:       req.Owner,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.store.CreateMachine(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("store machine %s: %w", name, err)
	}

	escaped := credential.Escape(kp.PrivatePEM)
	script, err := venchup.RenderString(r.ScriptParams(name, escaped, r.digest))
	if err != nil {
		return nil, fmt.Errorf("render script for %s: %w", name, err)
	}

	r.logger.Info("machine registered",
		"machine", m.Name,
		"id", m.ID,
		"owner", m.Owner,
		"algorithm", string(kp.Algorithm),
		"digest", m.Digest,
		"fingerprint", credential.Fingerprint(kp.PublicKey),
	)

	return &Registration{Machine: m, EscapedKey: escaped, Script: script}, nil
}

// ScriptParams returns the template parameters for a machine's upload script.
// An empty digest means the one new machines are issued with.
func (r *Registrar) ScriptParams(machine, escapedKey string, digest signer.Digest) venchup.Params {
	if digest == "" {
		digest = r.digest
	}
	return venchup.Params{
		MachineName: machine,
		PrivateKey:  escapedKey,
		Digest:      digest,
		UploadURL:   r.uploadURL,
	}
}

// ParseHardware decodes the optional hardware description. Blank input
// yields nil.
func ParseHardware(raw string) (models.Hardware, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if len(raw) > maxHardwareBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidHardware, maxHardwareBytes)
	}
	var hw models.Hardware
	if err := json.Unmarshal([]byte(raw), &hw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHardware, err)
	}
	if hw == nil {
		return nil, ErrInvalidHardware
	}
	return hw, nil
}
