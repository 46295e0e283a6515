// Package ingest verifies signed uploads from registered machines and stores
// the benchmark results they carry.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"venchmarks/internal/models"
	"venchmarks/internal/repository"
	"venchmarks/internal/signer"
)

var (
	ErrMissingParameter = errors.New("must provide machine, hexmac and payload")
	ErrUnknownMachine   = errors.New("unknown machine")
	ErrBadSignature     = errors.New("signature does not match")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownBenchmark = errors.New("unknown benchmark")
)

// MaxPayloadBytes bounds a single upload.
const MaxPayloadBytes = 1 << 20

type Store interface {
	GetMachineByName(ctx context.Context, name string) (*models.Machine, error)
	GetBenchmarkByName(ctx context.Context, name string) (*models.Benchmark, error)
	InsertResults(ctx context.Context, results []models.BenchmarkResult) error
}

// Ingester verifies uploads. digest applies to machines stored without one.
type Ingester struct {
	store  Store
	digest signer.Digest
	logger *slog.Logger
	now    func() time.Time
}

func New(store Store, digest signer.Digest, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	if digest == "" {
		digest = signer.DefaultDigest
	}
	return &Ingester{store: store, digest: digest, logger: logger, now: time.Now}
}

// Result is one uploaded timing series as it appears in the payload.
type Result struct {
	Date            string    `json:"date"`
	Benchmark       string    `json:"benchmark"`
	InName          string    `json:"in_name"`
	OutName         string    `json:"out_name"`
	InKeys          []any     `json:"in_keys"`
	OutValues       []float64 `json:"out_values"`
	CompileMs       *float64  `json:"compile_ms"`
	CompileCommand  string    `json:"compile_command"`
	RunCommand      string    `json:"run_command"`
	FixedParameters string    `json:"fixed_parameters"`
	Mean            *float64  `json:"mean"`
}

// Payload is either a single Result or {"results": [...]}.
type Payload struct {
	Results []Result `json:"results"`
}

// Ingest checks form's signature against the named machine's key and stores
// the results in the payload. Nothing is stored unless every result is valid.
func (in *Ingester) Ingest(ctx context.Context, form url.Values) ([]models.BenchmarkResult, error) {
	machineName := form.Get(signer.FieldMachine)
	payload := form.Get(signer.FieldPayload)
	if machineName == "" || payload == "" || form.Get(signer.FieldHexMAC) == "" {
		return nil, ErrMissingParameter
	}
	if len(payload) > MaxPayloadBytes {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformedPayload, MaxPayloadBytes)
	}

	machine, err := in.store.GetMachineByName(ctx, machineName)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%q: %w", machineName, ErrUnknownMachine)
	}
	if err != nil {
		return nil, err
	}

	// Scripts keep the digest they were issued with, whatever the server
	// default is now.
	digest := in.digest
	if machine.Digest != "" {
		digest = signer.Digest(machine.Digest)
	}
	if !signer.Verify(form, []byte(machine.PrivateKey), digest) {
		in.logger.Warn("upload rejected: bad signature", "machine", machineName, "digest", string(digest))
		return nil, ErrBadSignature
	}

	uploaded, err := DecodePayload([]byte(payload))
	if err != nil {
		return nil, err
	}

	now := in.now().UTC()
	results := make([]models.BenchmarkResult, 0, len(uploaded))
	for i, u := range uploaded {
		res, err := u.toModel(now)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		b, err := in.store.GetBenchmarkByName(ctx, u.Benchmark)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("result %d: %q: %w", i, u.Benchmark, ErrUnknownBenchmark)
		}
		if err != nil {
			return nil, err
		}
		res.BenchmarkID = b.ID
		res.BenchmarkName = b.Name
		res.MachineID = machine.ID
		res.MachineName = machine.Name
		res.Owner = machine.Owner
		results = append(results, res)
	}

	if err := in.store.InsertResults(ctx, results); err != nil {
		return nil, fmt.Errorf("store results: %w", err)
	}

	in.logger.Info("results uploaded", "machine", machine.Name, "count", len(results))
	return results, nil
}

// DecodePayload accepts a single result object or {"results": [...]}.
func DecodePayload(data []byte) ([]Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var results []Result
	if _, ok := fields["results"]; ok {
		var p Payload
		if err := strictUnmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		results = p.Results
	} else {
		var r Result
		if err := strictUnmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		results = []Result{r}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results", ErrMalformedPayload)
	}
	return results, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func (u Result) toModel(now time.Time) (models.BenchmarkResult, error) {
	var res models.BenchmarkResult

	if u.Benchmark == "" || u.InName == "" || u.OutName == "" {
		return res, fmt.Errorf("%w: benchmark, in_name and out_name are required", ErrMalformedPayload)
	}
	if len(u.InKeys) == 0 {
		return res, fmt.Errorf("%w: empty series", ErrMalformedPayload)
	}
	if len(u.InKeys) != len(u.OutValues) {
		return res, fmt.Errorf("%w: %d in_keys but %d out_values", ErrMalformedPayload, len(u.InKeys), len(u.OutValues))
	}

	keys := make(models.StringList, len(u.InKeys))
	for i, k := range u.InKeys {
		switch v := k.(type) {
		case string:
			keys[i] = v
		case float64:
			keys[i] = formatKey(v)
		default:
			return res, fmt.Errorf("%w: in_keys[%d] must be a string or number", ErrMalformedPayload, i)
		}
	}

	date := now
	if u.Date != "" {
		var err error
		date, err = parseDate(u.Date)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}

	mean := Mean(u.OutValues)
	if u.Mean != nil {
		mean = *u.Mean
	}

	return models.BenchmarkResult{
		Date:            date,
		InName:          u.InName,
		OutName:         u.OutName,
		InKeys:          keys,
		OutValues:       models.FloatList(u.OutValues),
		CompileMs:       u.CompileMs,
		CompileCommand:  u.CompileCommand,
		RunCommand:      u.RunCommand,
		FixedParameters: u.FixedParameters,
		Mean:            mean,
		CreatedAt:       now,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func formatKey(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// Mean is the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
