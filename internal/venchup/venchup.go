// Package venchup renders the per-machine upload script.
package venchup

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"venchmarks/internal/signer"
)

// FileName is the name the script is served and downloaded under.
const FileName = "venchup.py"

//go:embed venchup.py.tmpl
var scriptSource string

var script = template.Must(template.New(FileName).Funcs(template.FuncMap{
	"pystr": pyString,
}).Parse(scriptSource))

var (
	ErrMissingParameter = errors.New("must provide machine name and private key")
	ErrInvalidParameter = errors.New("machine name or private key contains characters outside the allowed set")
)

// Both values land inside Python triple-quoted strings. The only backslash
// allowed is the one in the \n line-break escape.
var (
	machinePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	keyPattern     = regexp.MustCompile(`^(?:[A-Za-z0-9+/=:. -]|\\n)+$`)
)

// Params are substituted into the script. PrivateKey is the escaped
// single-line form produced by credential.Escape.
type Params struct {
	MachineName string
	PrivateKey  string
	Digest      signer.Digest
	UploadURL   string
}

func (p Params) Validate() error {
	if p.MachineName == "" || p.PrivateKey == "" {
		return ErrMissingParameter
	}
	if !machinePattern.MatchString(p.MachineName) || !keyPattern.MatchString(p.PrivateKey) {
		return ErrInvalidParameter
	}
	return nil
}

func Render(w io.Writer, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Digest == "" {
		p.Digest = signer.DefaultDigest
	}
	return script.Execute(w, p)
}

func RenderString(p Params) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, p); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// pyString quotes ASCII text as a Python string literal.
func pyString(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case signer.Digest:
		s = string(x)
	}
	return strconv.QuoteToASCII(s)
}

var (
	machineLine = regexp.MustCompile(`(?m)^machine = """(.*)"""$`)
	keyLine     = regexp.MustCompile(`(?m)^privkey = """(.*)"""$`)
	digestLine  = regexp.MustCompile(`(?m)^digest = ("(?:[^"\\]|\\.)*")$`)
	uploadLine  = regexp.MustCompile(`(?m)^upload_url = ("(?:[^"\\]|\\.)*")$`)
)

// ParseScript recovers the parameters from a rendered script, so that a
// downloaded venchup.py can configure the Go client.
func ParseScript(text string) (Params, error) {
	var p Params
	m := machineLine.FindStringSubmatch(text)
	k := keyLine.FindStringSubmatch(text)
	if m == nil || k == nil {
		return p, ErrMissingParameter
	}
	p.MachineName, p.PrivateKey = m[1], k[1]

	if d := digestLine.FindStringSubmatch(text); d != nil {
		s, err := strconv.Unquote(d[1])
		if err != nil {
			return p, fmt.Errorf("digest: %w", err)
		}
		p.Digest = signer.Digest(s)
	}
	if u := uploadLine.FindStringSubmatch(text); u != nil {
		s, err := strconv.Unquote(u[1])
		if err != nil {
			return p, fmt.Errorf("upload_url: %w", err)
		}
		p.UploadURL = s
	}
	return p, p.Validate()
}
