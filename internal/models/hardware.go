package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Hardware is the host description reported by `venchup hwinfo`, kept as
// the decoded JSON object.
type Hardware map[string]any

func (h Hardware) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *Hardware) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*h = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*map[string]any)(h))
	case string:
		return json.Unmarshal([]byte(v), (*map[string]any)(h))
	}
	return fmt.Errorf("cannot scan %T into hardware", src)
}

// Summary is a one-line description such as
// "AMD EPYC 7763 64-Core Processor, 128 threads".
func (h Hardware) Summary() string {
	var parts []string
	if model, _ := h["model_name"].(string); model != "" {
		parts = append(parts, model)
	} else if vendor, _ := h["vendor_id"].(string); vendor != "" {
		parts = append(parts, vendor)
	}
	switch n := h["threads"].(type) {
	case float64:
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d threads", int(n)))
		}
	case int:
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d threads", n))
		}
	}
	if arch, _ := h["arch"].(string); arch != "" && len(parts) == 0 {
		parts = append(parts, arch)
	}
	return strings.Join(parts, ", ")
}
