package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList and FloatList are stored as JSON text so the same schema works
// on Postgres and sqlite.
type StringList []string

type FloatList []float64

func (l StringList) Value() (driver.Value, error) { return marshalList([]string(l)) }

func (l *StringList) Scan(src any) error { return scanList(src, (*[]string)(l)) }

func (l FloatList) Value() (driver.Value, error) { return marshalList([]float64(l)) }

func (l *FloatList) Scan(src any) error { return scanList(src, (*[]float64)(l)) }

func marshalList[T any](list []T) (driver.Value, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanList[T any](src any, dst *[]T) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*dst = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into list", src)
	}
	return json.Unmarshal(raw, dst)
}
