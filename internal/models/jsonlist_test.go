package models

import (
	"reflect"
	"testing"
)

func TestStringListScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want StringList
	}{
		{name: "Bytes", src: []byte(`["32","64","128"]`), want: StringList{"32", "64", "128"}},
		{name: "String", src: `["n"]`, want: StringList{"n"}},
		{name: "Null", src: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			if err := got.Scan(tt.src); err != nil {
				t.Fatalf("Scan() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloatListValueEmpty(t *testing.T) {
	v, err := FloatList(nil).Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != "[]" {
		t.Errorf("Value() got %v, want []", v)
	}
}

func TestFloatListScanRejectsInt(t *testing.T) {
	var l FloatList
	if err := l.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestPoints(t *testing.T) {
	r := BenchmarkResult{
		InKeys:    StringList{"16", "32", "64"},
		OutValues: FloatList{123, 24.26, 9.2},
	}
	want := []Point{{"16", 123}, {"32", 24.26}, {"64", 9.2}}
	if got := r.Points(); !reflect.DeepEqual(got, want) {
		t.Errorf("Points() got %v, want %v", got, want)
	}
}
