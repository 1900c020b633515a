package main

import (
	"testing"

	"clusterprep/internal/dataset"
)

func TestParseInputSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    inputSpec
		wantErr bool
	}{
		{"anno.tsv:discrete", inputSpec{Path: "anno.tsv", Role: dataset.Discrete}, false},
		{"expr.tsv:real_scalar:0.01", inputSpec{Path: "expr.tsv", Role: dataset.RealScalar, Err: 0.01}, false},
		{"expr.tsv:real location:0.5", inputSpec{Path: "expr.tsv", Role: dataset.RealLocation, Err: 0.5}, false},
		// Paths may themselves contain colons.
		{"C:/data/x.tsv:discrete", inputSpec{Path: "C:/data/x.tsv", Role: dataset.Discrete}, false},
		{"C:/data/x.tsv:real_scalar:0.01", inputSpec{Path: "C:/data/x.tsv", Role: dataset.RealScalar, Err: 0.01}, false},
		// Real-valued types require an error value.
		{"expr.tsv:real_scalar", inputSpec{}, true},
		{"expr.tsv:nominal", inputSpec{}, true},
		{"expr.tsv", inputSpec{}, true},
		{":discrete", inputSpec{}, true},
		{"", inputSpec{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseInputSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInputSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseInputSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
