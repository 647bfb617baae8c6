package main

import (
	"flag"
	"io"
	"testing"
)

func TestFlagSet(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"omitted", []string{"-prompt", "jazz"}, false},
		{"explicit zero", []string{"-seed", "0"}, true},
		{"explicit value", []string{"-seed=42", "-prompt", "jazz"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("harmonix-render", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			fs.Uint64("seed", 0, "")
			fs.String("prompt", "", "")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := flagSet(fs, "seed"); got != tt.want {
				t.Errorf("flagSet(seed) = %v, want %v", got, tt.want)
			}
		})
	}
}
