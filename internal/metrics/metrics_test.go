package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveStage("parse", 3*time.Millisecond, nil)
	r.ObserveStage("resolve", time.Millisecond, errors.New("boom"))
	r.RecordCompile(Counts{}, errors.New("boom"))
	r.RecordCompile(Counts{Domains: 2, Types: 5, Commands: 3, Events: 1}, nil)

	path := filepath.Join(t.TempDir(), "pdlgen.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(b)
	for _, want := range []string{
		`pdlgen_compiles_total{result="failure"} 1`,
		`pdlgen_compiles_total{result="success"} 1`,
		`pdlgen_stage_errors_total{stage="resolve"} 1`,
		`pdlgen_stage_duration_seconds_count{stage="parse"} 1`,
		`pdlgen_protocol_domains 2`,
		`pdlgen_protocol_types 5`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordCompile(Counts{Domains: 1}, nil)
	mf, err := b.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range mf {
		if f.GetName() == "pdlgen_compiles_total" && len(f.GetMetric()) != 0 {
			t.Fatalf("recorder b saw a's compile")
		}
	}
}
