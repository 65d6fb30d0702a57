package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSeed = `settings:
  budget: 50
  currency: USD
subscriptions:
  - id: coffee-0001
    name: Coffee
    price: 10
    period: Weekly
    start_date: "2024-03-18"
    category: Food
  - id: cloud-0001
    name: Cloud
    price: 120
    period: Yearly
    start_date: "2023-04-01"
    category: Tech
  - id: old-0001
    name: Old
    price: 99
    period: Monthly
    start_date: "2022-01-10"
    status: paused
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(testSeed), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes subctl against a fresh memory backend loaded from the test seed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--backend", "memory", "--seed", writeSeed(t), "--now", "2024-03-20"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"list", []string{"list"}, []string{"3 subscriptions (2 active, 1 paused)", "Coffee", "2024-03-25", "PAUSED"}},
		{"list paused", []string{"list", "--status", "paused"}, []string{"1 subscriptions", "Old"}},
		{"totals", []string{"totals"}, []string{"$53.30", "$43.30", "Food", "Budget:"}},
		{"upcoming", []string{"upcoming", "--limit", "1"}, []string{"2024-03-25", "5 days", "Coffee"}},
		{"calendar", []string{"calendar", "--month", "4"}, []string{"April 2024", "Coffee, Cloud", "$130.00"}},
		{"pause", []string{"pause", "coffee-0001"}, []string{"Paused Coffee (coffee-0001)"}},
		{"schedule pause", []string{"schedule-pause", "cloud-0001"}, []string{"Scheduled pause for Cloud"}},
		{"apply pauses", []string{"apply-pauses"}, []string{"Applied 0 scheduled pauses"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"resume active", []string{"resume", "coffee-0001"}},
		{"pause unknown", []string{"pause", "missing"}},
		{"bad month", []string{"calendar", "--month", "13"}},
		{"bad format", []string{"export", "--format", "pdf"}},
		{"watch without broker", []string{"watch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("Execute(%v) error = nil, want error", tt.args)
			}
		})
	}
}

func TestExportCSVToStdout(t *testing.T) {
	out, err := run(t, "export", "--format", "csv", "--output", "-")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv lines = %d, want 4:\n%s", len(lines), out)
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	if _, err := run(t, "export", "--format", "yaml", "--output", path); err != nil {
		t.Fatalf("export error = %v", err)
	}
	out, err := run(t, "import", path)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "Imported 3 subscriptions") {
		t.Errorf("import output = %q", out)
	}
}

func TestParseNow(t *testing.T) {
	got, err := parseNow("2024-02-29")
	if err != nil {
		t.Fatalf("parseNow() error = %v", err)
	}
	if got.Format("2006-01-02 15:04") != "2024-02-29 12:00" {
		t.Errorf("parseNow() = %v, want 2024-02-29 12:00", got)
	}
	if _, err := parseNow("29/02/2024"); err == nil {
		t.Error("parseNow() error = nil, want error")
	}
}
