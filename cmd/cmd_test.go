package cmd

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fundsxml"
	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

// setFlag sets a global flag value for the duration of the test.
func setFlag(t *testing.T, p *string, v string) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestCommands(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Commands {
		if seen[c.Name()] {
			t.Errorf("command %q registered twice", c.Name())
		}
		seen[c.Name()] = true
		if !strings.HasPrefix(c.Usage(), "fxv ") {
			t.Errorf("%s usage does not start with the command line: %q", c.Name(), c.Usage())
		}
		c.SetFlags(flag.NewFlagSet(c.Name(), flag.ContinueOnError))
	}
}

func TestSetting(t *testing.T) {
	tests := []struct {
		name  string
		value string
		env   string
		want  string
	}{
		{"flag wins", "reconciliation", "other", "reconciliation"},
		{"env", "", "reconciliation", "reconciliation"},
		{"fallback", "", "", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FXV_TEST_SETTING", tt.env)
			if got := setting(tt.value, "FXV_TEST_SETTING", "default"); got != tt.want {
				t.Errorf("setting() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTolerances(t *testing.T) {
	t.Setenv("FXV_PROFILE", "")
	t.Setenv("FXV_TOLERANCES", "")

	got, err := tolerances()
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "default" {
		t.Errorf("Name = %q, want default", got.Name)
	}

	t.Setenv("FXV_PROFILE", "reconciliation")
	got, err = tolerances()
	if err != nil {
		t.Fatal(err)
	}
	if got.NAV.Mode != fundsxml.NAVRelative {
		t.Errorf("NAV.Mode = %v, want relative", got.NAV.Mode)
	}

	path := filepath.Join(t.TempDir(), "tolerances.yaml")
	if err := os.WriteFile(path, []byte("name: desk\ntop_holdings: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	setFlag(t, tolerancesFile, path)
	got, err = tolerances()
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "desk" || got.TopHoldings != 5 || got.NAV.Mode != fundsxml.NAVRelative {
		t.Errorf("tolerances() = %+v, want desk over reconciliation", got)
	}

	setFlag(t, profileName, "nope")
	if _, err := tolerances(); err == nil {
		t.Error("tolerances() with an unknown profile succeeded")
	}
}

func TestNow(t *testing.T) {
	t.Setenv("FXV_NOW", "")
	setFlag(t, nowFlag, "2024-01-03")
	got, err := now()
	if err != nil {
		t.Fatal(err)
	}
	if got.Format("2006-01-02") != "2024-01-03" {
		t.Errorf("now() = %v, want 2024-01-03", got)
	}

	setFlag(t, nowFlag, "03/01/2024")
	if _, err := now(); err == nil {
		t.Error("now() with an invalid date succeeded")
	}
}

func TestValidateFilesKeepsOrder(t *testing.T) {
	ev := fundsxml.NewEvaluator(fundsxml.DefaultTolerances(), zerolog.Nop())
	paths := []string{"../testdata/master_data.xml", "../testdata/missing.xml", "../testdata/fund.xml"}

	results := validateFiles(context.Background(), ev, testNow, paths)

	var got []string
	for _, v := range results {
		got = append(got, v.path)
	}
	if diff := cmp.Diff(paths, got); diff != "" {
		t.Errorf("validateFiles() order mismatch (-want +got):\n%s", diff)
	}
	if results[0].err != nil || results[0].report.Passed() {
		t.Errorf("master_data.xml: err = %v, want a failed report", results[0].err)
	}
	if !errors.Is(results[1].err, fs.ErrNotExist) {
		t.Errorf("missing.xml: err = %v, want fs.ErrNotExist", results[1].err)
	}
	if results[2].err != nil || !results[2].report.Passed() {
		t.Errorf("fund.xml: err = %v, want a passed report", results[2].err)
	}
}

func TestSelectJSON(t *testing.T) {
	ev := fundsxml.NewEvaluator(fundsxml.DefaultTolerances(), zerolog.Nop())
	v := validateFile(ev, testNow, "../testdata/fund.xml")
	if v.err != nil {
		t.Fatal(v.err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"$.summary.passed", "true"},
		{"$.summary.error", "0"},
		{"$.profile", `"default"`},
		{"$.documentId", `"FXML-2024-0001"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := selectJSON(v.report, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("selectJSON(%s) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}

	if _, err := selectJSON(v.report, "$.nope"); err == nil {
		t.Error("selectJSON() of an unknown key succeeded")
	}
}

func TestFailuresOnly(t *testing.T) {
	ev := fundsxml.NewEvaluator(fundsxml.DefaultTolerances(), zerolog.Nop())
	v := validateFile(ev, testNow, "../testdata/master_data.xml")
	if v.err != nil {
		t.Fatal(v.err)
	}

	got := failuresOnly(v.report)
	if got.Count(fundsxml.SeverityPass) != 0 {
		t.Errorf("failuresOnly() kept %d pass findings", got.Count(fundsxml.SeverityPass))
	}
	for _, s := range []fundsxml.Severity{fundsxml.SeverityWarning, fundsxml.SeverityError} {
		if got.Count(s) != v.report.Count(s) {
			t.Errorf("Count(%v) = %d, want %d", s, got.Count(s), v.report.Count(s))
		}
	}
	if got.Profile != v.report.Profile || got.Today != v.report.Today {
		t.Errorf("failuresOnly() lost the report header")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fund.xml")
	if err := os.WriteFile(file, []byte("<FundsXML4/>"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 10)
	c := &watchCmd{debounce: 50 * time.Millisecond}
	done := make(chan error)
	go func() {
		done <- c.watch(ctx, w, file, func() { changed <- struct{}{} }, zerolog.Nop())
	}()

	// Another file in the directory is ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// A burst of writes is validated once.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("<FundsXML4></FundsXML4>"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notified")
	}
	select {
	case <-changed:
		t.Error("burst of writes notified twice")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch() = %v", err)
	}
}
