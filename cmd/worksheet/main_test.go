package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/worksheet/internal/fakeapi"
	"github.com/pavelanni/worksheet/internal/model"
)

type cli struct {
	t       *testing.T
	url     string
	cache   string
	backend *fakeapi.Server
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return &cli{
		t:       t,
		url:     srv.URL,
		cache:   filepath.Join(t.TempDir(), "cache.db"),
		backend: backend,
	}
}

// exec runs the root command with stdin and returns everything it printed.
func (c *cli) exec(stdin string, args ...string) (string, error) {
	c.t.Helper()
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--api-url", c.url, "--cache", c.cache, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustExec(args ...string) string {
	c.t.Helper()
	out, err := c.exec("", args...)
	if err != nil {
		c.t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestHealth(t *testing.T) {
	c := newCLI(t)
	assertContains(t, c.mustExec("health"), "Backend is up")

	c.url = "http://127.0.0.1:1"
	out, err := c.exec("", "health")
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	assertContains(t, out, "Backend unavailable")
}

func TestGenerateSolveReviewExport(t *testing.T) {
	c := newCLI(t)
	c.backend.SetNextIDs(7, 42)

	out := c.mustExec("generate", "--subject", "reading", "--reading-type", "main_idea", "-n", "2", "--title", "Unit 1")
	assertContains(t, out, "Generated worksheet #7.", "Worksheet #7: Unit 1")

	out = c.mustExec("show", "7")
	if strings.Contains(out, "Answer:") {
		t.Errorf("show without --answers printed the key:\n%s", out)
	}
	assertContains(t, c.mustExec("show", "7", "--answers"), "Answer: B")

	out = c.mustExec("solve", "7", "--student", "Kim", "--answer", "q1=B", "--answer", "q2=A")
	assertContains(t, out, "Answers submitted. Result #42.", "Result #42 for Kim", "Score: 1/2 (50.0%)")

	out = c.mustExec("review", "42", "--score", "q2=1", "--correct", "q2=true",
		"--feedback", "q2=close, accepted", "--reviewer", "Ms. Park")
	assertContains(t, out, "Saving review...", "Review for result #42 saved.", "Reviewed by Ms. Park", "close, accepted")

	res, ok := c.backend.Result(42)
	if !ok || !res.IsReviewed || res.TotalScore != 2 {
		t.Errorf("backend result = %+v", res)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	c.mustExec("export", "7", "-o", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var export model.ResultsExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if export.WorksheetID != 7 || len(export.Results) != 1 || export.Results[0].StudentName != "Kim" || !export.Results[0].Reviewed {
		t.Errorf("export = %+v", export)
	}

	out = c.mustExec("export", "7", "--format", "yaml")
	assertContains(t, out, "worksheet_id: 7", "student_name: Kim", "feedback:", "close, accepted")
	if _, err := c.exec("", "export", "7", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSolveFromStdin(t *testing.T) {
	c := newCLI(t)
	c.backend.SetNextIDs(3, 9)
	c.mustExec("generate", "--subject", "grammar", "-n", "2")

	out, err := c.exec("q1 b\nq9 A\nq2 C\nsubmit\nq1 ignored\n", "solve", "3", "--student", "Lee", "--class", "2B")
	if err != nil {
		t.Fatalf("solve: %v\n%s", err, out)
	}
	assertContains(t, out, "Result #9 for Lee", "Score: 1/2", "unknown question: q9")

	res, _ := c.backend.Result(9)
	if res.ClassName != "2B" || res.QuestionResults[0].StudentAnswer != "b" {
		t.Errorf("result = %+v", res)
	}
}

func TestErrorsPrintedOnce(t *testing.T) {
	c := newCLI(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing worksheet", []string{"show", "999", "--answers"}, "404"},
		{"bad id", []string{"result", "abc"}, `invalid id "abc"`},
		{"bad pair", []string{"review", "1", "--score", "q1"}, "expected key=value"},
		{"bad kind", []string{"ai-edit", "1", "q1", "--kind", "louder"}, "invalid kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.exec("", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			assertContains(t, out, tt.want)
			if n := strings.Count(out, "Error:"); n != 1 {
				t.Errorf("error printed %d times:\n%s", n, out)
			}
		})
	}
}

func TestEditCommands(t *testing.T) {
	c := newCLI(t)
	c.backend.SetNextIDs(5, 0)
	c.mustExec("generate", "--subject", "reading", "-n", "2")

	assertContains(t, c.mustExec("edit", "question", "5", "q1", "--text", "What is the main idea?"), "Question q1 updated.")
	assertContains(t, c.mustExec("edit", "answer", "5", "q1", "--answer", "C", "--explanation", "line 2"), "Answer for q1 updated.")
	assertContains(t, c.mustExec("edit", "passage", "5", "p1", "--content", "New text."), "Passage p1 updated.")
	assertContains(t, c.mustExec("edit", "connections", "5", "p1"), "p1: q1, q2")
	assertContains(t, c.mustExec("delete-question", "5", "q2"), "Question q2 deleted.")

	ws, _ := c.backend.Worksheet(5)
	if len(ws.Questions) != 1 || ws.Questions[0].Text != "What is the main idea?" || ws.Questions[0].CorrectAnswer != "C" {
		t.Errorf("worksheet = %+v", ws.Questions)
	}
	if ws.Passages[0].Content != "New text." {
		t.Errorf("passage = %q", ws.Passages[0].Content)
	}
}

func TestCacheCommands(t *testing.T) {
	c := newCLI(t)
	c.mustExec("categories")

	assertContains(t, c.mustExec("cache", "keys"), "categories")
	c.mustExec("cache", "set", "note", `{"a":1}`)
	assertContains(t, c.mustExec("cache", "get", "note"), `{"a":1}`)
	c.mustExec("cache", "del", "note")
	if _, err := c.exec("", "cache", "get", "note"); err == nil {
		t.Error("expected error for deleted key")
	}

	c.cache = ""
	if _, err := c.exec("", "cache", "keys"); err == nil {
		t.Error("expected error with cache disabled")
	}
}

func TestUpload(t *testing.T) {
	c := newCLI(t)
	c.backend.SetNextIDs(11, 0)
	path := filepath.Join(t.TempDir(), "unit.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	assertContains(t, c.mustExec("upload", path), "Uploaded as worksheet #11.", "Worksheet #11: unit.pdf")
}

func TestTelemetryFlags(t *testing.T) {
	c := newCLI(t)
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "metrics.prom")
	logPath := filepath.Join(dir, "cli.log")

	c.mustExec("--trace", "--metrics-file", metricsPath, "--log-file", logPath, "--log-level", "debug", "health")

	metrics, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	assertContains(t, string(metrics), `worksheet_api_requests_total{endpoint="/health",method="GET",status="200"} 1`)

	logs, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	assertContains(t, string(logs), "client configured")

	reqs := c.backend.Requests()
	if len(reqs) != 1 || !strings.HasPrefix(reqs[0].Traceparent, "00-") {
		t.Errorf("requests = %+v", reqs)
	}
}
