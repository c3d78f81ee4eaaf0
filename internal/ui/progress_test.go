package ui

import (
	"strings"
	"testing"

	"sclint/internal/driver"
)

func TestApplyEvent(t *testing.T) {
	files := []string{"a.js", "b.js", "c.js"}
	m := NewProgressModel("lint", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.js", Stage: driver.StageParse, Status: driver.StatusWorking})
	if m.items[0].status != "parsing" {
		t.Errorf("status = %q, want parsing", m.items[0].status)
	}
	if got := m.percent(); got <= 0 || got >= 1 {
		t.Errorf("percent after parse start = %v", got)
	}

	m.applyEvent(driver.Event{File: "a.js", Stage: driver.StageDetect, Status: driver.StatusDone, Findings: 2})
	m.applyEvent(driver.Event{File: "b.js", Stage: driver.StageParse, Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "c.js", Stage: driver.StageLoad, Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "unknown.js", Stage: driver.StageLoad, Status: driver.StatusDone})

	want := []string{"done", "skipped", "error"}
	for i, status := range want {
		if m.items[i].status != status {
			t.Errorf("item %d status = %q, want %q", i, m.items[i].status, status)
		}
	}
	if m.findings != 2 || m.finished() != 3 || m.percent() != 1 {
		t.Errorf("findings=%d finished=%d percent=%v", m.findings, m.finished(), m.percent())
	}
}

func TestView(t *testing.T) {
	m := NewProgressModel("lint src", []string{"a.js"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.js", Stage: driver.StageDetect, Status: driver.StatusDone, Findings: 1})
	m.done = true

	view := m.View()
	for _, want := range []string{"done: lint src (1/1 files, 1 findings)", "1 found", "a.js"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q:\n%s", want, view)
		}
	}

	if empty := NewProgressModel("x", nil, nil).View(); empty != "" {
		t.Errorf("empty model view = %q", empty)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.js", 20, "short.js"},
		{"some/long/path/file.js", 10, "some..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
