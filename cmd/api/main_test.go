package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"indiflow-dashboard-api/models"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "indiflow-api dev (commit: none)") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestRootCmdHelpListsCommands(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"serve", "migrate", "ingest", "stats", "ask", "promote"} {
		if !strings.Contains(buf.String(), sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestArgValidation(t *testing.T) {
	tests := [][]string{
		{"ingest"},
		{"ingest", "a.json", "b.json"},
		{"ask"},
		{"promote"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			cmd.SetArgs(args)
			if err := cmd.Execute(); err == nil {
				t.Error("expected argument error")
			}
		})
	}
}

func TestIngestMissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"ingest", "/nonexistent/training.json"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "read /nonexistent/training.json") {
		t.Errorf("err = %v, want read error before any connection attempt", err)
	}
}

func TestWriteStats(t *testing.T) {
	stats := models.DashboardStats{TotalUsers: 42, ActiveToday: 5, TotalRoutes: 7, TotalSearches: 9, TrainingDataCount: 100}

	var text bytes.Buffer
	if err := writeStats(&text, stats, false); err != nil {
		t.Fatalf("writeStats: %v", err)
	}
	for _, want := range []string{"Total users:   42", "Active today:  5", "Training data: 100"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, text.String())
		}
	}

	var js bytes.Buffer
	if err := writeStats(&js, stats, true); err != nil {
		t.Fatalf("writeStats json: %v", err)
	}
	var got models.DashboardStats
	if err := json.Unmarshal(js.Bytes(), &got); err != nil || got != stats {
		t.Errorf("json round trip = %+v, %v", got, err)
	}
}
