package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = `{"tc":"userlist","users":[{"handle":1,"nick":"bob"},{"handle":2,"nick":"carol","mod":true}]}
{"tc":"join","handle":3,"nick":"alice"}

{"tc":"ping"}
{"tc":"nick","handle":1,"nick":"robert"}
{"tc":"nick","handle":99,"nick":"ghost"}
{"tc":"quit"}
not json
{"tc":"msg","text":"hello"}
{"tc":"quit","handle":3}
{"tc":"ping"}
`

func TestAnalyze(t *testing.T) {
	report, err := analyze(context.Background(), strings.NewReader(sampleLog), "sample", false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if report.File != "sample" {
		t.Errorf("Expected file name sample, got %s", report.File)
	}
	if report.Frames != 10 {
		t.Errorf("Expected 10 frames (blank lines skipped), got %d", report.Frames)
	}
	if report.Undecodable != 1 {
		t.Errorf("Expected 1 undecodable frame, got %d", report.Undecodable)
	}
	if report.Rejected != 2 {
		t.Errorf("Expected 2 rejected frames (unknown handle, malformed quit), got %d", report.Rejected)
	}
	if report.Pongs != 2 {
		t.Errorf("Expected 2 pongs, got %d", report.Pongs)
	}

	expected := map[string]int{"userlist": 1, "join": 1, "ping": 2, "nick": 2, "quit": 2, "msg": 1}
	for tag, n := range expected {
		if report.Commands[tag] != n {
			t.Errorf("Expected %d %s frames, got %d", n, tag, report.Commands[tag])
		}
	}

	if len(report.Members) != 2 {
		t.Fatalf("Expected 2 members, got %v", report.Members)
	}
	if report.Members["1"].Nick() != "robert" {
		t.Errorf("Expected handle 1 renamed to robert, got %v", report.Members["1"])
	}
	if report.Members["2"]["mod"] != true {
		t.Errorf("Expected carol's attributes to be kept, got %v", report.Members["2"])
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	report, err := analyze(context.Background(), strings.NewReader(""), "empty", false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.Frames != 0 || len(report.Members) != 0 || report.Pongs != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	if err := os.WriteFile(path, []byte(sampleLog), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	report, err := analyzeFile(context.Background(), path, true)
	if err != nil {
		t.Fatalf("analyzeFile failed: %v", err)
	}
	if report.File != "frames.jsonl" {
		t.Errorf("Expected base name, got %s", report.File)
	}

	if _, err := analyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"), false); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPrintReport(t *testing.T) {
	report, err := analyze(context.Background(), strings.NewReader(sampleLog), "sample", false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	output := buf.String()

	for _, want := range []string{
		"Frames: 10 (undecodable: 1, rejected: 2)",
		"Pongs sent: 2",
		"userlist",
		"Final roster (2):",
		"robert",
		"carol [mod]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, output)
		}
	}
}
