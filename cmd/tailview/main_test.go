package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wilbur182/tailview/internal/config"
	"github.com/wilbur182/tailview/internal/repository"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	applyFlags(cfg, []string{dir}, " .log, .txt ,,")

	if len(cfg.Watch.Dirs) != 1 || cfg.Watch.Dirs[0] != dir {
		t.Errorf("Dirs = %v", cfg.Watch.Dirs)
	}
	if strings.Join(cfg.Watch.Extensions, "|") != ".log|.txt" {
		t.Errorf("Extensions = %v", cfg.Watch.Extensions)
	}
}

func TestApplyFlags_DefaultsToCwd(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, nil, "")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Watch.Dirs) != 1 || cfg.Watch.Dirs[0] != wd {
		t.Errorf("Dirs = %v, want [%s]", cfg.Watch.Dirs, wd)
	}
	if len(cfg.Watch.Extensions) != 1 || cfg.Watch.Extensions[0] != ".log" {
		t.Errorf("Extensions = %v", cfg.Watch.Extensions)
	}
}

func TestSetupLogging(t *testing.T) {
	logger, closeLog, err := setupLogging("", false)
	if err != nil || logger == nil {
		t.Fatalf("discard logger: %v", err)
	}
	closeLog()

	path := filepath.Join(t.TempDir(), "tailview.log")
	logger, closeLog, err = setupLogging(path, true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("indexed file", "file", "app.log")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "indexed file") {
		t.Errorf("log = %q", data)
	}
}

func TestPrintList(t *testing.T) {
	var buf bytes.Buffer
	printList(&buf, []repository.FileInfo{
		{Name: "app.log", Lines: 42, Size: 2048, LastUpdate: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	})

	out := buf.String()
	for _, want := range []string{"NAME", "app.log", "42", "2.0 KiB", "2024-05-01 12:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEffectiveVersion(t *testing.T) {
	if got := effectiveVersion("v1.2.3"); got != "v1.2.3" {
		t.Errorf("effectiveVersion = %q", got)
	}
	if got := effectiveVersion(""); got == "" {
		t.Error("empty version")
	}
}
