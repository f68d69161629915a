package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"runview/internal/app"
	"runview/internal/run"
)

func flaggedCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("theme", "", "")
	cmd.Flags().Bool("verbose", false, "")
	cmd.Flags().Bool("no-emoji", false, "")
	cmd.Flags().Bool("no-persist", false, "")
	return cmd
}

func TestBuildOptions_FlagsOverrideConfig(t *testing.T) {
	cmd := flaggedCommand()
	if err := cmd.Flags().Set("theme", "light"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("no-emoji", "true"); err != nil {
		t.Fatal(err)
	}

	cfg := app.DefaultConfig()
	opts := buildOptions(cmd, cfg)

	if opts.Theme != "light" {
		t.Errorf("Theme = %q, want light", opts.Theme)
	}
	if opts.UseEmoji {
		t.Errorf("UseEmoji = true, want false")
	}
	if opts.MaxSteps != 200 {
		t.Errorf("MaxSteps = %d, want config default 200", opts.MaxSteps)
	}
}

func TestBuildOptions_ConfigDefaultsSurvive(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Verbose = true
	cfg.ToolPanels = true

	opts := buildOptions(flaggedCommand(), cfg)

	if !opts.Verbose {
		t.Errorf("Verbose = false, want true from config")
	}
	if !opts.ShowToolPanels {
		t.Errorf("ShowToolPanels = false, want true from config")
	}
	if !opts.PersistLive {
		t.Errorf("PersistLive = false, want default true")
	}
}

func TestDemoScriptEmitsValidWireLines(t *testing.T) {
	var buf bytes.Buffer
	demoScript(&buf, 0)

	var lines []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) < 5 {
		t.Fatalf("demo produced %d lines", len(lines))
	}

	for i, line := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
	}
	if !strings.Contains(lines[0], `"run_start"`) {
		t.Errorf("first line is not run_start: %s", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], `"run_complete"`) {
		t.Errorf("last line is not run_complete: %s", lines[len(lines)-1])
	}

	// Every middle line decodes into a recognized event kind.
	for _, line := range lines[1 : len(lines)-1] {
		ev := run.ParseEvent([]byte(line))
		if ev.Kind == run.EventUnrecognized {
			t.Errorf("demo line not recognized: %s", line)
		}
	}
}
