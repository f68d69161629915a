package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"runview/internal/app"
	"runview/internal/source"
	"runview/internal/tui"
)

const (
	version = "1.0.0"
	repoURL = "https://github.com/runview/runview"
)

// streamer is what both transports expose.
type streamer interface {
	Stream(ctx context.Context, h source.Handler) error
}

func openLogger() (*app.Logger, func()) {
	path := os.Getenv("RUNVIEW_LOG")
	if path == "" {
		return app.NewLogger(nil), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return app.NewLogger(nil), func() {}
	}
	return app.NewLogger(f), func() { _ = f.Close() }
}

// buildOptions layers config file, CLI flags, then RUNVIEW_* environment.
func buildOptions(cmd *cobra.Command, cfg app.Config) tui.Options {
	opts := tui.DefaultOptions()
	opts.Theme = cfg.Theme
	opts.Verbose = cfg.Verbose
	opts.UseEmoji = cfg.EmojiEnabled()
	opts.PersistLive = cfg.PersistEnabled()
	opts.ShowToolPanels = cfg.ToolPanels
	opts.MaxSteps = cfg.MaxSteps
	opts.BufferCap = cfg.BufferCap

	if v, _ := cmd.Flags().GetString("theme"); v != "" {
		opts.Theme = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		opts.Verbose = true
	}
	if v, _ := cmd.Flags().GetBool("no-emoji"); v {
		opts.UseEmoji = false
	}
	if v, _ := cmd.Flags().GetBool("no-persist"); v {
		opts.PersistLive = false
	}
	return opts.WithEnv()
}

// view drives one run through the presenter. In live mode the bubbletea
// program owns the main goroutine and the stream runs beside it; in plain
// mode the stream runs inline and the final frame prints once at the end.
func view(ctx context.Context, cmd *cobra.Command, src streamer, log *app.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	opts := buildOptions(cmd, cfg)
	presenter := tui.NewPresenter(opts)
	presenter.SetRuleWriter(os.Stderr)

	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		go func() {
			<-sigChan
			cancel()
		}()
		if err := src.Stream(ctx, presenter); err != nil {
			return err
		}
		fmt.Print(presenter.Frame(100))
		return nil
	}

	display := tui.NewLiveDisplay(presenter, os.Stdout, opts)
	presenter.SetDisplay(display)

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- src.Stream(ctx, presenter)
	}()
	go func() {
		select {
		case <-sigChan:
			cancel()
			display.Kill()
		case <-ctx.Done():
		}
	}()

	if err := display.Run(); err != nil {
		cancel()
		return err
	}
	cancel()
	if err := <-streamErr; err != nil && ctx.Err() == nil {
		log.Error("stream failed", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

// demoScript writes a scripted run as wire JSON, pacing each line so the
// live view has something to animate. A zero pace emits everything at once.
func demoScript(w io.Writer, pace time.Duration) {
	runID := uuid.NewString()
	taskID := uuid.NewString()
	rootCtx := uuid.NewString()

	emit := func(v map[string]any, units int) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return
		}
		time.Sleep(time.Duration(units) * pace)
	}

	emit(map[string]any{
		"kind": "run_start", "agent_name": "DemoAgent", "model": "demo-1",
		"run_id": runID, "input": "What is 6 x 7, and what does the math specialist say?",
	}, 2)
	emit(map[string]any{"metadata": map[string]any{"kind": "status"}, "status": "execution_started"}, 1)
	emit(map[string]any{"content": "Let me work that out.", "context_id": rootCtx}, 3)
	emit(map[string]any{
		"metadata": map[string]any{"kind": "agent_step", "tool_info": map[string]any{
			"tool_calls": []any{map[string]any{"name": "calculator", "args": map[string]any{"expression": "6*7"}}},
		}},
		"task_id": taskID, "context_id": rootCtx,
	}, 4)
	emit(map[string]any{
		"metadata": map[string]any{"kind": "agent_step", "tool_info": map[string]any{
			"name": "calculator", "output": "42", "duration": 0.6,
		}},
		"task_id": taskID, "context_id": rootCtx,
	}, 2)
	emit(map[string]any{
		"metadata": map[string]any{"kind": "agent_step", "tool_info": map[string]any{
			"tool_calls": []any{map[string]any{"name": "delegate_to_math", "args": map[string]any{"query": "confirm 6*7"}}},
		}},
		"task_id": taskID, "context_id": rootCtx,
	}, 6)
	emit(map[string]any{
		"metadata": map[string]any{"kind": "agent_step", "tool_info": map[string]any{
			"name": "delegate_to_math", "output": "[math_specialist] Confirmed: \\(6 \\times 7 = 42\\).", "duration": 0.8,
		}},
		"task_id": taskID, "context_id": rootCtx,
	}, 3)
	emit(map[string]any{"content": " The calculator and the specialist agree:", "context_id": rootCtx}, 2)
	emit(map[string]any{"content": " **42**.", "context_id": rootCtx}, 2)
	emit(map[string]any{
		"kind": "run_complete", "final": " Done.",
		"usage": map[string]any{"input_tokens": 120, "output_tokens": 46},
	}, 0)
}

func main() {
	root := &cobra.Command{
		Use:     "runview [file]",
		Short:   "Live terminal view of a streaming agent run",
		Long:    "runview renders a streaming agent run as a live terminal view: transcript, step tree, and per-context delegation panels.\n\nEvents arrive as JSON lines on stdin, from a file, or over a websocket.\n\nFor more information, visit: " + repoURL,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog := openLogger()
			defer closeLog()

			if url, _ := cmd.Flags().GetString("url"); url != "" {
				return view(cmd.Context(), cmd, source.NewWebSocket(url, log), log)
			}

			var r io.Reader = os.Stdin
			if len(args) > 0 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return view(cmd.Context(), cmd, source.NewJSONL(r, log), log)
		},
	}

	root.PersistentFlags().String("config", "", "Config file path (default: $XDG_CONFIG_HOME/runview/config.yaml)")
	root.PersistentFlags().String("theme", "", "Color theme: dark|light")
	root.PersistentFlags().Bool("verbose", false, "Show tool arguments and run input")
	root.PersistentFlags().Bool("no-emoji", false, "Plain text markers instead of emoji")
	root.PersistentFlags().Bool("no-persist", false, "Clear the live view when the run finishes")
	root.PersistentFlags().Bool("plain", false, "No live view; print the final frame once")
	root.Flags().String("url", "", "Stream events from a websocket endpoint")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Render a scripted demo run",
		Long:  "Render a built-in scripted run: a calculator call, a delegation to a math specialist, and a streamed answer.\n\nExamples:\n  - runview demo\n  - runview demo --plain\n  - runview demo --no-emoji",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog := openLogger()
			defer closeLog()

			pr, pw := io.Pipe()
			go func() {
				demoScript(pw, 150*time.Millisecond)
				_ = pw.Close()
			}()
			return view(cmd.Context(), cmd, source.NewJSONL(pr, log), log)
		},
	}
	root.AddCommand(demoCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("runview v%s\n", version)
			fmt.Printf("Repository: %s\n", repoURL)
		},
	}
	root.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
