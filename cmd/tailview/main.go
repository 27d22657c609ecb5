package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wilbur182/tailview/internal/app"
	"github.com/wilbur182/tailview/internal/config"
	"github.com/wilbur182/tailview/internal/repository"
	"github.com/wilbur182/tailview/internal/styles"
	"github.com/wilbur182/tailview/internal/ui"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath  = flag.String("config", "", "path to config file")
	extFlag     = flag.String("ext", "", "comma-separated file extensions to watch (default from config, .log)")
	logPath     = flag.String("log", "", "write logs to this file")
	debugFlag   = flag.Bool("debug", false, "enable debug logging")
	listFlag    = flag.Bool("list", false, "print the file list and exit")
	versionFlag = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tailview version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, flag.Args(), *extFlag)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogging(*logPath, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	repo := repository.New(cfg, logger)
	watched := 0
	for _, dir := range cfg.Watch.Dirs {
		if err := repo.Watch(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot watch %s: %v\n", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		repo.Scan(ctx)
		printList(os.Stdout, repo.List())
		return
	}

	done := make(chan error, 1)
	go func() { done <- repo.Run(ctx) }()

	styles.ApplyTheme(cfg.UI.Theme)
	model := app.New(repo, cfg, logger, clipboard.WriteAll)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := p.Run()
	stop()
	if err := <-done; err != nil {
		logger.Error("repository stopped", "err", err)
	}
	if runErr != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(config.ExpandPath(path))
	}
	return config.Load()
}

// applyFlags overrides the config with command-line directories and
// extensions.
func applyFlags(cfg *config.Config, dirs []string, exts string) {
	if len(dirs) > 0 {
		cfg.Watch.Dirs = dirs
	}
	if len(cfg.Watch.Dirs) == 0 {
		cfg.Watch.Dirs = []string{"."}
	}
	for i, d := range cfg.Watch.Dirs {
		if abs, err := filepath.Abs(config.ExpandPath(d)); err == nil {
			cfg.Watch.Dirs[i] = abs
		}
	}

	if exts != "" {
		var list []string
		for _, e := range strings.Split(exts, ",") {
			if e = strings.TrimSpace(e); e != "" {
				list = append(list, e)
			}
		}
		cfg.Watch.Extensions = list
	}
}

// setupLogging returns a logger writing to path. Without a path logs are
// discarded so they never draw over the TUI.
func setupLogging(path string, debugLevel bool) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(config.ExpandPath(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if debugLevel {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}

func printList(w io.Writer, files []repository.FileInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLINES\tSIZE\tLAST UPDATE\t")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", f.Name, f.Lines, ui.FormatBytes(f.Size), f.LastUpdate.Format("2006-01-02 15:04:05"))
	}
	_ = tw.Flush()
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}
	ver := "devel+" + revision
	if len(ver) > 20 {
		ver = ver[:20]
	}
	if dirty {
		ver += "+dirty"
	}
	return ver
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tailview [options] [dir...]\n\n")
		fmt.Fprintf(os.Stderr, "Browse and follow the log files of one or more directories.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
