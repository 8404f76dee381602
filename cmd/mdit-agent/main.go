package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"mdit/internal/agent"
	"mdit/internal/config"
	"mdit/internal/history"
	"mdit/internal/organizer"
	"mdit/internal/provider"
	"mdit/internal/vault"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "move":
		err = runMove(os.Args[2:])
	case "rename":
		err = runRename(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdit-agent: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: mdit-agent <command> [flags] [paths...]

Commands:
  move      organize notes from a directory into the workspace's directories
  rename    suggest filenames for the notes in a directory
  history   show recent batch runs

Common flags:
  -config   path to config JSON (default: ~/.mdit/agent.json)
  -dir      batch directory (move: workspace root defaults to its parent)
  -v        verbose logging
`)
}

type cliFlags struct {
	configPath string
	dir        string
	root       string
	verbose    bool
}

func parseFlags(name string, args []string, withRoot bool) (cliFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var cf cliFlags
	fs.StringVar(&cf.configPath, "config", "", "Path to config JSON")
	fs.StringVar(&cf.dir, "dir", "", "Batch directory")
	if withRoot {
		fs.StringVar(&cf.root, "root", "", "Workspace root (defaults to the batch directory's parent)")
	}
	fs.BoolVar(&cf.verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, nil, err
	}
	if cf.dir == "" {
		return cliFlags{}, nil, fmt.Errorf("-dir is required")
	}
	return cf, fs.Args(), nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func buildOrganizer(cf cliFlags, log *slog.Logger) (*organizer.Organizer, *config.Config, error) {
	cfg, err := config.Load(cf.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	p, err := provider.NewOpenAI(provider.Config{
		Provider:  cfg.Chat.Provider,
		BaseURL:   cfg.Chat.BaseURL,
		APIKey:    cfg.Chat.APIKey,
		AccountID: cfg.Chat.AccountID,
		Model:     cfg.Chat.Model,
		TimeoutMS: cfg.Chat.TimeoutMS,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init provider: %w", err)
	}
	driver := agent.NewDriver(p, agent.Config{
		MaxSteps: cfg.Runtime.MaxSteps,
		Logger:   log,
	})
	return organizer.New(vault.NewOSFS(), driver, log), &cfg, nil
}

// gatherEntries returns the batch entries: either the explicitly listed
// paths, or everything directly inside the batch directory.
func gatherEntries(ctx context.Context, fs vault.FS, dir string, paths []string) ([]vault.Entry, error) {
	if len(paths) == 0 {
		return fs.ReadDir(ctx, dir)
	}
	entries := make([]vault.Entry, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		entries = append(entries, vault.Entry{
			Path:        abs,
			Name:        filepath.Base(abs),
			IsDirectory: info.IsDir(),
		})
	}
	return entries, nil
}

func runMove(args []string) error {
	cf, paths, err := parseFlags("move", args, true)
	if err != nil {
		return err
	}
	log := newLogger(cf.verbose)
	org, cfg, err := buildOrganizer(cf, log)
	if err != nil {
		return err
	}

	root := cf.root
	if root == "" {
		root = filepath.Dir(cf.dir)
	}
	ctx := context.Background()
	fs := vault.NewOSFS()
	entries, err := gatherEntries(ctx, fs, cf.dir, paths)
	if err != nil {
		return err
	}

	res, err := org.OrganizeNotes(ctx, root, entries)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Println(mutedStyle.Render("no notes to organize"))
		return nil
	}
	recordRun(ctx, cfg.Runtime.HistoryDB, "move", cf.dir, res.MovedCount, res.UnchangedCount, res.FailedCount, res.Operations, log)
	renderMoveResult(os.Stdout, res)
	return nil
}

func runRename(args []string) error {
	cf, paths, err := parseFlags("rename", args, false)
	if err != nil {
		return err
	}
	log := newLogger(cf.verbose)
	org, cfg, err := buildOrganizer(cf, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fs := vault.NewOSFS()
	entries, err := gatherEntries(ctx, fs, cf.dir, paths)
	if err != nil {
		return err
	}

	res, err := org.SuggestRenames(ctx, cf.dir, entries)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Println(mutedStyle.Render("no notes to rename"))
		return nil
	}
	recordRun(ctx, cfg.Runtime.HistoryDB, "rename", cf.dir, res.RenamedCount, res.UnchangedCount, res.FailedCount, res.Operations, log)
	renderRenameResult(os.Stdout, res)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	var configPath string
	var limit int
	fs.StringVar(&configPath, "config", "", "Path to config JSON")
	fs.IntVar(&limit, "n", 20, "Number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := history.NewStore(cfg.Runtime.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	renderHistory(os.Stdout, runs)
	return nil
}

// recordRun appends the batch outcome to history. History is best-effort;
// a broken store never fails the batch.
func recordRun(ctx context.Context, dbPath, kind, dir string, succeeded, unchanged, failed int, operations any, log *slog.Logger) {
	store, err := history.NewStore(dbPath)
	if err != nil {
		log.Warn("history unavailable", "err", err)
		return
	}
	defer store.Close()

	opsJSON, err := json.Marshal(operations)
	if err != nil {
		log.Warn("encode operations", "err", err)
		return
	}
	if _, err := store.Append(ctx, history.Record{
		Kind:       kind,
		DirPath:    dir,
		Succeeded:  succeeded,
		Unchanged:  unchanged,
		Failed:     failed,
		Operations: string(opsJSON),
	}); err != nil {
		log.Warn("record run", "err", err)
	}
}
