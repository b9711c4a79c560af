package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/vfind/internal/config"
	"github.com/standardbeagle/vfind/internal/engine"
	vferrors "github.com/standardbeagle/vfind/internal/errors"
	"github.com/standardbeagle/vfind/internal/query"
	"github.com/standardbeagle/vfind/internal/stream"
	"github.com/standardbeagle/vfind/internal/version"
	"github.com/standardbeagle/vfind/pkg/pathutil"
)

var Version = version.Version

func main() {
	app := &cli.App{
		Name:                   "vfind",
		Usage:                  "Streaming file discovery and content search",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "glob", Usage: "Path glob to match (find mode)"},
			&cli.StringFlag{Name: "regex", Usage: "Path regex to match (find mode)"},
			&cli.StringFlag{Name: "search", Usage: "Content regex to search for (search mode)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Exclude glob(s), repeatable"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Restrict to file type: f, d, l, a"},
			&cli.StringSliceFlag{Name: "extension", Aliases: []string{"e"}, Usage: "Restrict to extension(s), repeatable"},
			&cli.StringFlag{Name: "size", Usage: "Size range, e.g. +100, -10M, 1K..5M"},
			&cli.StringFlag{Name: "newer-mtime", Usage: "Only entries modified after RFC3339 time"},
			&cli.StringFlag{Name: "older-mtime", Usage: "Only entries modified before RFC3339 time"},
			&cli.BoolFlag{Name: "hidden", Aliases: []string{"H"}, Usage: "Include hidden files and directories"},
			&cli.BoolFlag{Name: "follow", Aliases: []string{"L"}, Usage: "Follow symlinks"},
			&cli.BoolFlag{Name: "no-ignore", Usage: "Do not respect the global ignore files"},
			&cli.BoolFlag{Name: "no-ignore-vcs", Usage: "Do not respect .gitignore/.git/info/exclude/.fdignore"},
			&cli.BoolFlag{Name: "one-file-system", Usage: "Do not cross filesystem boundaries"},
			&cli.IntFlag{Name: "max-depth", Usage: "Maximum directory depth (0 = unlimited)"},
			&cli.StringSliceFlag{Name: "ignore-file", Usage: "Extra ignore file path, repeatable"},
			&cli.BoolFlag{Name: "case-sensitive", Value: true, Usage: "Case-sensitive path matching"},
			&cli.IntFlag{Name: "threads", Usage: "Worker goroutines (0 = config threads setting, CPUs minus one when unset)"},
			&cli.StringFlag{Name: "sort", Usage: "Sort key: none, name, path, size, mtime"},
			&cli.BoolFlag{Name: "watch", Usage: "Re-run the query whenever a root changes"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress non-fatal per-entry error reporting"},
		},
		Action: runQuery,
		Commands: []*cli.Command{
			{
				Name:   "version",
				Usage:  "Print version information",
				Action: versionCommand,
			},
			{
				Name:  "init-config",
				Usage: "Write a starter .vfind.kdl in the current directory",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
				},
				Action: initConfigCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCommand(c *cli.Context) error {
	fmt.Println(version.FullInfo())
	return nil
}

func initConfigCommand(c *cli.Context) error {
	const path = ".vfind.kdl"
	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	const starter = `project {
    root "."
}
defaults {
    threads 0
    hidden false
    follow_symlinks false
    respect_vcs_ignores true
    respect_global_ignores true
    sort "none"
}
`
	if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Configuration file created: %s\n", path)
	return nil
}

// runQuery is the default action: build a Query from flags + config, run
// Find or Search depending on whether --search was given, and stream
// results to stdout until the iterator is exhausted or the process is
// interrupted.
func runQuery(c *cli.Context) error {
	roots := c.Args().Slice()
	if len(roots) == 0 {
		roots = []string{"."}
	}

	cfg, err := config.Load(roots[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return err
	}

	q, err := buildQuery(c, cfg, roots)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if c.Bool("watch") {
		return watchAndRun(ctx, c, q, roots[0])
	}

	return runOnce(ctx, c, q, roots[0])
}

func buildQuery(c *cli.Context, cfg *config.Config, roots []string) (*query.Query, error) {
	opts := []query.Option{
		query.WithTraversal(query.TraversalFlags{
			IncludeHidden:        c.Bool("hidden") || cfg.Defaults.IncludeHidden,
			FollowSymlinks:       c.Bool("follow") || cfg.Defaults.FollowSymlinks,
			RespectVCSIgnores:    !c.Bool("no-ignore-vcs") && cfg.Defaults.RespectVCSIgnores,
			RespectGlobalIgnores: !c.Bool("no-ignore") && cfg.Defaults.RespectGlobalIgnores,
			StayOnOneFilesystem:  c.Bool("one-file-system") || cfg.Defaults.StayOnOneFilesystem,
			MaxDepth:             orInt(c.Int("max-depth"), cfg.Defaults.MaxDepth),
			ExtraIgnoreFiles:     c.StringSlice("ignore-file"),
		}),
		query.WithMatching(query.MatchingFlags{
			CaseSensitivePath:    c.Bool("case-sensitive"),
			CaseSensitiveContent: c.Bool("case-sensitive"),
		}),
		query.WithThreads(orInt(c.Int("threads"), cfg.Defaults.ResolvedThreads())),
	}

	if g := c.String("glob"); g != "" {
		opts = append(opts, query.WithPathGlob(g))
	}
	if r := c.String("regex"); r != "" {
		re, err := regexp.Compile(r)
		if err != nil {
			return nil, vferrors.NewInvalidPatternError(r, err)
		}
		opts = append(opts, query.WithPathRegex(re))
	}
	excludes := append([]string{}, cfg.Exclude...)
	excludes = append(excludes, c.StringSlice("exclude")...)
	if len(excludes) > 0 {
		opts = append(opts, query.WithExcludePatterns(excludes...))
	}
	if t := c.String("type"); t != "" {
		ft, err := query.ParseFileType(t)
		if err != nil {
			return nil, err
		}
		opts = append(opts, query.WithFileType(ft))
	}
	if exts := c.StringSlice("extension"); len(exts) > 0 {
		opts = append(opts, query.WithExtensions(exts...))
	}
	if size := c.String("size"); size != "" {
		min, max, err := parseSizeRange(size)
		if err != nil {
			return nil, err
		}
		opts = append(opts, query.WithSizeRange(min, max))
	}
	if mt, ok := mtimeRange(c); ok {
		opts = append(opts, query.WithMTime(mt))
	}
	sortKey := c.String("sort")
	if sortKey == "" {
		sortKey = cfg.Defaults.SortKey
	}
	opts = append(opts, query.WithSortKeyName(sortKey))

	if pattern := c.String("search"); pattern != "" {
		opts = append(opts, query.WithContentPattern(pattern, c.Bool("case-sensitive")))
	}

	return query.New(roots, opts...)
}

func runOnce(ctx context.Context, c *cli.Context, q *query.Query, root string) error {
	quiet := c.Bool("quiet")

	var it *stream.Iterator
	var err error
	if q.ContentRegex != nil {
		it, err = engine.Search(ctx, q)
	} else {
		it, err = engine.Find(ctx, q)
	}
	if err != nil {
		return err
	}
	defer it.Close()
	if quiet {
		it.SetErrorSink(nil)
	}

	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		printResult(pathutil.ToRelativeResults([]stream.Result{r}, root)[0])
	}
	return nil
}

func watchAndRun(ctx context.Context, c *cli.Context, q *query.Query, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	for _, r := range q.Roots {
		if err := watcher.Add(r); err != nil {
			return fmt.Errorf("failed to watch %s: %w", r, err)
		}
	}

	if err := runOnce(ctx, c, q, root); err != nil {
		return err
	}

	var debounce *time.Timer
	rerun := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watcher.Events:
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})
		case <-rerun:
			if err := runOnce(ctx, c, q, root); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err := <-watcher.Errors:
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func printResult(r stream.Result) {
	switch r.Kind {
	case stream.KindSearchMatch:
		fmt.Printf("%s:%d:%s\n", r.Match.Path, r.Match.LineNumber, r.Match.LineText)
	default:
		fmt.Println(r.Path)
	}
}

func orInt(flagVal, fallback int) int {
	if flagVal != 0 {
		return flagVal
	}
	return fallback
}

// parseSizeRange accepts fd-style size specs: "+100" (at least), "-10M" (at
// most), or "1K..5M" (inclusive range). Units: B/K/M/G (base 1024).
func parseSizeRange(spec string) (min, max *int64, err error) {
	if strings.Contains(spec, "..") {
		parts := strings.SplitN(spec, "..", 2)
		lo, err := parseSizeValue(parts[0])
		if err != nil {
			return nil, nil, err
		}
		hi, err := parseSizeValue(parts[1])
		if err != nil {
			return nil, nil, err
		}
		return &lo, &hi, nil
	}
	switch {
	case strings.HasPrefix(spec, "+"):
		v, err := parseSizeValue(spec[1:])
		if err != nil {
			return nil, nil, err
		}
		return &v, nil, nil
	case strings.HasPrefix(spec, "-"):
		v, err := parseSizeValue(spec[1:])
		if err != nil {
			return nil, nil, err
		}
		return nil, &v, nil
	default:
		v, err := parseSizeValue(spec)
		if err != nil {
			return nil, nil, err
		}
		return &v, &v, nil
	}
}

func parseSizeValue(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, vferrors.NewInvalidArgumentError("size", s, nil)
	}
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "G"):
		mult = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "M"):
		mult = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, vferrors.NewInvalidArgumentError("size", s, err)
	}
	return n * mult, nil
}

func mtimeRange(c *cli.Context) (query.TimeRange, bool) {
	var tr query.TimeRange
	set := false
	if s := c.String("newer-mtime"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			v := float64(t.Unix())
			tr.After = &v
			set = true
		}
	}
	if s := c.String("older-mtime"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			v := float64(t.Unix())
			tr.Before = &v
			set = true
		}
	}
	return tr, set
}
