package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chris00234/web-crawler/internal/config"
	"github.com/chris00234/web-crawler/internal/corpus"
	"github.com/chris00234/web-crawler/internal/crawler"
	"github.com/chris00234/web-crawler/internal/database"
	"github.com/chris00234/web-crawler/internal/frontier"
	"github.com/chris00234/web-crawler/internal/model"
	"github.com/chris00234/web-crawler/internal/pipeline"
	"github.com/chris00234/web-crawler/internal/report"
)

// resumeLatest is the --resume value used when no run ID is given.
const resumeLatest = "latest"

// errResumeWithoutDB is returned when --resume and --no-db are combined.
var errResumeWithoutDB = errors.New("--resume needs the checkpoint database; drop --no-db")

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl from seed URLs and write a report",
		Long: `Crawl fetches the seed URLs and every link that stays inside the scope,
skipping crawler traps, and writes a report when the frontier is exhausted.

Progress is checkpointed to a SQLite database. Interrupting the crawl
(Ctrl-C) still writes the report and a final checkpoint, and the crawl can
be continued later with --resume.

Examples:
  # Crawl the default domain from one seed
  webcrawler crawl https://www.ics.uci.edu/

  # Markdown report, four workers, at most two requests per second
  webcrawler crawl -f markdown -o report.md -w 4 --rate 2 https://www.ics.uci.edu/

  # Continue the most recent run
  webcrawler crawl --resume

  # Crawl a stored corpus instead of the network
  webcrawler crawl --corpus-dir ./corpus https://www.ics.uci.edu/`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webcrawler.yaml or the XDG config dir)")
	cmd.Flags().String("scope", config.DefaultScope,
		"Host suffix URLs must end with")

	cmd.Flags().StringP("output", "o", config.DefaultReportFile,
		"Report file path (creates directories if needed)")
	cmd.Flags().StringP("format", "f", config.DefaultReportFormat,
		"Report format: text, markdown or json; a comma-separated list writes one file per format")
	cmd.Flags().Int("top", config.DefaultTopWords,
		"Number of most common words in the report")

	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of pages processed concurrently")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Stop after this many fetches (0 = unlimited)")
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second (0 = unlimited)")
	cmd.Flags().String("proxy", "",
		"Proxy URL (http://, https://, socks5:// or socks5h://)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header")
	cmd.Flags().String("cache-dir", "",
		"Store every fetched page in this directory (the XDG cache dir when given without a value)")
	cmd.Flags().Lookup("cache-dir").NoOptDefVal = config.XDGCacheDir()
	cmd.Flags().String("corpus-dir", "",
		"Crawl pages stored in this directory instead of the network")

	cmd.Flags().String("db-dir", "",
		"Checkpoint database directory (default: XDG data dir)")
	cmd.Flags().Int("checkpoint-every", config.DefaultCheckpointEvery,
		"Processed pages between checkpoints (0 = final checkpoint only)")
	cmd.Flags().String("resume", "",
		"Resume a run by ID, or the latest run when given without a value")
	cmd.Flags().Lookup("resume").NoOptDefVal = resumeLatest
	cmd.Flags().Bool("no-db", false,
		"Do not checkpoint the crawl")
	cmd.Flags().Bool("progress", false,
		"Show a progress bar on stderr")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	resume, err := cmd.Flags().GetString("resume")
	if err != nil {
		return err
	}
	if resume != "" && !cfg.SaveToDB {
		return errResumeWithoutDB
	}
	progress, err := cmd.Flags().GetBool("progress")
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing in-flight pages...")
			cancel()
		case <-ctx.Done():
		}
	}()

	job := &crawlJob{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}
	if progress {
		job.progress = cmd.ErrOrStderr()
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		job.db = db

		if resume != "" {
			if err := job.loadRun(ctx, resume); err != nil {
				return err
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return job.run(ctx)
}

// buildConfig layers defaults, the configuration file and the flags the
// user actually set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	for _, apply := range []func() error{
		func() error { return override(cmd, "scope", &cfg.Scope, flags.GetString) },
		func() error { return override(cmd, "output", &cfg.ReportFile, flags.GetString) },
		func() error { return override(cmd, "format", &cfg.ReportFormat, flags.GetString) },
		func() error { return override(cmd, "top", &cfg.TopWords, flags.GetInt) },
		func() error { return override(cmd, "workers", &cfg.Workers, flags.GetInt) },
		func() error { return override(cmd, "timeout", &cfg.Timeout, flags.GetDuration) },
		func() error { return override(cmd, "max-pages", &cfg.MaxPages, flags.GetInt) },
		func() error { return override(cmd, "rate", &cfg.RequestsPerSecond, flags.GetFloat64) },
		func() error { return override(cmd, "proxy", &cfg.Proxy, flags.GetString) },
		func() error { return override(cmd, "user-agent", &cfg.UserAgent, flags.GetString) },
		func() error { return override(cmd, "cache-dir", &cfg.CacheDir, flags.GetString) },
		func() error { return override(cmd, "corpus-dir", &cfg.CorpusDir, flags.GetString) },
		func() error { return override(cmd, "db-dir", &cfg.DBDir, flags.GetString) },
		func() error { return override(cmd, "checkpoint-every", &cfg.CheckpointEvery, flags.GetInt) },
	} {
		if err := apply(); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFile = getLogFileFlag(cmd)
	if len(args) > 0 {
		cfg.Seeds = args
	}
	return cfg, nil
}

// override copies a flag into dst when the user set it explicitly, so
// values from the configuration file survive untouched flags.
func override[T any](cmd *cobra.Command, name string, dst *T, get func(string) (T, error)) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// crawlJob is one crawl run: its configuration, its crawl state and the
// checkpoint it resumes from.
type crawlJob struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	// progress receives the progress bar when non-nil.
	progress io.Writer

	db     *database.CheckpointDB
	runID  string
	resume *database.Checkpoint

	state *model.CrawlState
	queue *frontier.Queue
}

// loadRun selects the run to resume and loads its checkpoint. Seeds
// recorded with the run are used when none were given.
func (j *crawlJob) loadRun(ctx context.Context, id string) error {
	run, err := findRun(ctx, j.db, id)
	if err != nil {
		return err
	}
	cp, err := j.db.LoadState(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	j.runID = run.ID
	j.resume = cp
	if len(j.cfg.Seeds) == 0 {
		j.cfg.Seeds = run.Seeds
	}
	j.logger.Info("resuming run", "run", run.ID, "fetched", cp.Fetched, "pending", len(cp.Pending))
	return nil
}

// findRun returns the run with the given ID, or the latest one for
// resumeLatest.
func findRun(ctx context.Context, db *database.CheckpointDB, id string) (*database.Run, error) {
	if id == "" || id == resumeLatest {
		return db.LatestRun(ctx)
	}
	return db.GetRun(ctx, id)
}

// prepare builds the crawl state and frontier, restoring the checkpoint
// when resuming.
func (j *crawlJob) prepare() {
	queueOpts := []frontier.QueueOption{frontier.WithMaxFetch(j.cfg.MaxPages)}
	if j.resume != nil {
		j.state = model.NewCrawlStateFromSnapshot(j.resume.State)
		queueOpts = append(queueOpts, frontier.WithFetched(j.resume.Fetched))
	} else {
		j.state = model.NewCrawlState()
	}
	j.queue = frontier.NewQueue(queueOpts...)

	if j.resume == nil || j.resume.Fetched == 0 {
		for _, seed := range j.cfg.Seeds {
			j.queue.AddURL(seed)
		}
		return
	}

	for _, u := range j.resume.Pending {
		j.queue.AddURL(u)
	}
	j.queue.MarkSeen(j.cfg.Seeds...)
	j.queue.MarkSeen(j.resume.State.Accepted...)
	j.queue.MarkSeen(j.resume.State.Traps...)
}

// newCorpus returns the offline corpus when configured, and the HTTP
// fetcher otherwise.
func (j *crawlJob) newCorpus() (pipeline.Corpus, error) {
	if j.cfg.CorpusDir != "" {
		return corpus.NewFileCorpus(j.cfg.CorpusDir)
	}
	return corpus.NewHTTPCorpus(
		corpus.WithUserAgent(j.cfg.UserAgent),
		corpus.WithTimeout(j.cfg.Timeout),
		corpus.WithMaxBodySize(j.cfg.MaxBodySize),
		corpus.WithRate(j.cfg.RequestsPerSecond),
		corpus.WithProxy(j.cfg.Proxy),
		corpus.WithCacheDir(j.cfg.CacheDir),
		corpus.WithLogger(j.logger),
	)
}

// run crawls until the frontier is empty or ctx is cancelled, then writes
// the final checkpoint and the report.
func (j *crawlJob) run(ctx context.Context) error {
	formats, err := report.ParseFormats(j.cfg.ReportFormat)
	if err != nil {
		return err
	}

	if j.db != nil && j.runID == "" {
		j.runID, err = j.db.CreateRun(ctx, j.cfg.Seeds)
		if err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
	}

	j.prepare()
	source, err := j.newCorpus()
	if err != nil {
		return fmt.Errorf("failed to set up fetching: %w", err)
	}

	detector := crawler.NewTrapDetector(j.state,
		crawler.WithMaxURLLength(j.cfg.MaxURLLength),
		crawler.WithFamilyThreshold(j.cfg.FamilyThreshold),
		crawler.WithRepeatThreshold(j.cfg.RepeatThreshold),
	)
	validator := crawler.NewValidator(j.state, detector,
		crawler.WithScope(j.cfg.Scope),
		crawler.WithDeniedExtensions(j.cfg.DeniedExtensions),
		crawler.WithValidatorLogger(j.logger),
	)
	extractor := crawler.NewExtractor(j.state, crawler.WithExtractorLogger(j.logger))

	p := pipeline.New(
		pipeline.CrawlSteps(j.queue, source, extractor, validator),
		pipeline.WithLogger(j.logger),
	)

	engineOpts := []pipeline.EngineOption{
		pipeline.WithWorkers(j.cfg.Workers),
		pipeline.WithEngineLogger(j.logger),
	}
	if j.db != nil {
		engineOpts = append(engineOpts, pipeline.WithCheckpoint(j.cfg.CheckpointEvery, j.checkpoint))
	}

	var bar *progressbar.ProgressBar
	if j.progress != nil {
		bar = newProgressBar(j.progress, j.cfg.MaxPages)
		engineOpts = append(engineOpts, pipeline.WithPageHook(func(*pipeline.Task) {
			_ = bar.Add(1)
		}))
	}

	j.logger.Info("starting crawl",
		"seeds", j.cfg.Seeds,
		"scope", j.cfg.Scope,
		"run", j.runID,
		"offline", j.cfg.CorpusDir != "",
		"steps", p.StepNames(),
	)

	stats, runErr := pipeline.NewEngine(j.queue, p, engineOpts...).Run(ctx)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(j.progress)
	}
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return runErr
	}

	// The crawl context may be cancelled; the final writes must still happen.
	finalCtx := context.WithoutCancel(ctx)
	if j.db != nil {
		if err := j.checkpoint(finalCtx); err != nil {
			return fmt.Errorf("failed to write final checkpoint: %w", err)
		}
		if !interrupted {
			if err := j.db.FinishRun(finalCtx, j.runID); err != nil {
				return fmt.Errorf("failed to finish run: %w", err)
			}
		}
	}

	paths, err := report.WriteFiles(j.cfg.ReportFile, formats, j.state.Snapshot(),
		report.WithTopWords(j.cfg.TopWords))
	if err != nil {
		return err
	}

	j.printSummary(stats, interrupted, paths)
	return nil
}

// checkpoint saves the crawl state and the pending frontier.
func (j *crawlJob) checkpoint(ctx context.Context) error {
	cp := &database.Checkpoint{
		State:   j.state.Snapshot(),
		Pending: j.queue.Pending(),
		Fetched: j.queue.Fetched(),
	}
	if err := j.db.SaveState(ctx, j.runID, cp); err != nil {
		return err
	}
	j.logger.Debug("checkpoint saved", "run", j.runID, "fetched", cp.Fetched, "pending", len(cp.Pending))
	return nil
}

func (j *crawlJob) printSummary(stats pipeline.Stats, interrupted bool, reports []string) {
	counts := j.state.Counts()
	fmt.Fprintf(j.out, "Crawled %d pages (%d failed) in %s\n",
		stats.Processed, stats.Failed, stats.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(j.out, "Identified %d URLs, filtered %d traps\n", counts.Accepted, counts.Traps)
	fmt.Fprintf(j.out, "Report written to %s\n", strings.Join(reports, ", "))
	switch {
	case interrupted && j.runID != "":
		fmt.Fprintf(j.out, "Crawl interrupted; continue with: webcrawler crawl --resume=%s\n", j.runID)
	case interrupted:
		fmt.Fprintln(j.out, "Crawl interrupted")
	case j.runID != "":
		fmt.Fprintf(j.out, "Run ID: %s\n", j.runID)
	}
}

// newProgressBar creates the crawl progress bar. Without a page limit the
// bar only counts.
func newProgressBar(w io.Writer, maxPages int) *progressbar.ProgressBar {
	limit := -1
	if maxPages > 0 {
		limit = maxPages
	}
	return progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("crawling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
