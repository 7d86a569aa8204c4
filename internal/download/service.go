package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
	"github.com/ytget/ydownloader/internal/platform"
)

// RunIDPrefix marks run identifiers in log output
const RunIDPrefix = "run-"

// Options tune how the service configures each attempt
type Options struct {
	RetryDelay       time.Duration
	SocketTimeout    time.Duration
	FilenameTemplate string
	MergeFormat      string
	AudioCodec       string
}

// Service orchestrates a single download: validate, prepare the output
// directory, then call the engine until it succeeds or attempts run out.
type Service struct {
	fetcher  Fetcher
	opts     Options
	reporter Reporter
	progress model.ProgressHandler
	logger   *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewService creates a new download service
func NewService(fetcher Fetcher, opts Options) *Service {
	return &Service{
		fetcher:  fetcher,
		opts:     opts,
		reporter: nopReporter{},
		progress: model.DiscardProgress,
		logger:   slog.Default(),
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// SetReporter sets the receiver of status milestones
func (s *Service) SetReporter(r Reporter) {
	if r == nil {
		r = nopReporter{}
	}
	s.reporter = r
}

// SetProgressHandler sets the handler engines forward progress events to
func (s *Service) SetProgressHandler(h model.ProgressHandler) {
	if h == nil {
		h = model.DiscardProgress
	}
	s.progress = h
}

// SetLogger sets the diagnostic logger
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Run executes the request. Every returned error has already been passed to
// the reporter; callers only decide the exit status.
func (s *Service) Run(ctx context.Context, req model.DownloadRequest) (*model.Result, error) {
	runID := generateRunID()
	logger := s.logger.With("run_id", runID)

	if err := req.Validate(); err != nil {
		logger.Debug("request rejected", "error", err)
		s.reporter.Failed(req, err)
		return nil, err
	}

	sel := BuildFormatSelection(req.Quality, req.AudioOnly, s.opts.AudioCodec)
	if v, ok := s.fetcher.(SelectionValidator); ok {
		if err := v.ValidateSelection(sel); err != nil {
			logger.Debug("selection rejected by engine", "selector", sel.Selector, "error", err)
			s.reporter.Failed(req, err)
			return nil, err
		}
	}

	s.reporter.Started(req)

	if err := platform.CreateDirectoryIfNotExists(req.OutputDir); err != nil {
		logger.Error("failed to prepare output directory", "path", req.OutputDir, "error", err)
		s.reporter.Failed(req, err)
		return nil, err
	}

	opts := model.FetchOptions{
		URL:              req.URL,
		OutputDir:        req.OutputDir,
		FilenameTemplate: s.opts.FilenameTemplate,
		Format:           sel,
		MergeFormat:      s.opts.MergeFormat,
		Retries:          req.MaxRetries,
		SocketTimeout:    s.opts.SocketTimeout,
	}

	start := s.now()
	filename, attempts, err := s.downloadWithRetry(ctx, logger, opts, req.MaxRetries)
	if err != nil {
		s.reporter.Failed(req, err)
		return nil, err
	}

	if filename != "" && !filepath.IsAbs(filename) {
		if abs, absErr := filepath.Abs(filename); absErr == nil {
			filename = abs
		}
	}

	res := &model.Result{
		RunID:    runID,
		Attempts: attempts,
		Filename: filename,
		Elapsed:  s.now().Sub(start),
	}
	logger.Info("download finished", "attempts", attempts, "file", filename, "elapsed", res.Elapsed)
	s.reporter.Succeeded(res)
	return res, nil
}

// downloadWithRetry attempts the download up to maxAttempts times. It returns
// the engine-reported filename and the number of attempts made.
func (s *Service) downloadWithRetry(ctx context.Context, logger *slog.Logger, opts model.FetchOptions, maxAttempts int) (string, int, error) {
	counter := model.NewAttemptCounter(maxAttempts)

	for {
		attempt := counter.Count() + 1
		logger.Debug("download attempt", "attempt", attempt, "max", counter.Max(), "selector", opts.Format.Selector)

		tracker := &attemptProgress{next: s.progress, logger: logger}
		filename, err := s.fetcher.Fetch(ctx, opts, tracker)
		if err == nil {
			if filename == "" {
				filename = tracker.finishedFile()
			}
			return filename, attempt, nil
		}

		// Cancellation is not a transfer failure
		if ctx.Err() != nil {
			return "", attempt, ctx.Err()
		}

		transferErr := &errs.TransferError{Attempt: attempt, Err: err}
		if !errs.IsRetryable(transferErr) {
			return "", attempt, err
		}

		counter.Inc()
		logger.Warn("download attempt failed", "attempt", attempt, "remaining", counter.Remaining(), "error", err)

		if counter.Exhausted() {
			return "", counter.Count(), &errs.ExhaustedRetriesError{Attempts: counter.Count(), Last: transferErr}
		}

		s.reporter.Retrying(attempt, counter.Max(), err, s.opts.RetryDelay)
		if err := s.sleep(ctx, s.opts.RetryDelay); err != nil {
			return "", counter.Count(), err
		}
	}
}

// sleepContext blocks for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// generateRunID generates a unique run ID using UUID v7 so IDs sort by start time
func generateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RunIDPrefix+"%d", time.Now().UnixNano())
	}
	return RunIDPrefix + id.String()
}

// attemptProgress forwards engine events for one attempt and remembers the
// file named by the engine's finished event.
type attemptProgress struct {
	next   model.ProgressHandler
	logger *slog.Logger

	mu       sync.Mutex
	filename string
}

func (p *attemptProgress) OnProgress(event model.ProgressEvent) {
	if event.Status.IsFinished() {
		p.logger.Debug("engine reported terminal status", "status", event.Status, "file", event.Filename)
		if event.Status == model.ProgressStatusFinished && event.Filename != "" {
			p.mu.Lock()
			p.filename = event.Filename
			p.mu.Unlock()
		}
	}
	p.next.OnProgress(event)
}

func (p *attemptProgress) finishedFile() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filename
}

type nopReporter struct{}

func (nopReporter) Started(model.DownloadRequest)           {}
func (nopReporter) Retrying(int, int, error, time.Duration) {}
func (nopReporter) Succeeded(*model.Result)                  {}
func (nopReporter) Failed(model.DownloadRequest, error)      {}
