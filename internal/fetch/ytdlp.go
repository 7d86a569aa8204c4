package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ydownloader/internal/compress"
	"github.com/ytget/ydownloader/internal/model"
	"github.com/ytget/ydownloader/internal/platform"
)

// YTDLP drives the yt-dlp executable through go-ytdlp
type YTDLP struct {
	autoInstall bool
	logger      *slog.Logger

	installOnce sync.Once
	installErr  error
}

// NewYTDLP creates the yt-dlp engine
func NewYTDLP(cfg Config) *YTDLP {
	return &YTDLP{autoInstall: cfg.AutoInstall, logger: cfg.Logger}
}

// Name returns the engine name
func (e *YTDLP) Name() string { return EngineYTDLP }

// commandSpec is the resolved set of yt-dlp options for one attempt
type commandSpec struct {
	Output          string
	Format          string
	MergeFormat     string
	ExtractAudio    bool
	AudioFormat     string
	Retries         string
	FragmentRetries string
	SocketTimeout   float64
}

func buildCommandSpec(opts model.FetchOptions) commandSpec {
	template := opts.FilenameTemplate
	if template == "" {
		template = "%(title)s.%(ext)s"
	}

	spec := commandSpec{
		Output: filepath.Join(opts.OutputDir, template),
		Format: opts.Format.Selector,
	}

	if opts.Format.AudioOnly {
		spec.ExtractAudio = true
		spec.AudioFormat = opts.Format.AudioCodec
	} else {
		spec.MergeFormat = opts.MergeFormat
	}

	if opts.Retries > 0 {
		spec.Retries = strconv.Itoa(opts.Retries)
		spec.FragmentRetries = spec.Retries
	}
	if opts.SocketTimeout > 0 {
		spec.SocketTimeout = opts.SocketTimeout.Seconds()
	}
	return spec
}

func (s commandSpec) command() *ytdlp.Command {
	dl := ytdlp.New().
		NoPlaylist().
		Output(s.Output)

	if s.Format != "" {
		dl = dl.Format(s.Format)
	}
	if s.MergeFormat != "" {
		dl = dl.MergeOutputFormat(s.MergeFormat)
	}
	if s.ExtractAudio {
		dl = dl.ExtractAudio()
		if s.AudioFormat != "" {
			dl = dl.AudioFormat(s.AudioFormat)
		}
	}
	if s.Retries != "" {
		dl = dl.Retries(s.Retries).FragmentRetries(s.FragmentRetries)
	}
	if s.SocketTimeout > 0 {
		dl = dl.SocketTimeout(s.SocketTimeout)
	}
	return dl
}

// Fetch runs one yt-dlp invocation
func (e *YTDLP) Fetch(ctx context.Context, opts model.FetchOptions, progress model.ProgressHandler) (string, error) {
	if err := e.ensureInstalled(ctx); err != nil {
		return "", err
	}
	if progress == nil {
		progress = model.DiscardProgress
	}

	spec := buildCommandSpec(opts)
	e.logger.Debug("running yt-dlp", "output", spec.Output, "format", spec.Format, "audio", spec.ExtractAudio)

	var (
		mu       sync.Mutex
		lastFile string
	)

	dl := spec.command()
	dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
		if update.Filename != "" {
			mu.Lock()
			lastFile = update.Filename
			mu.Unlock()
		}
		progress.OnProgress(progressFromUpdate(update, time.Now()))
	})

	result, err := dl.Run(ctx, opts.URL)
	if err != nil {
		return "", err
	}

	filename := ""
	if result != nil {
		if info, infoErr := result.GetExtractedInfo(); infoErr == nil && len(info) > 0 && info[0].Filename != nil {
			filename = *info[0].Filename
		}
	}
	if filename == "" {
		mu.Lock()
		filename = lastFile
		mu.Unlock()
	}
	return outputFilename(filename, opts.Format), nil
}

// outputFilename maps the name yt-dlp reported for the downloaded stream to
// the file left after audio extraction.
func outputFilename(filename string, sel model.FormatSelection) string {
	if filename == "" || !sel.AudioOnly || sel.AudioCodec == "" {
		return filename
	}
	return platform.ReplaceExtension(filename, compress.ExtFor(sel.AudioCodec))
}

func (e *YTDLP) ensureInstalled(ctx context.Context) error {
	if !e.autoInstall {
		return nil
	}
	e.installOnce.Do(func() {
		e.logger.Debug("ensuring yt-dlp is installed")
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			e.installErr = fmt.Errorf("install yt-dlp: %w", err)
		}
	})
	return e.installErr
}

// progressFromUpdate maps a go-ytdlp update onto a progress event
func progressFromUpdate(update ytdlp.ProgressUpdate, now time.Time) model.ProgressEvent {
	status := model.ParseProgressStatus(string(update.Status))
	ev := progressFromCounters(status, int64(update.DownloadedBytes), int64(update.TotalBytes), update.Started, update.ETA(), now)
	ev.Filename = update.Filename
	return ev
}
