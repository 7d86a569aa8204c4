package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
	"github.com/ytget/ydownloader/internal/platform"
)

var ytgetUnsafeChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// YTGet downloads YouTube videos with the pure-Go ytget/ytdlp library
type YTGet struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewYTGet creates the ytget engine
func NewYTGet(cfg Config) *YTGet {
	return &YTGet{logger: cfg.Logger, now: time.Now}
}

// Name returns the engine name
func (e *YTGet) Name() string { return EngineYTGet }

// ValidateSelection rejects audio-only requests; the library has no audio
// stream selection or transcoding.
func (e *YTGet) ValidateSelection(sel model.FormatSelection) error {
	if sel.AudioOnly {
		return &errs.InvalidInputError{
			Field:  "audio-only",
			Reason: "not supported by the " + EngineYTGet + " engine",
			Err:    errs.ErrUnsupportedSelection,
		}
	}
	return nil
}

// ytgetSelector translates a selection into the library's selector and extension
func ytgetSelector(sel model.FormatSelection) (string, string) {
	ext := sel.PreferredExt
	if ext == "" {
		ext = platform.DefaultExtension
	}
	if sel.MaxHeight > 0 {
		return fmt.Sprintf("height<=%d", sel.MaxHeight), ext
	}
	return "best", ext
}

// ytgetFilename reproduces the name ytget/ytdlp gives a download inside an
// output directory. Unlike platform.ToSafeFilename it keeps control
// characters and surrounding dots, and cuts long titles at a byte offset.
func ytgetFilename(title, ext string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = platform.DefaultFileName
	}
	name = ytgetUnsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	if len(name) > platform.MaxFileNameLength {
		name = name[:platform.MaxFileNameLength]
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = platform.DefaultExtension
	}
	return filepath.Clean(name + "." + ext)
}

// Fetch performs one download. The library names the file after the video
// title inside OutputDir.
func (e *YTGet) Fetch(ctx context.Context, opts model.FetchOptions, progress model.ProgressHandler) (string, error) {
	if err := e.ValidateSelection(opts.Format); err != nil {
		return "", err
	}
	if progress == nil {
		progress = model.DiscardProgress
	}

	selector, ext := ytgetSelector(opts.Format)
	m := newMeter(e.now)
	e.logger.Debug("running ytget", "selector", selector, "ext", ext, "dir", opts.OutputDir)

	progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusStarting})

	dl := ytdlp.New().
		WithFormat(selector, ext).
		WithOutputPath(opts.OutputDir).
		WithHTTPClient(newHTTPClient(opts.SocketTimeout)).
		WithProgress(func(p ytdlp.Progress) {
			progress.OnProgress(m.event(p.DownloadedSize, p.TotalSize))
		})

	info, err := dl.Download(ctx, opts.URL)
	if err != nil {
		return "", err
	}

	progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusFinished})

	if info == nil {
		return "", nil
	}
	// The library derives the extension from the stream mime type, so the
	// expected name may differ in extension.
	path, err := platform.FindDownloadedFile(filepath.Join(opts.OutputDir, ytgetFilename(info.Title, ext)))
	if err != nil {
		e.logger.Debug("downloaded file not located", "title", info.Title, "error", err)
		return "", nil
	}
	return path, nil
}
