package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/ydownloader/internal/compress"
	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
	"github.com/ytget/ydownloader/internal/platform"
)

// KKDai downloads YouTube streams with kkdai/youtube. Only progressive
// streams are used for video since the library does not mux.
type KKDai struct {
	transcoder Transcoder
	logger     *slog.Logger
	now        func() time.Time
}

// NewKKDai creates the kkdai engine
func NewKKDai(cfg Config) *KKDai {
	return &KKDai{transcoder: cfg.Transcoder, logger: cfg.Logger, now: time.Now}
}

// Name returns the engine name
func (e *KKDai) Name() string { return EngineKKDai }

// Fetch performs one download
func (e *KKDai) Fetch(ctx context.Context, opts model.FetchOptions, progress model.ProgressHandler) (string, error) {
	if progress == nil {
		progress = model.DiscardProgress
	}

	client := youtube.Client{HTTPClient: newHTTPClient(opts.SocketTimeout)}

	video, err := client.GetVideoContext(ctx, opts.URL)
	if err != nil {
		return "", fmt.Errorf("get video info: %w", err)
	}

	format, err := selectFormat(video.Formats, opts.Format)
	if err != nil {
		return "", err
	}
	ext := extFromMime(format.MimeType)
	e.logger.Debug("selected stream", "itag", format.ItagNo, "mime", format.MimeType, "height", format.Height, "bitrate", format.Bitrate)

	progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusStarting})

	stream, size, err := client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("get stream: %w", err)
	}
	defer stream.Close()

	if size <= 0 {
		size = format.ContentLength
	}

	path := filepath.Join(opts.OutputDir, platform.ToSafeFilename(video.Title, ext))
	if err := e.writeStream(stream, size, path, progress); err != nil {
		return "", err
	}
	progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusFinished, Filename: path})

	codec := opts.Format.AudioCodec
	if !needsTranscode(opts.Format, ext) {
		return path, nil
	}
	if e.transcoder == nil {
		e.logger.Warn("no transcoder configured, keeping original audio", "file", path)
		return path, nil
	}

	progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusPostProcessing, Filename: path})
	out, err := e.transcoder.ToAudio(ctx, path, codec)
	if err != nil {
		return "", fmt.Errorf("convert to %s: %w", codec, err)
	}
	return out, nil
}

// needsTranscode reports whether a downloaded stream with extension ext must
// be converted to satisfy an audio-only selection.
func needsTranscode(sel model.FormatSelection, ext string) bool {
	if !sel.AudioOnly || sel.AudioCodec == "" {
		return false
	}
	return !strings.EqualFold(ext, compress.ExtFor(sel.AudioCodec))
}

// writeStream copies r into path through a .part file
func (e *KKDai) writeStream(r io.Reader, size int64, path string, progress model.ProgressHandler) error {
	part := path + ".part"
	f, err := os.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, platform.DefaultFilePermissions)
	if err != nil {
		return &errs.FilesystemError{Op: "create", Path: part, Err: err}
	}

	pr := &progressReader{
		r:        r,
		total:    size,
		meter:    newMeter(e.now),
		handler:  progress,
		interval: ProgressInterval,
	}

	_, copyErr := io.Copy(f, pr)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if rmErr := platform.RemovePartial(part); rmErr != nil {
			e.logger.Warn("failed to remove partial file", "file", part, "error", rmErr)
		}
		return fmt.Errorf("download stream: %w", copyErr)
	}

	if err := os.Rename(part, path); err != nil {
		return &errs.FilesystemError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// selectFormat picks the stream for sel. Audio-only takes the highest-bitrate
// audio stream; video takes the tallest progressive stream within MaxHeight,
// preferring the requested container, and falls back to the best overall.
func selectFormat(formats youtube.FormatList, sel model.FormatSelection) (*youtube.Format, error) {
	if sel.AudioOnly {
		var best *youtube.Format
		for i := range formats {
			f := &formats[i]
			if f.AudioChannels == 0 || !strings.HasPrefix(f.MimeType, "audio/") {
				continue
			}
			if best == nil || f.Bitrate > best.Bitrate {
				best = f
			}
		}
		if best != nil {
			return best, nil
		}
		// No separate audio: take any stream that carries sound
		sel = model.FormatSelection{PreferredExt: sel.PreferredExt}
	}

	var within, fallback *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Height == 0 {
			continue
		}
		if betterVideo(f, fallback, sel.PreferredExt) {
			fallback = f
		}
		if sel.MaxHeight > 0 && f.Height > sel.MaxHeight {
			continue
		}
		if betterVideo(f, within, sel.PreferredExt) {
			within = f
		}
	}

	switch {
	case within != nil:
		return within, nil
	case fallback != nil:
		return fallback, nil
	}
	return nil, errs.ErrNoSuitableFormat
}

func betterVideo(f, cur *youtube.Format, preferredExt string) bool {
	if cur == nil {
		return true
	}
	if preferredExt != "" {
		fp := extFromMime(f.MimeType) == preferredExt
		cp := extFromMime(cur.MimeType) == preferredExt
		if fp != cp {
			return fp
		}
	}
	if f.Height != cur.Height {
		return f.Height > cur.Height
	}
	return f.Bitrate > cur.Bitrate
}

// extFromMime maps a stream mime type such as `video/mp4; codecs="avc1"` to
// a file extension.
func extFromMime(mime string) string {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]))
	switch base {
	case "video/mp4":
		return "mp4"
	case "audio/mp4":
		return "m4a"
	case "video/webm", "audio/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	}
	if i := strings.IndexByte(base, '/'); i >= 0 && i < len(base)-1 {
		return base[i+1:]
	}
	return platform.DefaultExtension
}
