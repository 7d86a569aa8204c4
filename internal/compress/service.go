package compress

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
	"github.com/ytget/ydownloader/internal/platform"
)

// FFmpeg constants for audio extraction
const (
	// Audio bitrate for lossy codecs
	AudioBitrate = "192k"

	// Output suffix used when the source already has the target extension
	AudioSuffix = "-audio"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="

	// Number of ffmpeg diagnostic lines kept for error messages
	stderrTailLines = 5
)

// codec describes how ffmpeg produces one target audio format
type codec struct {
	lib      string
	ext      string
	lossless bool
}

var codecs = map[string]codec{
	"mp3":    {lib: "libmp3lame", ext: "mp3"},
	"aac":    {lib: "aac", ext: "m4a"},
	"m4a":    {lib: "aac", ext: "m4a"},
	"opus":   {lib: "libopus", ext: "opus"},
	"vorbis": {lib: "libvorbis", ext: "ogg"},
	"flac":   {lib: "flac", ext: "flac", lossless: true},
	"wav":    {lib: "pcm_s16le", ext: "wav", lossless: true},
}

// SupportedCodecs returns the audio codecs ToAudio accepts
func SupportedCodecs() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupportedCodec reports whether name is a known target codec
func IsSupportedCodec(name string) bool {
	_, ok := codecs[strings.ToLower(name)]
	return ok
}

// ExtFor returns the file extension produced for codecName. Unknown codecs
// map to their own lower-cased name.
func ExtFor(codecName string) string {
	name := strings.ToLower(codecName)
	if c, ok := codecs[name]; ok {
		return c.ext
	}
	return name
}

// Service extracts audio tracks with ffmpeg
type Service struct {
	ffmpeg   string
	ffprobe  string
	logger   *slog.Logger
	progress model.ProgressHandler
}

// NewService creates a new audio extraction service
func NewService() *Service {
	return &Service{
		ffmpeg:   FFmpegCommand,
		ffprobe:  FFprobeCommand,
		logger:   slog.Default(),
		progress: model.DiscardProgress,
	}
}

// SetLogger sets the logger used for diagnostics
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetProgressHandler sets the receiver of post-processing progress events
func (s *Service) SetProgressHandler(h model.ProgressHandler) {
	if h != nil {
		s.progress = h
	}
}

// ToAudio converts inputPath to an audio-only file encoded with codecName.
// The source is removed on success; a partial output is removed on failure.
func (s *Service) ToAudio(ctx context.Context, inputPath, codecName string) (string, error) {
	c, ok := codecs[strings.ToLower(codecName)]
	if !ok {
		return "", &errs.InvalidInputError{
			Field:  "audio codec",
			Value:  codecName,
			Reason: "must be one of " + strings.Join(SupportedCodecs(), ", "),
			Err:    errs.ErrUnsupportedSelection,
		}
	}

	if _, err := os.Stat(inputPath); err != nil {
		return "", &errs.FilesystemError{Op: "stat", Path: inputPath, Err: err}
	}

	ffmpeg, err := exec.LookPath(s.ffmpeg)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrToolMissing, s.ffmpeg)
	}

	outputPath := generateOutputPath(inputPath, c.ext)
	logger := s.logger.With("input", inputPath, "output", outputPath)

	duration, err := s.getDuration(ctx, inputPath)
	if err != nil {
		// Progress is optional; conversion still runs
		logger.Debug("failed to probe duration", "error", err)
	}

	s.progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusPostProcessing, Filename: outputPath})

	cmd := exec.CommandContext(ctx, ffmpeg, BuildFFmpegArgs(inputPath, outputPath, codecName)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var tail []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tail = s.monitorProgress(stderr, duration, outputPath)
	}()

	// Drain stderr before Wait closes the pipe
	wg.Wait()
	err = cmd.Wait()

	if err != nil {
		if rmErr := platform.RemovePartial(outputPath); rmErr != nil {
			logger.Warn("failed to remove partial output", "error", rmErr)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if len(tail) > 0 {
			return "", fmt.Errorf("ffmpeg failed: %w: %s", err, strings.Join(tail, "; "))
		}
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	if err := os.Remove(inputPath); err != nil {
		logger.Warn("failed to remove source file", "error", err)
	}
	s.progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusFinished, Filename: outputPath})
	logger.Debug("audio extracted", "codec", codecName)

	return outputPath, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments for audio extraction
func BuildFFmpegArgs(inputPath, outputPath, codecName string) []string {
	c, ok := codecs[strings.ToLower(codecName)]
	if !ok {
		c = codecs["mp3"]
	}

	args := []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vn",           // Drop video
		"-c:a", c.lib,   // Audio codec
	}
	if !c.lossless {
		args = append(args, "-b:a", AudioBitrate)
	}
	return append(args,
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats", // No stats output
		outputPath, // Output file
	)
}

// getDuration returns the media duration in seconds using ffprobe
func (s *Service) getDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress turns ffmpeg -progress output into post-processing events
// and returns the last diagnostic lines.
func (s *Service) monitorProgress(r io.Reader, totalDuration float64, outputPath string) []string {
	var tail []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Parse progress line: out_time_us=123456
		if strings.HasPrefix(line, ProgressTimePrefix) {
			us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
			if err != nil || totalDuration <= 0 {
				continue
			}
			percent := float64(us) / 1e6 / totalDuration * 100
			s.progress.OnProgress(model.ProgressEvent{
				Status:   model.ProgressStatusPostProcessing,
				Percent:  model.FormatPercent(percent),
				Filename: outputPath,
			})
			continue
		}

		// key=value lines are progress bookkeeping
		if strings.Contains(line, "=") && !strings.Contains(line, " ") {
			continue
		}

		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	return tail
}

// generateOutputPath swaps the extension of inputPath for ext, adding a
// suffix when the two would collide.
func generateOutputPath(inputPath, ext string) string {
	out := platform.ReplaceExtension(inputPath, ext)
	if out == inputPath {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		out = base + AudioSuffix + "." + ext
	}
	return out
}
