package compress

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
)

func TestNewService(t *testing.T) {
	service := NewService()

	if service.ffmpeg != FFmpegCommand {
		t.Errorf("Expected ffmpeg command %q, got %q", FFmpegCommand, service.ffmpeg)
	}
	if service.progress == nil || service.logger == nil {
		t.Error("Expected default progress handler and logger")
	}
}

func TestGenerateOutputPath(t *testing.T) {
	tests := []struct {
		input    string
		ext      string
		expected string
	}{
		{"/path/to/video.webm", "mp3", "/path/to/video.mp3"},
		{"/path/to/video.m4a", "mp3", "/path/to/video.mp3"},
		{"/path/to/song.mp3", "mp3", "/path/to/song-audio.mp3"},
		{"video", "ogg", "video.ogg"},
	}

	for _, test := range tests {
		result := generateOutputPath(test.input, test.ext)
		if result != test.expected {
			t.Errorf("generateOutputPath(%s, %s) = %s, expected %s", test.input, test.ext, result, test.expected)
		}
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	args := BuildFFmpegArgs("/input.webm", "/output.mp3", "mp3")

	expectedArgs := []string{
		"-y",
		"-i", "/input.webm",
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", AudioBitrate,
		"-progress", "pipe:2",
		"-nostats",
		"/output.mp3",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d: %v", len(expectedArgs), len(args), args)
	}

	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestBuildFFmpegArgs_Lossless(t *testing.T) {
	args := BuildFFmpegArgs("/in.webm", "/out.flac", "FLAC")

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-c:a flac") {
		t.Errorf("Expected flac encoder, got %v", args)
	}
	if strings.Contains(joined, "-b:a") {
		t.Errorf("Lossless output must not set a bitrate, got %v", args)
	}
}

func TestSupportedCodecs(t *testing.T) {
	names := SupportedCodecs()
	if len(names) == 0 {
		t.Fatal("Expected supported codecs")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Expected sorted codecs, got %v", names)
		}
	}
	if !IsSupportedCodec("MP3") || !IsSupportedCodec("opus") {
		t.Error("Expected mp3 and opus to be supported")
	}
	if IsSupportedCodec("midi") {
		t.Error("midi must not be supported")
	}
}

func TestExtFor(t *testing.T) {
	tests := map[string]string{
		"mp3":    "mp3",
		"aac":    "m4a",
		"m4a":    "m4a",
		"vorbis": "ogg",
		"opus":   "opus",
		"FLAC":   "flac",
		"wav":    "wav",
		"alac":   "alac",
	}

	for codec, expected := range tests {
		if got := ExtFor(codec); got != expected {
			t.Errorf("ExtFor(%q) = %q, expected %q", codec, got, expected)
		}
	}
}

func TestToAudio_UnknownCodec(t *testing.T) {
	service := NewService()

	_, err := service.ToAudio(context.Background(), "/tmp/whatever.webm", "midi")
	if !errs.IsInvalidInput(err) {
		t.Errorf("Expected InvalidInputError, got %v", err)
	}
}

func TestToAudio_NonExistentFile(t *testing.T) {
	service := NewService()

	_, err := service.ToAudio(context.Background(), "/path/to/nonexistent/file.webm", "mp3")
	if !errs.IsFilesystem(err) {
		t.Errorf("Expected FilesystemError, got %v", err)
	}
}

func TestToAudio_ToolMissing(t *testing.T) {
	service := NewService()
	service.ffmpeg = "ffmpeg-does-not-exist-on-this-host"

	input := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(input, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}

	_, err := service.ToAudio(context.Background(), input, "mp3")
	if !errors.Is(err, errs.ErrToolMissing) {
		t.Errorf("Expected ErrToolMissing, got %v", err)
	}
	if _, statErr := os.Stat(input); statErr != nil {
		t.Error("Source must be kept when conversion does not run")
	}
}

func TestToAudio_FailedRunKeepsSource(t *testing.T) {
	if _, err := exec.LookPath(FFmpegCommand); err != nil {
		t.Skip("ffmpeg not installed")
	}

	service := NewService()
	input := filepath.Join(t.TempDir(), "broken.webm")
	if err := os.WriteFile(input, []byte("not a media file"), 0644); err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}

	_, err := service.ToAudio(context.Background(), input, "mp3")
	if err == nil {
		t.Fatal("Expected ffmpeg to fail on garbage input")
	}
	if _, statErr := os.Stat(input); statErr != nil {
		t.Error("Source must be kept on failure")
	}
	if _, statErr := os.Stat(generateOutputPath(input, "mp3")); !os.IsNotExist(statErr) {
		t.Error("Partial output must be removed on failure")
	}
}

func TestMonitorProgress(t *testing.T) {
	service := NewService()

	var events []model.ProgressEvent
	service.SetProgressHandler(model.ProgressHandlerFunc(func(ev model.ProgressEvent) {
		events = append(events, ev)
	}))

	stderr := strings.Join([]string{
		"out_time_us=5000000",
		"progress=continue",
		"out_time_us=bogus",
		"out_time_us=10000000",
		"[mp3 @ 0x1] Estimating duration from bitrate",
		"Conversion failed!",
		"progress=end",
	}, "\n")

	tail := service.monitorProgress(strings.NewReader(stderr), 10, "/out.mp3")

	if len(events) != 2 {
		t.Fatalf("Expected 2 progress events, got %d", len(events))
	}
	if events[0].Percent != " 50.0%" || events[1].Percent != "100.0%" {
		t.Errorf("Unexpected percents %q, %q", events[0].Percent, events[1].Percent)
	}
	if events[0].Status != model.ProgressStatusPostProcessing {
		t.Errorf("Expected post_processing status, got %s", events[0].Status)
	}

	if len(tail) != 2 || tail[1] != "Conversion failed!" {
		t.Errorf("Unexpected diagnostic tail %v", tail)
	}
}

func TestMonitorProgress_UnknownDuration(t *testing.T) {
	service := NewService()

	var events int
	service.SetProgressHandler(model.ProgressHandlerFunc(func(model.ProgressEvent) { events++ }))

	service.monitorProgress(strings.NewReader("out_time_us=5000000\n"), 0, "/out.mp3")

	if events != 0 {
		t.Errorf("Expected no percent events without a duration, got %d", events)
	}
}

func TestMonitorProgress_TailIsBounded(t *testing.T) {
	service := NewService()

	var lines []string
	for i := 0; i < stderrTailLines+3; i++ {
		lines = append(lines, "error line")
	}

	tail := service.monitorProgress(strings.NewReader(strings.Join(lines, "\n")), 0, "/out.mp3")
	if len(tail) != stderrTailLines {
		t.Errorf("Expected %d tail lines, got %d", stderrTailLines, len(tail))
	}
}
