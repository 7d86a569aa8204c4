package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
)

func testRequest() model.DownloadRequest {
	return model.DownloadRequest{
		URL:        "https://example.com/video",
		OutputDir:  "./downloads",
		Quality:    "480",
		MaxRetries: 2,
	}
}

func TestReporter_Started(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil, nil, "mp3")

	r.Started(testRequest())

	out := buf.String()
	for _, want := range []string{
		"Start downloading...",
		"URL: https://example.com/video",
		"Save in: ./downloads",
		"Quality: 480",
		"Max retries: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Banner missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Only audio") {
		t.Error("Video banner must not mention audio-only")
	}
}

func TestReporter_StartedAudioOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil, nil, "mp3")

	req := testRequest()
	req.AudioOnly = true
	r.Started(req)

	out := buf.String()
	if !strings.Contains(out, "Only audio (MP3)") {
		t.Errorf("Expected audio-only line, got:\n%s", out)
	}
	if strings.Contains(out, "Quality:") {
		t.Error("Audio-only banner must not show quality")
	}
}

func TestReporter_Retrying(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil, nil, "mp3")

	r.Retrying(1, 3, &errs.TransferError{Attempt: 1, Err: errors.New("timed out")}, 5*time.Second)

	out := buf.String()
	if !strings.Contains(out, "Download error (attempt 1/3): timed out") {
		t.Errorf("Unexpected retry notice:\n%s", out)
	}
	if !strings.Contains(out, "Retrying in 5s...") {
		t.Errorf("Expected wait notice:\n%s", out)
	}
}

func TestReporter_Succeeded(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil, nil, "mp3")

	r.Succeeded(&model.Result{Attempts: 1, Filename: "/tmp/downloads/clip.mp4"})

	out := buf.String()
	if !strings.Contains(out, "Successfully downloaded!") {
		t.Errorf("Expected success message:\n%s", out)
	}
	if !strings.Contains(out, "Saved: /tmp/downloads/clip.mp4") {
		t.Errorf("Expected saved path:\n%s", out)
	}

	buf.Reset()
	r.Succeeded(&model.Result{Attempts: 1})
	if strings.Contains(buf.String(), "Saved:") {
		t.Error("Expected no saved line without filename")
	}
}

func TestReporter_BreaksProgressLine(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressRenderer(&buf, nil, true)
	r := NewReporter(&buf, nil, progress, "mp3")

	progress.OnProgress(model.ProgressEvent{Status: model.ProgressStatusDownloading, Percent: "100%"})
	r.Succeeded(&model.Result{})

	if !strings.Contains(buf.String(), "ETA: N/A\nSuccessfully downloaded!") {
		t.Errorf("Expected success on a fresh line, got %q", buf.String())
	}
}

func TestReporter_FailureMessage(t *testing.T) {
	r := NewReporter(&bytes.Buffer{}, nil, nil, "mp3")
	req := testRequest()
	cause := errors.New("HTTP Error 404: Not Found")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			"invalid url",
			errs.NewInvalidInput("url", "example.com", "must start with http:// or https://"),
			"Invalid URL. Must start with http:// or https://",
		},
		{
			"invalid quality",
			errs.NewInvalidInput("quality", "ultra", "bad"),
			`Invalid input: invalid quality "ultra": bad`,
		},
		{
			"filesystem",
			&errs.FilesystemError{Op: "mkdir", Path: "/root/x", Err: errors.New("permission denied")},
			"Cannot prepare save path: mkdir /root/x: permission denied",
		},
		{
			"exhausted",
			&errs.ExhaustedRetriesError{Attempts: 2, Last: &errs.TransferError{Attempt: 2, Err: cause}},
			"Failed to download video after 2 retries: HTTP Error 404: Not Found",
		},
		{
			"interrupted",
			fmt.Errorf("wait: %w", context.Canceled),
			"Download interrupted",
		},
		{
			"other",
			errors.New("boom"),
			"Error: boom",
		},
	}

	for _, test := range tests {
		if got := r.FailureMessage(req, test.err); got != test.expected {
			t.Errorf("%s: got %q, expected %q", test.name, got, test.expected)
		}
	}
}

func TestReporter_Failed_Russian(t *testing.T) {
	var buf bytes.Buffer
	loc := NewLocalization()
	loc.SetLanguage(LanguageRussian)
	r := NewReporter(&buf, loc, nil, "mp3")

	r.Failed(testRequest(), &errs.ExhaustedRetriesError{Attempts: 3, Last: errors.New("x")})

	if !strings.Contains(buf.String(), "после 3 попыток") {
		t.Errorf("Expected Russian failure message, got %q", buf.String())
	}
}
