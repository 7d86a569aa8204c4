package model

import (
	"fmt"
	"strings"
	"time"
)

// FormatSelection describes which streams an engine should fetch.
// Selector uses the yt-dlp declarative syntax; engines without a selector
// language work from the structured fields instead.
type FormatSelection struct {
	Selector     string
	AudioOnly    bool
	MaxHeight    int    // 0 means no limit
	PreferredExt string // container preferred for video, e.g. "mp4"
	AudioCodec   string // target codec for audio-only post-processing, e.g. "mp3"
}

// FetchOptions is the configuration object handed to an engine for one attempt
type FetchOptions struct {
	URL              string
	OutputDir        string
	FilenameTemplate string // yt-dlp output template relative to OutputDir
	Format           FormatSelection
	MergeFormat      string        // container used when merging separate video and audio
	Retries          int           // engine-internal retries for network and fragment errors
	SocketTimeout    time.Duration // per-socket timeout
}

// Result summarizes a successful run
type Result struct {
	RunID    string
	Attempts int
	Filename string        // path of the downloaded file, if the engine reported one
	Elapsed  time.Duration // wall time across all attempts
}

// FormatETA returns a duration formatted as hh:mm:ss or mm:ss, or "" if unknown
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}

	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var b strings.Builder
	if hours > 0 {
		b.WriteString(fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("%02d:%02d", minutes, seconds))
	return b.String()
}

// FormatPercent renders a 0-100 percentage the way download tools print it
func FormatPercent(p float64) string {
	if p < 0 {
		return ""
	}
	if p > 100 {
		p = 100
	}
	return fmt.Sprintf("%5.1f%%", p)
}
