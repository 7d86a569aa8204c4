package model

import (
	"strconv"
	"strings"

	"github.com/ytget/ydownloader/internal/errs"
)

// QualityBest selects the best available stream
const QualityBest Quality = "best"

// Accepted URL schemes
var allowedSchemes = []string{"http://", "https://"}

// Quality is either "best" or a maximum pixel height such as "720"
type Quality string

// ParseQuality normalizes user input into a Quality. It accepts "best" in
// any case, a positive integer, or an integer with a trailing "p".
func ParseQuality(s string) (Quality, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == string(QualityBest) {
		return QualityBest, nil
	}

	h, err := strconv.Atoi(strings.TrimSuffix(v, "p"))
	if err != nil || h <= 0 {
		return "", errs.NewInvalidInput("quality", s, `must be "best" or a positive pixel height`)
	}
	return Quality(strconv.Itoa(h)), nil
}

// IsBest reports whether no height limit applies
func (q Quality) IsBest() bool {
	return q == "" || q == QualityBest
}

// MaxHeight returns the height limit, or 0 for best
func (q Quality) MaxHeight() int {
	if q.IsBest() {
		return 0
	}
	h, err := strconv.Atoi(string(q))
	if err != nil || h < 0 {
		return 0
	}
	return h
}

// String returns the string representation of Quality
func (q Quality) String() string {
	if q == "" {
		return string(QualityBest)
	}
	return string(q)
}

// DownloadRequest describes a single download run. It is built once from
// command-line input and never modified afterwards.
type DownloadRequest struct {
	URL        string
	OutputDir  string
	Quality    Quality
	AudioOnly  bool
	MaxRetries int
}

// Validate checks the request before any network or filesystem activity.
func (r DownloadRequest) Validate() error {
	if !HasAllowedScheme(r.URL) {
		return errs.NewInvalidInput("url", r.URL, "must start with http:// or https://")
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return errs.NewInvalidInput("save path", "", "must not be empty")
	}
	if r.MaxRetries < 1 {
		return errs.NewInvalidInput("retries", strconv.Itoa(r.MaxRetries), "must be at least 1")
	}
	// Audio extraction ignores quality
	if r.AudioOnly {
		return nil
	}
	if _, err := ParseQuality(r.Quality.String()); err != nil {
		return err
	}
	return nil
}

// HasAllowedScheme reports whether url starts with http:// or https://
func HasAllowedScheme(url string) bool {
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}
