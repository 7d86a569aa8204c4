package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
)

// Reporter prints orchestration milestones: the start banner, retry notices
// and the final outcome.
type Reporter struct {
	out        io.Writer
	loc        *Localization
	progress   *ProgressRenderer
	audioCodec string
}

// NewReporter creates a reporter. progress may be nil.
func NewReporter(out io.Writer, loc *Localization, progress *ProgressRenderer, audioCodec string) *Reporter {
	if loc == nil {
		loc = NewLocalization()
	}
	return &Reporter{out: out, loc: loc, progress: progress, audioCodec: audioCodec}
}

// Started prints the run banner
func (r *Reporter) Started(req model.DownloadRequest) {
	r.breakLine()
	fmt.Fprintln(r.out)
	r.println(r.loc.GetText(KeyStart))
	r.println(r.loc.Sprintf(KeyURL, req.URL))
	r.println(r.loc.Sprintf(KeySaveIn, req.OutputDir))
	if req.AudioOnly {
		r.println(r.loc.Sprintf(KeyAudioOnly, strings.ToUpper(r.audioCodec)))
	} else {
		r.println(r.loc.Sprintf(KeyQuality, req.Quality.String()))
	}
	r.println(r.loc.Sprintf(KeyMaxRetries, req.MaxRetries))
}

// Retrying prints the failed attempt and the wait before the next one
func (r *Reporter) Retrying(attempt, max int, err error, delay time.Duration) {
	r.breakLine()
	r.println(r.loc.Sprintf(KeyRetryError, attempt, max, errs.Cause(err)))
	r.println(r.loc.Sprintf(KeyRetryWait, delay))
}

// Succeeded prints the success message and the saved file, if known
func (r *Reporter) Succeeded(res *model.Result) {
	r.breakLine()
	r.println(r.loc.GetText(KeySuccess))
	if res != nil && res.Filename != "" {
		r.println(r.loc.Sprintf(KeySaved, res.Filename))
	}
}

// Failed prints a message matching the error class
func (r *Reporter) Failed(req model.DownloadRequest, err error) {
	r.breakLine()
	r.println(r.FailureMessage(req, err))
}

// FailureMessage returns the user-facing text for err
func (r *Reporter) FailureMessage(req model.DownloadRequest, err error) string {
	var invalid *errs.InvalidInputError
	var exhausted *errs.ExhaustedRetriesError

	switch {
	case errors.As(err, &invalid):
		if invalid.Field == "url" {
			return r.loc.GetText(KeyInvalidURL)
		}
		return r.loc.Sprintf(KeyInvalidInput, invalid.Error())
	case errs.IsFilesystem(err):
		return r.loc.Sprintf(KeyFilesystem, err)
	case errors.As(err, &exhausted):
		return r.loc.Sprintf(KeyFailed, exhausted.Attempts, errs.Cause(exhausted.Last))
	case errs.IsCanceled(err):
		return r.loc.GetText(KeyInterrupted)
	default:
		return r.loc.Sprintf(KeyError, err)
	}
}

func (r *Reporter) breakLine() {
	if r.progress != nil {
		r.progress.Break()
	}
}

func (r *Reporter) println(s string) {
	fmt.Fprintln(r.out, s)
}
