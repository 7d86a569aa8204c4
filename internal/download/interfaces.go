package download

import (
	"context"
	"time"

	"github.com/ytget/ydownloader/internal/model"
)

// Fetcher performs one download attempt through an external engine. It blocks
// until the engine returns and reports the written file path when known.
type Fetcher interface {
	Fetch(ctx context.Context, opts model.FetchOptions, progress model.ProgressHandler) (string, error)
}

// SelectionValidator is implemented by engines that cannot honour every
// format selection. A rejection is treated as invalid input.
type SelectionValidator interface {
	ValidateSelection(sel model.FormatSelection) error
}

// Reporter receives orchestration milestones for display
type Reporter interface {
	Started(req model.DownloadRequest)
	Retrying(attempt, max int, err error, delay time.Duration)
	Succeeded(res *model.Result)
	Failed(req model.DownloadRequest, err error)
}
