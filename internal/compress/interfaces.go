package compress

import (
	"context"

	"github.com/ytget/ydownloader/internal/model"
)

// Transcoder defines the interface for the audio extraction service.
type Transcoder interface {
	SetProgressHandler(model.ProgressHandler)
	ToAudio(ctx context.Context, inputPath, codec string) (string, error)
}

var _ Transcoder = (*Service)(nil)
