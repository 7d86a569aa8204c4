package download

import (
	"fmt"

	"github.com/ytget/ydownloader/internal/model"
)

// yt-dlp format selectors
const (
	AudioOnlySelector = "bestaudio/best"
	BestVideoSelector = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/b"

	// Height-limited fallback chain: merged mp4+m4a, combined mp4,
	// any combined stream, then whatever is best.
	heightSelectorFormat = "bv*[height<=%[1]d][ext=mp4]+ba[ext=m4a]/b[height<=%[1]d][ext=mp4]/b[height<=%[1]d]/b"

	PreferredVideoExt = "mp4"
)

// BuildFormatSelection derives the format selection for a request. Audio-only
// always wins over quality.
func BuildFormatSelection(quality model.Quality, audioOnly bool, audioCodec string) model.FormatSelection {
	if audioOnly {
		return model.FormatSelection{
			Selector:   AudioOnlySelector,
			AudioOnly:  true,
			AudioCodec: audioCodec,
		}
	}

	h := quality.MaxHeight()
	if h == 0 {
		return model.FormatSelection{
			Selector:     BestVideoSelector,
			PreferredExt: PreferredVideoExt,
		}
	}

	return model.FormatSelection{
		Selector:     fmt.Sprintf(heightSelectorFormat, h),
		MaxHeight:    h,
		PreferredExt: PreferredVideoExt,
	}
}
