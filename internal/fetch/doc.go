// Package fetch adapts external download libraries to the download service.
// Each engine performs exactly one attempt per Fetch call and translates the
// library's progress reporting into model.ProgressEvent values.
//
// Engines:
//   - yt-dlp: github.com/lrstanley/go-ytdlp, drives the yt-dlp executable
//   - ytget:  github.com/ytget/ytdlp/v2, pure Go YouTube client
//   - kkdai:  github.com/kkdai/youtube/v2, pure Go YouTube client
package fetch
