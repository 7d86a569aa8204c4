package fetch

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/model"
)

// Engine names
const (
	EngineYTDLP = "yt-dlp"
	EngineYTGet = "ytget"
	EngineKKDai = "kkdai"
)

// ProgressInterval throttles progress events emitted by engines
const ProgressInterval = 500 * time.Millisecond

// Engine performs one download attempt
type Engine interface {
	Name() string
	Fetch(ctx context.Context, opts model.FetchOptions, progress model.ProgressHandler) (string, error)
}

// Transcoder converts a downloaded file into an audio-only file
type Transcoder interface {
	ToAudio(ctx context.Context, inputPath, codec string) (string, error)
}

// Config carries dependencies shared by engines
type Config struct {
	// AutoInstall downloads the yt-dlp executable when it is missing
	AutoInstall bool
	// Transcoder post-processes audio for engines without built-in transcoding
	Transcoder Transcoder
	Logger     *slog.Logger
}

// New returns the engine registered under name
func New(name string, cfg Config) (Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case EngineYTDLP, "ytdlp", "yt_dlp":
		return NewYTDLP(cfg), nil
	case EngineYTGet:
		return NewYTGet(cfg), nil
	case EngineKKDai:
		return NewKKDai(cfg), nil
	}
	return nil, &errs.InvalidInputError{
		Field:  "engine",
		Value:  name,
		Reason: "must be one of " + strings.Join(Names(), ", "),
		Err:    errs.ErrUnknownEngine,
	}
}

// Names returns the registered engine names in sorted order
func Names() []string {
	names := []string{EngineYTDLP, EngineYTGet, EngineKKDai}
	sort.Strings(names)
	return names
}

// newHTTPClient builds a client for streaming downloads: no overall timeout,
// but connection and response-header deadlines bounded by socketTimeout.
func newHTTPClient(socketTimeout time.Duration) *http.Client {
	if socketTimeout <= 0 {
		socketTimeout = 30 * time.Second
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   socketTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   socketTimeout,
			ResponseHeaderTimeout: socketTimeout,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          100,
		},
	}
}
