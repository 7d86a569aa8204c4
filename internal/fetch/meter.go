package fetch

import (
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/ydownloader/internal/model"
)

// meter turns raw byte counters into formatted progress events
type meter struct {
	started time.Time
	now     func() time.Time
}

func newMeter(now func() time.Time) *meter {
	if now == nil {
		now = time.Now
	}
	return &meter{started: now(), now: now}
}

// event builds a downloading event from byte counters. total <= 0 means unknown.
func (m *meter) event(downloaded, total int64) model.ProgressEvent {
	return progressFromCounters(model.ProgressStatusDownloading, downloaded, total, m.started, 0, m.now())
}

// progressFromCounters formats percent, speed and ETA. A positive eta from the
// library wins over the estimate derived from the average speed.
func progressFromCounters(status model.ProgressStatus, downloaded, total int64, started time.Time, eta time.Duration, now time.Time) model.ProgressEvent {
	ev := model.ProgressEvent{Status: status}

	if total > 0 {
		ev.Percent = model.FormatPercent(float64(downloaded) / float64(total) * 100)
	}

	var bps float64
	if !started.IsZero() {
		if elapsed := now.Sub(started).Seconds(); elapsed > 0 && downloaded > 0 {
			bps = float64(downloaded) / elapsed
			ev.Speed = FormatSpeed(bps)
		}
	}

	if eta <= 0 && bps > 0 && total > downloaded {
		eta = time.Duration(float64(total-downloaded) / bps * float64(time.Second))
	}
	ev.ETA = model.FormatETA(eta)

	return ev
}

// FormatSpeed renders bytes per second as e.g. "1.5 MiB/s"
func FormatSpeed(bps float64) string {
	if bps <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(bps)) + "/s"
}

// progressReader reports bytes read through it to a handler
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	meter    *meter
	handler  model.ProgressHandler
	interval time.Duration

	mu       sync.Mutex
	lastEmit time.Time
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.maybeEmit(err == io.EOF)
	}
	return n, err
}

func (p *progressReader) maybeEmit(force bool) {
	p.mu.Lock()
	now := p.meter.now()
	if !force && now.Sub(p.lastEmit) < p.interval {
		p.mu.Unlock()
		return
	}
	p.lastEmit = now
	p.mu.Unlock()

	p.handler.OnProgress(p.meter.event(p.read, p.total))
}
