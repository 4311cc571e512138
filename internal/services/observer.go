package services

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Observer receives fetch progress events.
//
// total is -1 when the server did not advertise one.
type Observer interface {
	OnRequest(url string, attempt int)
	OnRetry(url string, attempt int, err error)
	OnPage(url string, items, loaded, total int)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) OnRequest(string, int)        {}
func (NopObserver) OnRetry(string, int, error)   {}
func (NopObserver) OnPage(string, int, int, int) {}

// MultiObserver fans every event out to each of its observers.
type MultiObserver []Observer

func (m MultiObserver) OnRequest(url string, attempt int) {
	for _, o := range m {
		o.OnRequest(url, attempt)
	}
}

func (m MultiObserver) OnRetry(url string, attempt int, err error) {
	for _, o := range m {
		o.OnRetry(url, attempt, err)
	}
}

func (m MultiObserver) OnPage(url string, items, loaded, total int) {
	for _, o := range m {
		o.OnPage(url, items, loaded, total)
	}
}

// ProgressInterval is how often [LogObserver] reports collection progress at info level.
const ProgressInterval = 15 * time.Second

// LogObserver writes fetch events to a [log.Logger].
//
// Requests and pages are logged at debug level. Retries are warnings.
// A "loaded" info line is written at most once per interval for each collection. The interval
// restarts on the first page of every walk, recognized by loaded equal to the page's item count.
type LogObserver struct {
	logger   *log.Logger
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewLogObserver creates a [LogObserver] reporting progress every [ProgressInterval].
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{logger: logger, interval: ProgressInterval, now: time.Now}
}

func (o *LogObserver) OnRequest(url string, attempt int) {
	o.logger.Debug("GET", "url", url, "attempt", attempt)
}

func (o *LogObserver) OnRetry(url string, attempt int, err error) {
	o.logger.Warn("request failed, retrying", "url", url, "attempt", attempt, "error", err)
}

func (o *LogObserver) OnPage(url string, items, loaded, total int) {
	o.logger.Debug("page", "url", url, "items", items, "loaded", loaded, "total", total)

	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	if loaded == items {
		o.last = now
	}
	done := total >= 0 && loaded >= total
	if now.Sub(o.last) < o.interval || done {
		return
	}
	o.last = now

	if total >= 0 {
		o.logger.Infof("loaded %d/%d items", loaded, total)
	} else {
		o.logger.Infof("loaded %d items", loaded)
	}
}
