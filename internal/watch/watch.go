// Package watch plans order files dropped into an inbox directory and
// writes each loading plan to an outbox directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/piwi3910/LoadPlan/internal/export"
	"github.com/piwi3910/LoadPlan/internal/importer"
	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/piwi3910/LoadPlan/internal/telemetry"
	"github.com/rs/zerolog"
)

const (
	metricsSource = "watch"
	defaultDelay  = 500 * time.Millisecond
)

// ErrNoLines is returned when an order file yields no plannable line.
var ErrNoLines = errors.New("no valid product lines")

// Config configures a Watcher.
type Config struct {
	Inbox       string
	Outbox      string
	Settings    model.PlanSettings
	Preferences engine.PreferenceResolver
	PDF         bool          // Also write the loading report
	Delay       time.Duration // Quiet period before a changed file is planned

	// OnProcessed, when set, is called after every planning attempt.
	OnProcessed func(in, out string, err error)
}

// Watcher plans order files as they appear in the inbox.
type Watcher struct {
	cfg     Config
	metrics *telemetry.PlanMetrics
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    map[string]time.Time // Modification time of the last planned version
	wg      sync.WaitGroup
}

// New validates the directories and returns a Watcher. The outbox is
// created when missing. metrics may be nil.
func New(cfg Config, metrics *telemetry.PlanMetrics, log zerolog.Logger) (*Watcher, error) {
	info, err := os.Stat(cfg.Inbox)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox %s is not a directory", cfg.Inbox)
	}
	if cfg.Outbox == "" {
		return nil, errors.New("outbox is required")
	}
	if err := os.MkdirAll(cfg.Outbox, 0755); err != nil {
		return nil, fmt.Errorf("outbox: %w", err)
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.Preferences == nil {
		cfg.Preferences = model.DefaultPreferences()
	}
	return &Watcher{
		cfg:     cfg,
		metrics: metrics,
		log:     log.With().Str("component", "watch").Logger(),
		pending: make(map[string]*time.Timer),
		done:    make(map[string]time.Time),
	}, nil
}

// IsOrderFile reports whether name looks like an order export.
func IsOrderFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv", ".txt", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// OutputPath returns the plan file written for the order file in.
func (w *Watcher) OutputPath(in string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(w.cfg.Outbox, base+".json")
}

// ProcessFile imports one order file, plans it and writes the result to
// the outbox. It returns the path of the written plan.
func (w *Watcher) ProcessFile(path string) (string, error) {
	imported := importer.ImportFile(path)
	w.metrics.RecordImportErrors(metricsSource, len(imported.Errors))
	for _, e := range imported.Errors {
		w.log.Warn().Str("file", path).Msg(e)
	}
	if len(imported.Lines) == 0 {
		w.metrics.RecordFailure(metricsSource)
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrNoLines)
	}

	timer := telemetry.NewTimer()
	result := engine.New(w.cfg.Settings,
		engine.WithPreferences(w.cfg.Preferences),
		engine.WithLogger(w.log),
	).Plan(imported.Lines)
	w.metrics.RecordPlan(metricsSource, result, timer.Duration())

	out := w.OutputPath(path)
	if err := export.ExportJSON(out, result); err != nil {
		w.metrics.RecordFailure(metricsSource)
		return "", err
	}
	if w.cfg.PDF && len(result.Compartments) > 0 {
		pdfPath := strings.TrimSuffix(out, ".json") + ".pdf"
		if err := export.ExportPDF(pdfPath, result, w.cfg.Settings); err != nil {
			return out, fmt.Errorf("loading report: %w", err)
		}
	}

	w.log.Info().
		Str("file", filepath.Base(path)).
		Str("plan", out).
		Int("products", result.Summary.TotalProducts).
		Int("unallocated", result.Summary.UnallocatedProducts).
		Msg("order planned")
	return out, nil
}

// Scan plans every order file already in the inbox that has not been
// planned in its current version.
func (w *Watcher) Scan() error {
	entries, err := os.ReadDir(w.cfg.Inbox)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !IsOrderFile(e.Name()) {
			continue
		}
		w.handle(filepath.Join(w.cfg.Inbox, e.Name()))
	}
	return nil
}

// handle plans path unless its current version was already planned.
func (w *Watcher) handle(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Removed or renamed before the quiet period ended.
		return
	}

	w.mu.Lock()
	last, seen := w.done[path]
	if seen && !info.ModTime().After(last) {
		w.mu.Unlock()
		return
	}
	w.done[path] = info.ModTime()
	w.mu.Unlock()

	out, err := w.ProcessFile(path)
	if err != nil {
		w.log.Error().Err(err).Str("file", path).Msg("failed to plan order file")
	}
	if w.cfg.OnProcessed != nil {
		w.cfg.OnProcessed(path, out, err)
	}
}

// schedule (re)starts the quiet period for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.cfg.Delay, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.handle(path)
	})
	w.pending[path] = t
}

// Run plans the files already in the inbox, then watches it until ctx is
// cancelled. Planning in flight completes before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.cfg.Inbox); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Inbox, err)
	}
	w.log.Info().Str("inbox", w.cfg.Inbox).Str("outbox", w.cfg.Outbox).Msg("watching inbox")

	if err := w.Scan(); err != nil {
		return err
	}

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !IsOrderFile(event.Name) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("inbox changed")
			w.schedule(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// stop cancels pending quiet periods and waits for running plans.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
