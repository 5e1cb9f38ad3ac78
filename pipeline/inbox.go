package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"agegroup/ml"
)

const defaultSettle = 500 * time.Millisecond

// InboxConfig configures a drop folder.
type InboxConfig struct {
	Dir    string
	OutDir string
	// Settle is how long a file must stay unchanged before it is read.
	Settle  time.Duration
	Options BatchOptions
}

// Inbox predicts every CSV file dropped into a directory. Results go to
// OutDir as <name>_predictions.csv; a rejected file gets <name>.error.txt
// instead. Files are processed one at a time.
type Inbox struct {
	config InboxConfig
	model  ml.Classifier
	logger *zap.Logger
}

func NewInbox(config InboxConfig, model ml.Classifier, logger *zap.Logger) *Inbox {
	if config.OutDir == "" {
		config.OutDir = config.Dir
	}
	if config.Settle <= 0 {
		config.Settle = defaultSettle
	}
	return &Inbox{config: config, model: model, logger: logger}
}

// Run processes files already present, then watches for new ones until ctx
// is cancelled.
func (i *Inbox) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(i.config.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", i.config.Dir, err)
	}
	i.logger.Info("watching inbox", zap.String("dir", i.config.Dir), zap.String("out_dir", i.config.OutDir))

	existing, err := os.ReadDir(i.config.Dir)
	if err != nil {
		return err
	}
	for _, entry := range existing {
		path := filepath.Join(i.config.Dir, entry.Name())
		if !entry.IsDir() && i.accepts(path) {
			i.process(path)
		}
	}

	ready := make(chan string, 16)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, timer := range timers {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !i.accepts(event.Name) {
				continue
			}
			path := event.Name
			if timer, ok := timers[path]; ok {
				timer.Reset(i.config.Settle)
				continue
			}
			timers[path] = time.AfterFunc(i.config.Settle, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
		case path := <-ready:
			delete(timers, path)
			i.process(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			i.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (i *Inbox) accepts(path string) bool {
	name := filepath.Base(path)
	return strings.EqualFold(filepath.Ext(name), ".csv") &&
		!strings.HasSuffix(name, outputSuffix) &&
		!strings.HasPrefix(name, ".")
}

func (i *Inbox) process(path string) {
	out := OutputPath(path, i.config.OutDir)
	errPath := strings.TrimSuffix(out, outputSuffix) + ".error.txt"

	batch, err := PredictFile(i.model, path, out, i.config.Options)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		i.logger.Warn("batch rejected", zap.String("file", path), zap.Error(err))
		if werr := os.WriteFile(errPath, []byte(err.Error()+"\n"), 0o644); werr != nil {
			i.logger.Error("write error report", zap.String("file", errPath), zap.Error(werr))
		}
		return
	}
	_ = os.Remove(errPath)
	i.logger.Info("batch predicted", zap.String("file", path), zap.String("out", out), zap.Int("rows", batch.Table.Len()))
}
