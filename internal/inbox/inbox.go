// Package inbox imports CSV files dropped into a directory on a schedule.
// Each file is moved to processed/ or failed/ once handled, so a file is
// never imported twice by the watcher.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/importer"
)

const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Committer is the part of importer.Importer the inbox needs.
type Committer interface {
	Commit(ctx context.Context, req importer.Request, r io.Reader) (*importer.Result, error)
}

type Inbox struct {
	dir     string
	userID  string
	account string

	im   Committer
	log  *zap.Logger
	cron *cron.Cron
}

func New(im Committer, dir, userID, account string, log *zap.Logger) (*Inbox, error) {
	if dir == "" {
		return nil, errors.New("inbox: no directory")
	}
	if log == nil {
		log = zap.NewNop()
	}
	for _, sub := range []string{"", ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("inbox: %w", err)
		}
	}
	return &Inbox{dir: dir, userID: userID, account: account, im: im, log: log}, nil
}

// Outcome reports what happened to one file.
type Outcome struct {
	File     string
	Imported int
	Err      error
}

// Scan imports every *.csv in the inbox, oldest name first. A file with no
// new rows counts as processed.
func (in *Inbox) Scan(ctx context.Context) ([]Outcome, error) {
	paths, err := filepath.Glob(filepath.Join(in.dir, "*.[cC][sS][vV]"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]Outcome, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o := in.importFile(ctx, p)
		dest := ProcessedDir
		if o.Err != nil {
			dest = FailedDir
			in.log.Warn("inbox: import failed", zap.String("file", o.File), zap.Error(o.Err))
		} else {
			in.log.Info("inbox: imported", zap.String("file", o.File), zap.Int("trades", o.Imported))
		}
		if err := os.Rename(p, filepath.Join(in.dir, dest, o.File)); err != nil {
			return out, fmt.Errorf("inbox: move %s: %w", o.File, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (in *Inbox) importFile(ctx context.Context, path string) Outcome {
	o := Outcome{File: filepath.Base(path)}
	f, err := os.Open(path)
	if err != nil {
		o.Err = err
		return o
	}
	defer f.Close()

	res, err := in.im.Commit(ctx, importer.Request{
		UserID:   in.userID,
		Account:  in.account,
		FileName: o.File,
	}, f)
	switch {
	case errors.Is(err, importer.ErrNothingToImport):
	case err != nil:
		o.Err = err
	default:
		o.Imported = res.Batch.Imported
	}
	return o
}

// Start runs Scan on schedule (standard cron syntax or a descriptor such as
// "@every 5m") until Stop. A run still in progress skips the next tick.
func (in *Inbox) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		if _, err := in.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
			in.log.Error("inbox: scan", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("inbox schedule %q: %w", schedule, err)
	}
	in.cron = c
	c.Start()
	in.log.Info("inbox: watching", zap.String("dir", in.dir), zap.String("schedule", strings.TrimSpace(schedule)))
	return nil
}

// Stop waits for a running scan to finish.
func (in *Inbox) Stop() {
	if in.cron == nil {
		return
	}
	<-in.cron.Stop().Done()
	in.log.Info("inbox: stopped")
}
