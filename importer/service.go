package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

// ErrNothingToImport is returned by Commit when no row is valid.
var ErrNothingToImport = errors.New("no valid rows to import")

// Store is the part of journal.Store the importer needs.
type Store interface {
	ListTrades(ctx context.Context, f journal.Filter) ([]journal.Trade, error)
	CreateImport(ctx context.Context, b *journal.ImportBatch, trades []journal.Trade) error
	Resolver(ctx context.Context, userID string) (*market.Resolver, error)
	FindAccount(ctx context.Context, userID, ref string) (journal.Account, error)
}

// Importer previews and commits CSV files against a store.
type Importer struct {
	store    Store
	defaults Options
	log      *zap.Logger
}

// New returns an Importer. defaults supplies the commission settings and
// timezone used when a request does not set its own.
func New(store Store, defaults Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, defaults: defaults, log: log}
}

// Request describes one file to import.
type Request struct {
	UserID    string
	Account   string // ID or name; empty uses the file's account column
	FileName  string
	Overrides map[string]string
	Location  *time.Location
}

type Result struct {
	Batch   journal.ImportBatch `json:"batch"`
	Preview *Preview            `json:"preview"`
}

// Preview parses the file and marks rows that duplicate stored trades.
// Nothing is written.
func (im *Importer) Preview(ctx context.Context, req Request, r io.Reader) (*Preview, error) {
	opt := im.defaults
	opt.UserID = req.UserID
	opt.Overrides = req.Overrides
	if req.Location != nil {
		opt.Location = req.Location
	}

	if req.Account != "" {
		acct, err := im.store.FindAccount(ctx, req.UserID, req.Account)
		if err != nil {
			return nil, err
		}
		opt.AccountID = acct.ID
	}

	resolver, err := im.store.Resolver(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	opt.Resolver = resolver

	p, err := Parse(r, opt)
	if err != nil {
		return nil, err
	}
	p.FileName = req.FileName

	if err := im.resolveAccounts(ctx, req.UserID, p); err != nil {
		return nil, err
	}

	existing, err := im.existing(ctx, req.UserID, p)
	if err != nil {
		return nil, err
	}
	MarkDuplicates(p.Rows, existing)
	p.tally()
	return p, nil
}

// Commit previews the file and writes its valid rows as one import batch.
func (im *Importer) Commit(ctx context.Context, req Request, r io.Reader) (*Result, error) {
	p, err := im.Preview(ctx, req, r)
	if err != nil {
		return nil, err
	}

	trades := p.Trades()
	if len(trades) == 0 {
		im.log.Warn("import: nothing to import",
			zap.String("file", req.FileName),
			zap.Int("rows", len(p.Rows)),
			zap.Int("invalid", p.Invalid),
			zap.Int("duplicates", p.Duplicates))
		return &Result{Preview: p}, ErrNothingToImport
	}

	b := journal.ImportBatch{
		UserID:     req.UserID,
		FileName:   req.FileName,
		Rows:       len(p.Rows),
		Skipped:    p.Invalid,
		Duplicates: p.Duplicates,
	}
	if req.Account != "" {
		b.AccountID = trades[0].AccountID
	}
	if err := im.store.CreateImport(ctx, &b, trades); err != nil {
		return nil, fmt.Errorf("import %s: %w", req.FileName, err)
	}

	im.log.Info("import: committed",
		zap.String("batch", b.ID),
		zap.String("file", req.FileName),
		zap.Int("imported", b.Imported),
		zap.Int("skipped", b.Skipped),
		zap.Int("duplicates", b.Duplicates))
	return &Result{Batch: b, Preview: p}, nil
}

// resolveAccounts maps per-row account names to account IDs.
func (im *Importer) resolveAccounts(ctx context.Context, userID string, p *Preview) error {
	cache := map[string]string{}
	for i := range p.Rows {
		r := &p.Rows[i]
		if r.Trade == nil || r.Account == "" {
			continue
		}
		id, ok := cache[r.Account]
		if !ok {
			acct, err := im.store.FindAccount(ctx, userID, r.Account)
			switch {
			case err == nil:
				id = acct.ID
			case errors.Is(err, journal.ErrNotFound):
				id = ""
			default:
				return err
			}
			cache[r.Account] = id
		}
		if id == "" {
			r.warnf("unknown account %q; left unassigned", r.Account)
			continue
		}
		r.Trade.AccountID = id
	}
	return nil
}

// existing loads the stored trades that could collide with the file.
func (im *Importer) existing(ctx context.Context, userID string, p *Preview) ([]journal.Trade, error) {
	var from, to time.Time
	for _, r := range p.Rows {
		if r.Trade == nil {
			continue
		}
		at := r.Trade.EntryTime
		if at.IsZero() {
			// Unbounded.
			from, to = time.Time{}, time.Time{}
			break
		}
		if from.IsZero() || at.Before(from) {
			from = at
		}
		if to.IsZero() || at.After(to) {
			to = at
		}
	}
	if !to.IsZero() {
		from = from.Truncate(time.Second)
		to = to.Truncate(time.Second).Add(time.Second)
	}
	return im.store.ListTrades(ctx, journal.Filter{UserID: userID, From: from, To: to})
}
