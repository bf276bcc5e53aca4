package server

import (
	"net/http"

	"github.com/rustyeddy/tradejournal/analytics"
)

// analytics reports on closed trades. The starting balance is the
// account's when one is selected, else the configured default.
func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	f, err := s.tradeFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.ClosedOnly = true
	f.IncludeDeleted, f.OnlyDeleted = false, false
	f.Limit, f.Offset = 0, 0

	opt := analytics.Options{
		StartingBalance: s.cfg.Analytics.StartingBalance,
		Location:        s.analyticsLoc,
		From:            f.From,
		To:              f.To,
	}
	if f.AccountID != "" {
		acct, err := s.store.GetAccount(r.Context(), f.UserID, f.AccountID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opt.Account = acct.Name
		if acct.StartingBalance > 0 {
			opt.StartingBalance = acct.StartingBalance
		}
	}

	trades, err := s.store.ListTrades(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Compute(trades, opt))
}
