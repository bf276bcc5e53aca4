package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
)

func (s *Server) listTrades(w http.ResponseWriter, r *http.Request) {
	f, err := s.tradeFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trades, err := s.store.ListTrades(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

// exportTrades writes the filtered trades as CSV (default) or org-mode.
func (s *Server) exportTrades(w http.ResponseWriter, r *http.Request) {
	f, err := s.tradeFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trades, err := s.store.ListTrades(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stamp := time.Now().Format("20060102")
	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trades-%s.csv"`, stamp))
		if err := journal.WriteCSV(w, trades); err != nil {
			s.log.Error("export csv", zap.Error(err))
		}
	case "org":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trades-%s.org"`, stamp))
		_, _ = w.Write([]byte(journal.FormatTradesOrg(trades)))
	default:
		s.writeError(w, r, badRequest("format must be csv or org"))
	}
}

// saveTrade normalizes the symbol, recomputes P&L and validates t. before
// is the stored trade on updates and nil on create.
func (s *Server) saveTrade(r *http.Request, before *journal.Trade, t *journal.Trade) error {
	resolver, err := s.store.Resolver(r.Context(), t.UserID)
	if err != nil {
		return err
	}
	if before != nil {
		journal.Revise(*before, t, resolver)
	} else {
		journal.Recalculate(t, resolver)
	}
	return journal.ValidateTrade(t)
}

func (s *Server) createTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t := journal.Trade{UserID: userID(r), Source: journal.SourceManual}
	if err := req.apply(&t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveTrade(r, nil, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.CreateTrade(r.Context(), &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) getTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTrade(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	shots, err := s.store.ListScreenshots(r.Context(), t.UserID, t.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		journal.Trade
		Screenshots []journal.Screenshot `json:"screenshots"`
	}{t, shots})
}

func (s *Server) updateTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.store.GetTrade(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	before := t
	if err := req.apply(&t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveTrade(r, &before, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateTrade(r.Context(), &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// deleteTrade soft-deletes unless hard=true.
func (s *Server) deleteTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var err error
	if r.URL.Query().Get("hard") == "true" {
		err = s.store.DeleteTrade(r.Context(), userID(r), id)
	} else {
		err = s.store.SoftDeleteTrade(r.Context(), userID(r), id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) restoreTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RestoreTrade(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.store.GetTrade(r.Context(), userID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// shareTrade publishes a trade. An existing token is kept so shared links
// stay valid.
func (s *Server) shareTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTrade(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token := t.ShareToken
	if token == "" {
		token = uuid.NewString()
	}
	if err := s.store.SetShare(r.Context(), t.UserID, t.ID, token); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"share_token": token})
}

func (s *Server) unshareTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.SetShare(r.Context(), userID(r), id, ""); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"unshared": id})
}

// getShared returns a public trade. Ownership fields are blanked.
func (s *Server) getShared(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetSharedTrade(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t.UserID, t.AccountID, t.ImportBatchID = "", "", ""
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) listScreenshots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetTrade(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	shots, err := s.store.ListScreenshots(r.Context(), userID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

func (s *Server) addScreenshot(w http.ResponseWriter, r *http.Request) {
	var req screenshotRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sc := journal.Screenshot{
		UserID:  userID(r),
		TradeID: chi.URLParam(r, "id"),
		URL:     req.URL,
		Caption: req.Caption,
	}
	if err := s.store.AddScreenshot(r.Context(), &sc); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) deleteScreenshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteScreenshot(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
