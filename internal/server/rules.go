package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/discipline"
	"github.com/rustyeddy/tradejournal/journal"
)

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRules(r.Context(), userID(r), r.URL.Query().Get("active") == "true")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rule := journal.Rule{UserID: userID(r), Active: true}
	req.apply(&rule)
	if err := s.store.CreateRule(r.Context(), &rule); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rule, err := s.store.GetRule(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.apply(&rule)
	if err := s.store.UpdateRule(r.Context(), &rule); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteRule(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) setRuleCheck(w http.ResponseWriter, r *http.Request) {
	var req ruleCheckRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	day, err := dayParam(chi.URLParam(r, "day"), s.analyticsLoc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := journal.RuleCheck{
		UserID:   userID(r),
		RuleID:   chi.URLParam(r, "id"),
		Day:      day,
		Followed: req.Followed,
		Note:     req.Note,
	}
	if err := s.store.SetRuleCheck(r.Context(), &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) checklist(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r.URL.Query().Get("day"), s.analyticsLoc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := discipline.Checklist(r.Context(), s.store, userID(r), day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) compliance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := dayParam(d, s.analyticsLoc); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	rep, err := discipline.Compliance(r.Context(), s.store, userID(r), from, to, s.analyticsLoc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// violations evaluates the configured policy against one day's trades.
func (s *Server) violations(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r.URL.Query().Get("day"), s.analyticsLoc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := discipline.EvaluateDay(r.Context(), s.store, userID(r), s.cfg.Discipline, day, s.analyticsLoc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
