package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/journal"
)

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := s.store.ListAccounts(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accts)
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a := journal.Account{UserID: userID(r)}
	req.apply(&a)
	if err := s.store.CreateAccount(r.Context(), &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.store.GetAccount(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.apply(&a)
	if err := s.store.UpdateAccount(r.Context(), &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteAccount(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) listInstruments(w http.ResponseWriter, r *http.Request) {
	insts, err := s.store.ListInstruments(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insts)
}

func (s *Server) upsertInstrument(w http.ResponseWriter, r *http.Request) {
	var req instrumentRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inst := req.instrument()
	if err := s.store.UpsertInstrument(r.Context(), userID(r), inst); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) deleteInstrument(w http.ResponseWriter, r *http.Request) {
	sym := chi.URLParam(r, "symbol")
	if err := s.store.DeleteInstrument(r.Context(), userID(r), sym); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": sym})
}
