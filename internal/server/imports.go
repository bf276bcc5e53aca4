package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/journal"
)

const maxUpload = 32 << 20

// importRequest reads the CSV from a multipart "file" field or the raw
// body. Query parameters: account, file_name, tz and repeated map=header=field.
func (s *Server) importRequest(w http.ResponseWriter, r *http.Request) (importer.Request, io.ReadCloser, error) {
	q := r.URL.Query()
	req := importer.Request{
		UserID:   userID(r),
		Account:  q.Get("account"),
		FileName: q.Get("file_name"),
		Location: s.importLoc,
	}
	if tz := q.Get("tz"); tz != "" {
		loc, err := config.Location(tz)
		if err != nil {
			return req, nil, badRequest("%v", err)
		}
		req.Location = loc
	}
	if pairs := q["map"]; len(pairs) > 0 {
		m, err := importer.ParseOverrides(pairs)
		if err != nil {
			return req, nil, badRequest("%v", err)
		}
		req.Overrides = m
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return req, nil, badRequest("multipart: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return req, nil, badRequest("multipart field \"file\": %v", err)
		}
		if req.FileName == "" {
			req.FileName = hdr.Filename
		}
		return req, f, nil
	}

	if req.FileName == "" {
		req.FileName = "upload.csv"
	}
	return req, http.MaxBytesReader(w, r.Body, maxUpload), nil
}

func (s *Server) previewImport(w http.ResponseWriter, r *http.Request) {
	req, body, err := s.importRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	p, err := s.importer.Preview(r.Context(), req, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) commitImport(w http.ResponseWriter, r *http.Request) {
	req, body, err := s.importRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	res, err := s.importer.Commit(r.Context(), req, body)
	if errors.Is(err, importer.ErrNothingToImport) {
		// The preview explains why each row was rejected.
		writeJSON(w, http.StatusOK, res)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.store.ListImportBatches(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

// getBatch returns a batch with the trades it wrote.
func (s *Server) getBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.store.GetImportBatch(r.Context(), userID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trades, err := s.store.ListBatchTrades(r.Context(), b.UserID, b.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		journal.ImportBatch
		Trades []journal.Trade `json:"trades"`
	}{b, trades})
}

// deleteBatch undoes an import.
func (s *Server) deleteBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteImportBatch(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
