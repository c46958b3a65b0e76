package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/gedcom"
	treeio "github.com/matzehuels/lineage/pkg/io"
	"github.com/matzehuels/lineage/pkg/observability"
)

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	People  int    `json:"people"`
	User    string `json:"user,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Backend: s.store.Backend().Name(), User: s.store.Session().UserID()}
	if t, err := s.store.Snapshot(); err == nil {
		resp.People = t.Len()
	} else {
		resp.Status = "loading"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listPeople(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	people := t.Search(r.URL.Query().Get("q"))
	if people == nil {
		people = []family.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	var partial family.Partial
	if err := decodeBody(w, r, &partial); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.store.Create(r.Context(), partial)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/people/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

type extractRequest struct {
	Text string `json:"text"`
}

func (s *Server) extractPerson(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "text is required"))
		return
	}
	partial, err := s.extractor.Extract(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.store.Create(r.Context(), *partial)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/people/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p family.Person
	if err := decodeBody(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.ID == "" {
		p.ID = id
	}
	if p.ID != id {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "body id %q does not match path id %q", p.ID, id))
		return
	}
	if _, err := s.store.Get(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.store.Apply(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type bioResponse struct {
	Bio    string         `json:"bio"`
	Person *family.Person `json:"person,omitempty"`
}

func (s *Server) biography(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bio, err := s.extractor.Biography(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := bioResponse{Bio: bio}
	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		p.Bio = bio
		saved, err := s.store.Apply(r.Context(), p)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Person = &saved
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := treeio.WriteJSON(t, w); err != nil {
		s.logger.Warn("write tree", "error", err)
	}
}

func (s *Server) getHierarchy(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	node, err := family.BuildHierarchy(t, r.URL.Query().Get("root"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// ExportFilename is the download name for a GEDCOM export made at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("family_tree_%s.ged", now.Format("2006-01-02"))
}

func (s *Server) exportGedcom(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	data, report := gedcom.EncodeReport(t)
	observability.Codec().OnEncode(r.Context(), "gedcom", report.Individuals, report.Families, time.Since(start))
	if len(report.Dropped) > 0 {
		s.logger.Debug("dangling references skipped", "count", len(report.Dropped))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(s.now())))
	_, _ = w.Write(data)
}

type importResponse struct {
	Imported int      `json:"imported"`
	RootID   string   `json:"rootId"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) importGedcom(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	start := time.Now()
	var (
		t        family.Tree
		warnings []error
		err      error
	)
	if lenient, _ := strconv.ParseBool(r.URL.Query().Get("lenient")); lenient {
		t, warnings, err = gedcom.DecodeLenient(r.Body)
	} else {
		t, err = gedcom.Decode(r.Body)
	}
	observability.Codec().OnDecode(r.Context(), "gedcom", t.Len(), time.Since(start), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	imported, err := s.store.Import(r.Context(), t, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := importResponse{Imported: imported.Len(), RootID: imported.RootID}
	for _, warn := range warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}
