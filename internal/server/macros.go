package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jask/cncdeck/internal/database/repository"
	"github.com/jask/cncdeck/internal/macro"
)

func toMacro(m repository.Macro) macro.Macro {
	return macro.Macro{ID: m.ID, Name: m.Name, Content: m.Content}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (macro.Input, bool) {
	var in macro.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return in, false
	}
	errs := macro.Validate(in)
	for _, field := range []string{"name", "content"} {
		if err, bad := errs[field]; bad {
			http.Error(w, field+": "+err.Error(), http.StatusBadRequest)
			return in, false
		}
	}
	return in, true
}

func (h *handler) listMacros(w http.ResponseWriter, r *http.Request) {
	list, err := h.macros.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list macros", http.StatusInternalServerError)
		return
	}
	out := make([]macro.Macro, 0, len(list))
	for _, m := range list {
		out = append(out, toMacro(m))
	}
	writeJSON(w, http.StatusOK, records[macro.Macro]{Records: out})
}

func (h *handler) getMacro(w http.ResponseWriter, r *http.Request) {
	m, err := h.macros.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "macro not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load macro", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toMacro(m))
}

func (h *handler) createMacro(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	m := repository.Macro{ID: uuid.NewString(), Name: in.Name, Content: in.Content}
	if err := h.macros.Insert(r.Context(), m); err != nil {
		http.Error(w, "failed to save macro", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toMacro(m))
}

func (h *handler) updateMacro(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	err := h.macros.Update(r.Context(), repository.Macro{ID: id, Name: in.Name, Content: in.Content})
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "macro not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to save macro", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, macro.Macro{ID: id, Name: in.Name, Content: in.Content})
}

func (h *handler) deleteMacro(w http.ResponseWriter, r *http.Request) {
	err := h.macros.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "macro not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to delete macro", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) runMacro(w http.ResponseWriter, r *http.Request) {
	m, err := h.macros.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "macro not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load macro", http.StatusInternalServerError)
		return
	}
	lines := toMacro(m).Lines()
	h.runs.Record(m.ID, lines)
	log.Printf("run macro %q (%d lines)", m.Name, len(lines))
	writeJSON(w, http.StatusAccepted, map[string]int{"lines": len(lines)})
}

// Run is one recorded macro execution.
type Run struct {
	MacroID string
	Lines   []string
	At      time.Time
}

// RunLog records macro runs. The mock controller has no machine attached,
// so a run only lands here.
type RunLog struct {
	mu   sync.Mutex
	runs []Run
}

// Record appends a run.
func (l *RunLog) Record(id string, lines []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, Run{MacroID: id, Lines: lines, At: time.Now().UTC()})
}

// Runs returns a copy of the recorded runs.
func (l *RunLog) Runs() []Run {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Run, len(l.runs))
	copy(out, l.runs)
	return out
}
