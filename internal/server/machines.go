package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jask/cncdeck/internal/database/repository"
	"github.com/jask/cncdeck/internal/events"
	"github.com/jask/cncdeck/internal/machine"
)

func toProfile(m repository.Machine) machine.Profile {
	l := machine.Limits(m.Limits)
	return machine.Profile{ID: m.ID, Name: m.Name, Limits: &l}
}

func (h *handler) profiles(ctx context.Context) ([]machine.Profile, error) {
	list, err := h.machines.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]machine.Profile, 0, len(list))
	for _, m := range list {
		out = append(out, toProfile(m))
	}
	return out, nil
}

func (h *handler) listMachines(w http.ResponseWriter, r *http.Request) {
	out, err := h.profiles(r.Context())
	if err != nil {
		http.Error(w, "failed to list machines", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records[machine.Profile]{Records: out})
}

type machineInput struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SortOrder int             `json:"sortOrder"`
	Limits    *machine.Limits `json:"limits"`
}

func (h *handler) upsertMachine(w http.ResponseWriter, r *http.Request) {
	var in machineInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name: this field is required", http.StatusBadRequest)
		return
	}
	m := repository.Machine{ID: in.ID, Name: in.Name, SortOrder: in.SortOrder}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if in.Limits != nil {
		m.Limits = repository.Limits(*in.Limits)
	}
	if err := h.machines.Upsert(r.Context(), m); err != nil {
		http.Error(w, "failed to save machine", http.StatusInternalServerError)
		return
	}
	h.broadcastMachines(r.Context())
	writeJSON(w, http.StatusOK, toProfile(m))
}

func (h *handler) deleteMachine(w http.ResponseWriter, r *http.Request) {
	err := h.machines.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "machine not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to delete machine", http.StatusInternalServerError)
		return
	}
	h.broadcastMachines(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) broadcastMachines(ctx context.Context) {
	list, err := h.profiles(ctx)
	if err != nil {
		log.Printf("warn: list machines for broadcast: %v", err)
		return
	}
	h.hub.Publish(events.TopicUpdateMachineProfiles, list)
}
