package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/playback"
	"github.com/despertad/wakefolder/internal/usecase"
	"github.com/despertad/wakefolder/pkg/logger"
)

type handler struct {
	uc  *usecase.Alarms
	pc  *playback.Controller
	log *logger.Logger
}

type alarmRequest struct {
	Hour      int     `json:"hour"`
	Minute    int     `json:"minute"`
	FolderURI string  `json:"folderUri"`
	Days      []int   `json:"days"`
	IsActive  *bool   `json:"isActive,omitempty"`
	Volume    float64 `json:"volume"`
}

func (req alarmRequest) toAlarm() alarm.Alarm {
	days := make([]time.Weekday, len(req.Days))
	for i, d := range req.Days {
		days[i] = time.Weekday(d)
	}
	a := alarm.Alarm{
		Hour:      req.Hour,
		Minute:    req.Minute,
		FolderURI: req.FolderURI,
		Days:      days,
		Volume:    req.Volume,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	return a
}

type toggleRequest struct {
	IsActive bool `json:"isActive"`
}

type folderRequest struct {
	FolderURI string `json:"folderUri"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.uc.List(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, alarms)
}

func (h *handler) createAlarm(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.uc.Create(r.Context(), req.toAlarm())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *handler) getAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.uc.Get(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *handler) updateAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	a := req.toAlarm()
	a.ID = id
	if req.IsActive == nil {
		a.IsActive = true
	}

	updated, err := h.uc.Update(r.Context(), a)
	if errors.Is(err, usecase.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *handler) toggleAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	toggled, err := h.uc.Toggle(r.Context(), id, req.IsActive)
	if errors.Is(err, usecase.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, toggled)
}

func (h *handler) deleteAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	err = h.uc.Delete(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.uc.LastFolder(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, folderRequest{FolderURI: folder})
}

func (h *handler) putFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.uc.SetLastFolder(r.Context(), req.FolderURI); err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *handler) stopPlayback(w http.ResponseWriter, _ *http.Request) {
	h.pc.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func alarmID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) respondError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error("http request failed", logger.Err(err))
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
