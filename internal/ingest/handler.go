package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
	watcher *Watcher
	prefix  string
}

func NewHandler(service *Service, watcher *Watcher, prefix string) *Handler {
	return &Handler{
		service: service,
		watcher: watcher,
		prefix:  prefix,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ingest/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/ingest/run", h.IngestFile).Methods("POST")
	router.HandleFunc("/api/ingest/sweep", h.Sweep).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = h.prefix
	}

	files, err := h.service.ListFiles(r.Context(), prefix)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.IngestObject(r.Context(), key)
	if err != nil {
		http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		http.Error(w, "watcher not configured", http.StatusServiceUnavailable)
		return
	}

	ingested := h.watcher.Sweep(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"ingested": ingested})
}
