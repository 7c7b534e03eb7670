package handlers

import (
	"net/http"
)

func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		records, err := h.records.List()
		if err != nil {
			h.writeError(w, "Failed to load records: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, records)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		h.writeError(w, "Unable to write healthcheck", http.StatusInternalServerError)
	}
}
