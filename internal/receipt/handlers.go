package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const maxBodySize = 1 << 20 // 1MB

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v as the response body with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// handleProcessReceipt binds, normalizes and stores a submitted receipt
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		slog.Warn("Error decoding receipt", "error", err)
		s.metrics.ReceiptsRejected.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := req.ToReceipt()
	if err != nil {
		slog.Warn("Rejected receipt", "error", err)
		s.metrics.ReceiptsRejected.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err = s.service.ProcessReceipt(receipt)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			slog.Warn("Rejected receipt", "error", err)
			s.metrics.ReceiptsRejected.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		slog.Error("Error processing receipt", "error", err)
		s.metrics.ReceiptsRejected.WithLabelValues("internal").Inc()
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.metrics.ReceiptsProcessed.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"id": receipt.ID})
}

// lookupError maps a service lookup failure to a response
func (s *Server) lookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, ErrReceiptNotFound) {
		writeError(w, http.StatusNotFound, "No receipt found for that id.")
		return
	}
	slog.Error("Error getting receipt", "id", id, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// handleGetPoints returns the points awarded for a receipt
func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	points, err := s.service.GetPoints(id)
	if err != nil {
		s.metrics.PointsQueries.WithLabelValues(queryResult(err)).Inc()
		s.lookupError(w, id, err)
		return
	}

	s.metrics.PointsQueries.WithLabelValues("ok").Inc()
	s.metrics.PointsAwarded.Observe(float64(points))
	writeJSON(w, http.StatusOK, map[string]int{"points": points})
}

// handleGetBreakdown returns the per-rule points for a receipt
func (s *Server) handleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	breakdown, err := s.service.GetBreakdown(id)
	if err != nil {
		s.lookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// handleGetReceipt returns a single normalized receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	receipt, err := s.service.GetReceipt(id)
	if err != nil {
		s.lookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, newReceiptResponse(receipt))
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]ReceiptResponse, 0, len(receipts))
	for _, rc := range receipts {
		resp = append(resp, newReceiptResponse(rc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryResult(err error) string {
	if errors.Is(err, ErrReceiptNotFound) {
		return "not_found"
	}
	return "error"
}
