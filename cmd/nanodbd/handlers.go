package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"nanodb/db/engine"
	"nanodb/db/session"
)

type handler struct {
	sess   *session.Session
	logger *zap.SugaredLogger
}

type queryRequest struct {
	SQL string `json:"sql"`
}

type statementResult struct {
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]interface{} `json:"rows,omitempty"`
	Message string          `json:"message,omitempty"`
}

type queryResponse struct {
	Results []statementResult `json:"results"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listTables(w http.ResponseWriter, r *http.Request) {
	names, err := h.sess.Engine.Catalog.ListTables()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": names})
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, outcome, err := h.sess.Run(r.Context(), req.SQL)
	if err != nil {
		h.logger.Errorw("query failed", "sql", req.SQL, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if outcome == session.Exit || outcome == session.Crash {
		http.Error(w, "EXIT/QUIT/CRASH are not valid over HTTP", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{Results: toStatementResults(results)})
}

func toStatementResults(results []*engine.ResultSet) []statementResult {
	out := make([]statementResult, len(results))
	for i, res := range results {
		sr := statementResult{Columns: res.Columns, Message: res.Message}
		if len(res.Rows) > 0 {
			sr.Rows = make([][]interface{}, len(res.Rows))
			for j, row := range res.Rows {
				cells := make([]interface{}, len(row))
				for k, v := range row {
					if v.IsNull() {
						cells[k] = nil
					} else {
						cells[k] = v.String()
					}
				}
				sr.Rows[j] = cells
			}
		}
		out[i] = sr
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
