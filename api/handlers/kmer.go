package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/heyfastq/heyfastq-go/pkg/heyfastq"
)

// KScoreRequest represents a complexity score request.
type KScoreRequest struct {
	Sequence string `json:"sequence"`
	K        int    `json:"k"`
}

// KScoreResponse represents the response for complexity scoring.
type KScoreResponse struct {
	KScore float64 `json:"kscore"`
	K      int     `json:"k"`
	Length int     `json:"length"`
}

// KScoreHandler handles complexity score requests. K defaults to 4.
func KScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req KScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.K == 0 {
		req.K = defaultKmerSize
	}
	if req.K < 0 {
		writeError(w, http.StatusBadRequest, "k must be positive")
		return
	}
	if req.Sequence == "" {
		writeError(w, http.StatusBadRequest, "sequence is required")
		return
	}

	writeJSON(w, KScoreResponse{
		KScore: heyfastq.KScore(req.Sequence, req.K),
		K:      req.K,
		Length: len(req.Sequence),
	})
}

// KmersResponse represents the k-mer windows of a sequence.
type KmersResponse struct {
	K     int      `json:"k"`
	Kmers []string `json:"kmers"`
}

// KmersHandler handles k-mer window requests.
func KmersHandler(w http.ResponseWriter, r *http.Request) {
	var req KScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.K <= 0 {
		writeError(w, http.StatusBadRequest, "k must be positive")
		return
	}

	kmers := heyfastq.Kmers(req.Sequence, req.K)
	if kmers == nil {
		kmers = []string{}
	}
	writeJSON(w, KmersResponse{K: req.K, Kmers: kmers})
}
