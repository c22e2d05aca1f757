package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/heyfastq/heyfastq-go/internal/quality"
)

// QValsRequest represents a quality decoding request.
type QValsRequest struct {
	Quality string `json:"quality"`
}

// QValsResponse represents decoded quality values and their summary.
type QValsResponse struct {
	QVals            []int   `json:"qvals"`
	Length           int     `json:"length"`
	Min              int     `json:"min"`
	Max              int     `json:"max"`
	Mean             float64 `json:"mean"`
	Median           int     `json:"median"`
	HighQualityRatio float64 `json:"high_quality_ratio"`
}

// QValsHandler decodes a Phred+33 quality string.
func QValsHandler(w http.ResponseWriter, r *http.Request) {
	var req QValsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scores, err := quality.FromPhred33(req.Quality)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := scores.Statistics()
	writeJSON(w, QValsResponse{
		QVals:            scores.Values,
		Length:           s.Count,
		Min:              s.MinScore,
		Max:              s.MaxScore,
		Mean:             s.Mean,
		Median:           s.Median,
		HighQualityRatio: s.HighQualityRatio,
	})
}
