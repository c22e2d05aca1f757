package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyfastq/heyfastq-go/internal/xio"
)

const sampleFASTQ = "@a\nGGCAGGCAGG\n+\nIIIIIII###\n@b\nAAAAAAAAAA\n+\nIIIIIIIIII\n@c\nACGT\n+\nIIII\n"

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/kscore", KScoreHandler)
	r.Post("/api/kmers", KmersHandler)
	r.Post("/api/quality/qvals", QValsHandler)
	r.Post("/api/reads/{op}", ReadsHandler)
	return r
}

func do(t *testing.T, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestKScoreHandler(t *testing.T) {
	rec := do(t, "/api/kscore", strings.NewReader(`{"sequence": "AAAATAAAAT", "k": 4}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KScoreResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 0.5, resp.KScore, 1e-9)
	assert.Equal(t, 4, resp.K)
	assert.Equal(t, 10, resp.Length)
}

func TestKScoreHandlerDefaultK(t *testing.T) {
	rec := do(t, "/api/kscore", strings.NewReader(`{"sequence": "AAAAA"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KScoreResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, defaultKmerSize, resp.K)
	assert.InDelta(t, 0.2, resp.KScore, 1e-9)
}

func TestKScoreHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"negative k", `{"sequence": "ACGT", "k": -1}`},
		{"missing sequence", `{"k": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, "/api/kscore", strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestKmersHandler(t *testing.T) {
	rec := do(t, "/api/kmers", strings.NewReader(`{"sequence": "ACGT", "k": 2}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KmersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"AC", "CG", "GT"}, resp.Kmers)

	rec = do(t, "/api/kmers", strings.NewReader(`{"sequence": "AC", "k": 5}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"k": 5, "kmers": []}`, rec.Body.String())
}

func TestQValsHandler(t *testing.T) {
	rec := do(t, "/api/quality/qvals", strings.NewReader(`{"quality": "!+5?I"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QValsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []int{0, 10, 20, 30, 40}, resp.QVals)
	assert.Equal(t, 5, resp.Length)
	assert.Equal(t, 0, resp.Min)
	assert.Equal(t, 40, resp.Max)
	assert.InDelta(t, 20.0, resp.Mean, 1e-9)
	assert.Equal(t, 20, resp.Median)
	assert.InDelta(t, 0.4, resp.HighQualityRatio, 1e-9)
}

func TestQValsHandlerErrors(t *testing.T) {
	rec := do(t, "/api/quality/qvals", strings.NewReader(`{"quality": ""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, "/api/quality/qvals", strings.NewReader(`{"quality": "II\u0010"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadsHandler(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		counter [4]string
	}{
		{
			name:    "trim fixed",
			path:    "/api/reads/trim-fixed?length=3",
			want:    "@a\nGGC\n+\nIII\n@b\nAAA\n+\nIII\n@c\nACG\n+\nIII\n",
			counter: [4]string{"3", "24", "3", "9"},
		},
		{
			name:    "trim qual",
			path:    "/api/reads/trim-qual?window=2&threshold=20",
			want:    "@a\nGGCAGGC\n+\nIIIIIII\n@b\nAAAAAAAAAA\n+\nIIIIIIIIII\n@c\nACGT\n+\nIIII\n",
			counter: [4]string{"3", "24", "3", "21"},
		},
		{
			name:    "trim ends",
			path:    "/api/reads/trim-ends",
			want:    "@a\nGGCAGGC\n+\nIIIIIII\n@b\nAAAAAAAAAA\n+\nIIIIIIIIII\n@c\nACGT\n+\nIIII\n",
			counter: [4]string{"3", "24", "3", "21"},
		},
		{
			name:    "filter length",
			path:    "/api/reads/filter-length?length=5",
			want:    "@a\nGGCAGGCAGG\n+\nIIIIIII###\n@b\nAAAAAAAAAA\n+\nIIIIIIIIII\n",
			counter: [4]string{"3", "24", "2", "20"},
		},
		{
			name:    "filter length less",
			path:    "/api/reads/filter-length?length=5&less=true",
			want:    "@c\nACGT\n+\nIIII\n",
			counter: [4]string{"3", "24", "1", "4"},
		},
		{
			name:    "filter kscore parallel",
			path:    "/api/reads/filter-kscore?k=2&min_kscore=0.3&threads=2&chunk_size=1",
			want:    "@a\nGGCAGGCAGG\n+\nIIIIIII###\n@c\nACGT\n+\nIIII\n",
			counter: [4]string{"3", "24", "2", "14"},
		},
		{
			name:    "subsample everything",
			path:    "/api/reads/subsample?n=10&seed=3",
			want:    sampleFASTQ,
			counter: [4]string{"3", "24", "3", "24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.path, strings.NewReader(sampleFASTQ))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, rec.Body.String())
			assert.Equal(t, tt.counter[0], rec.Header().Get(HeaderInputReads))
			assert.Equal(t, tt.counter[1], rec.Header().Get(HeaderInputBases))
			assert.Equal(t, tt.counter[2], rec.Header().Get(HeaderOutputReads))
			assert.Equal(t, tt.counter[3], rec.Header().Get(HeaderOutputBases))
		})
	}
}

func TestReadsHandlerSubsampleReproducible(t *testing.T) {
	first := do(t, "/api/reads/subsample?n=2&seed=11", strings.NewReader(sampleFASTQ))
	second := do(t, "/api/reads/subsample?n=2&seed=11", strings.NewReader(sampleFASTQ))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "2", first.Header().Get(HeaderOutputReads))
	assert.Equal(t, "3", first.Header().Get(HeaderInputReads))
}

func TestReadsHandlerCompressedBody(t *testing.T) {
	var buf bytes.Buffer
	w, err := xio.NewWriter(&buf, xio.Gzip, 0)
	require.NoError(t, err)
	_, err = io.WriteString(w, sampleFASTQ)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := do(t, "/api/reads/filter-length?length=5&less=1", &buf)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "@c\nACGT\n+\nIIII\n", rec.Body.String())
}

func TestReadsHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown op", "/api/reads/align", sampleFASTQ, http.StatusNotFound},
		{"bad param", "/api/reads/trim-fixed?length=ten", sampleFASTQ, http.StatusBadRequest},
		{"bad threads", "/api/reads/filter-length?threads=0", sampleFASTQ, http.StatusBadRequest},
		{"bad chunk size", "/api/reads/trim-qual?chunk_size=-1", sampleFASTQ, http.StatusBadRequest},
		{"bad window", "/api/reads/trim-qual?window=0", sampleFASTQ, http.StatusBadRequest},
		{"bad kscore", "/api/reads/filter-kscore?min_kscore=1.5", sampleFASTQ, http.StatusBadRequest},
		{"bad sample size", "/api/reads/subsample?n=-1", sampleFASTQ, http.StatusBadRequest},
		{"malformed fastq", "/api/reads/trim-fixed", "@a\nACGT\n+\nII\n", http.StatusBadRequest},
		{"truncated fastq", "/api/reads/filter-length", "@a\nACGT\n", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.path, strings.NewReader(tt.body))
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestReadsHandlerBodyLimit(t *testing.T) {
	old := MaxBodyBytes
	MaxBodyBytes = 8
	defer func() { MaxBodyBytes = old }()

	rec := do(t, "/api/reads/trim-fixed", strings.NewReader(sampleFASTQ))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReadsHandlerLimits(t *testing.T) {
	oldThreads, oldChunk := MaxThreads, MaxChunkSize
	MaxThreads, MaxChunkSize = 4, 100
	defer func() { MaxThreads, MaxChunkSize = oldThreads, oldChunk }()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"threads at limit", "/api/reads/trim-fixed?threads=4", http.StatusOK},
		{"threads over limit", "/api/reads/trim-fixed?threads=5", http.StatusBadRequest},
		{"threads huge", "/api/reads/trim-fixed?threads=1099511627776", http.StatusBadRequest},
		{"chunk size at limit", "/api/reads/trim-fixed?threads=2&chunk_size=100", http.StatusOK},
		{"chunk size huge", "/api/reads/trim-fixed?threads=2&chunk_size=1099511627776", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.path, strings.NewReader(sampleFASTQ))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestLargeKmerSize(t *testing.T) {
	rec := do(t, "/api/kscore", strings.NewReader(`{"sequence": "ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT", "k": 32}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp KScoreResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 4.0/40.0, resp.KScore, 1e-9)

	rec = do(t, "/api/reads/filter-kscore?k=32&min_kscore=0&threads=2&chunk_size=1", strings.NewReader(sampleFASTQ))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sampleFASTQ, rec.Body.String())
}
