package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heyfastq/heyfastq-go/internal/fastq"
	"github.com/heyfastq/heyfastq-go/internal/kmer"
	"github.com/heyfastq/heyfastq-go/internal/pipeline"
	"github.com/heyfastq/heyfastq-go/internal/read"
	"github.com/heyfastq/heyfastq-go/internal/stage"
	"github.com/heyfastq/heyfastq-go/internal/xio"
	"github.com/heyfastq/heyfastq-go/pkg/heyfastq"
)

const (
	defaultKmerSize   = kmer.DefaultK
	defaultSampleSize = 1000
)

// MaxBodyBytes caps the FASTQ body accepted by ReadsHandler.
var MaxBodyBytes int64 = 32 << 20

// MaxThreads caps the worker count a request may ask for.
var MaxThreads = runtime.NumCPU()

// MaxChunkSize caps the reads per parallel work unit a request may ask for.
var MaxChunkSize = 1 << 20

// Counter headers set on every successful ReadsHandler response.
const (
	HeaderInputReads  = "X-Heyfastq-Input-Reads"
	HeaderInputBases  = "X-Heyfastq-Input-Bases"
	HeaderOutputReads = "X-Heyfastq-Output-Reads"
	HeaderOutputBases = "X-Heyfastq-Output-Bases"
)

type queryParams struct {
	values url.Values
	err    error
}

func (p *queryParams) intParam(name string, def int) int {
	v := p.values.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", name, v)
	}
	return n
}

func (p *queryParams) int64Param(name string, def int64) int64 {
	v := p.values.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", name, v)
	}
	return n
}

func (p *queryParams) floatParam(name string, def float64) float64 {
	v := p.values.Get(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", name, v)
	}
	return f
}

func (p *queryParams) boolParam(name string) bool {
	v := p.values.Get(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", name, v)
	}
	return b
}

// readsOp is one operation resolved from the URL. Exactly one field is set.
type readsOp struct {
	transform stage.Transform
	predicate stage.Predicate
	sample    *pipeline.SubsampleOptions
}

func parseReadsOp(op string, q *queryParams) (readsOp, bool) {
	switch op {
	case "trim-fixed":
		return readsOp{transform: stage.FixedTrim{
			Length: q.intParam("length", stage.DefaultLength),
			Start:  q.intParam("start", 0),
		}}, true
	case "trim-qual":
		return readsOp{transform: stage.MovingAverageTrim{
			Window:    q.intParam("window", stage.DefaultWindow),
			Threshold: q.intParam("threshold", stage.DefaultThreshold),
		}}, true
	case "trim-ends":
		return readsOp{transform: stage.EndTrim{
			StartThreshold: q.intParam("start_threshold", stage.DefaultThreshold),
			EndThreshold:   q.intParam("end_threshold", stage.DefaultThreshold),
		}}, true
	case "filter-length":
		return readsOp{predicate: stage.LengthFilter{
			Threshold: q.intParam("length", stage.DefaultLength),
			Less:      q.boolParam("less"),
		}}, true
	case "filter-kscore":
		return readsOp{predicate: stage.ComplexityFilter{
			K:        q.intParam("k", defaultKmerSize),
			MinScore: q.floatParam("min_kscore", stage.DefaultMinKScore),
		}}, true
	case "subsample":
		return readsOp{sample: &pipeline.SubsampleOptions{
			N:    q.intParam("n", defaultSampleSize),
			Seed: q.int64Param("seed", 0),
		}}, true
	}
	return readsOp{}, false
}

func openBody(body []byte) (*fastq.Reader, error) {
	rc, err := xio.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return fastq.NewReader(rc), nil
}

func (op readsOp) run(body []byte, c *heyfastq.Counter, opts heyfastq.Options) (pipeline.Source[read.Read], error) {
	src, err := openBody(body)
	if err != nil {
		return nil, err
	}

	switch {
	case op.transform != nil:
		return heyfastq.Apply(src, op.transform, c, opts)
	case op.predicate != nil:
		return heyfastq.Keep(src, op.predicate, c, opts)
	}

	total, err := pipeline.Count[read.Read](src)
	if err != nil {
		return nil, err
	}
	if src, err = openBody(body); err != nil {
		return nil, err
	}
	sample := *op.sample
	sample.Total = total
	return heyfastq.Subsample[read.Read](src, c, sample)
}

// ReadsHandler runs one operation over a FASTQ request body and responds
// with the resulting FASTQ. The body may be gzip or zstd compressed.
func ReadsHandler(w http.ResponseWriter, r *http.Request) {
	q := &queryParams{values: r.URL.Query()}
	op, ok := parseReadsOp(chi.URLParam(r, "op"), q)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown operation")
		return
	}
	opts := heyfastq.Options{
		Threads:   q.intParam("threads", pipeline.DefaultThreads),
		ChunkSize: q.intParam("chunk_size", pipeline.DefaultChunkSize),
	}
	if q.err != nil {
		writeError(w, http.StatusBadRequest, q.err.Error())
		return
	}
	if opts.Threads > MaxThreads {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("threads must be at most %d", MaxThreads))
		return
	}
	if opts.ChunkSize > MaxChunkSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("chunk_size must be at most %d", MaxChunkSize))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var c heyfastq.Counter
	out, err := op.run(body, &c, opts)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer pipeline.Close(out)

	var buf bytes.Buffer
	fw := fastq.NewWriter(&buf)
	if err := pipeline.ForEach(out, fw.Write); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := fw.Flush(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set(HeaderInputReads, strconv.FormatInt(c.InputReads, 10))
	h.Set(HeaderInputBases, strconv.FormatInt(c.InputBases, 10))
	h.Set(HeaderOutputReads, strconv.FormatInt(c.OutputReads, 10))
	h.Set(HeaderOutputBases, strconv.FormatInt(c.OutputBases, 10))
	w.Write(buf.Bytes())
}

func statusFor(err error) int {
	var (
		validation *pipeline.ValidationError
		config     *stage.ConfigError
		parse      *fastq.ParseError
		length     *read.LengthError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &config),
		errors.As(err, &parse), errors.As(err, &length):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
