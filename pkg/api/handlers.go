package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/pipeline"
	"github.com/matzehuels/circlepack/pkg/render"
	"github.com/matzehuels/circlepack/pkg/solver"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New()

// SolveRequest is the body of POST /v1/solve. Omitted fields take the
// pipeline defaults, except domain and n which default to the stock
// problem.
type SolveRequest struct {
	Domain    *packing.Domain `json:"domain,omitempty"`
	N         *int            `json:"n,omitempty" validate:"omitempty,gte=0"`
	Backend   string          `json:"backend,omitempty"`
	Strategy  string          `json:"strategy,omitempty"`
	Seed      uint64          `json:"seed,omitempty"`
	TimeLimit string          `json:"time_limit,omitempty"`
	Tolerance float64         `json:"tolerance,omitempty" validate:"gte=0"`
	Refresh   bool            `json:"refresh,omitempty"`
	// Render lists extra text formats to return: svg, dot, graphviz.
	Render []string `json:"render,omitempty" validate:"dive,oneof=svg dot graphviz"`
}

// SolveResponse is the body of a successful solve.
type SolveResponse struct {
	Result    *pipeline.Result  `json:"result"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

type backendInfo struct {
	Name        string        `json:"name"`
	Regime      solver.Regime `json:"regime"`
	Description string        `json:"description"`
	Default     bool          `json:"default,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) backends(w http.ResponseWriter, _ *http.Request) {
	out := make([]backendInfo, 0, len(solver.Backends))
	for _, b := range solver.Backends {
		out = append(out, backendInfo{
			Name:        string(b),
			Regime:      b.Regime(),
			Description: b.Description(),
			Default:     b == solver.DefaultBackend,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, s.opts.Logger, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode request"))
		return
	}
	opts, err := s.options(req)
	if err != nil {
		writeError(w, s.opts.Logger, err)
		return
	}

	if !s.acquire() {
		writeError(w, s.opts.Logger, errors.New(errors.ErrCodeBusy, "too many solves in progress"))
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	s.release()
	if err != nil {
		writeError(w, s.opts.Logger, err)
		return
	}

	resp := SolveResponse{Result: res}
	if len(req.Render) > 0 {
		resp.Artifacts = make(map[string]string, len(req.Render))
		for _, name := range req.Render {
			f, _ := render.ParseFormat(name)
			data, err := render.Render(r.Context(), res.Packing, f, render.Options{})
			if err != nil {
				writeError(w, s.opts.Logger, errors.Wrap(errors.ErrCodeInternal, err, "render %s", f))
				return
			}
			resp.Artifacts[string(f)] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// options turns a request into pipeline options, applying the server's
// limits.
func (s *Server) options(req SolveRequest) (pipeline.Options, error) {
	if err := validate.Struct(req); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid request")
	}
	opts := pipeline.Options{
		Domain:    packing.DefaultDomain,
		N:         pipeline.DefaultN,
		Backend:   req.Backend,
		Strategy:  req.Strategy,
		Seed:      req.Seed,
		Tolerance: req.Tolerance,
		Refresh:   req.Refresh,
		Logger:    s.opts.Logger,
	}
	if req.Domain != nil {
		opts.Domain = *req.Domain
	}
	if req.N != nil {
		opts.N = *req.N
	}
	if opts.N > s.opts.MaxN {
		return opts, errors.New(errors.ErrCodeInvalidConfig, "n must be at most %d, got %d", s.opts.MaxN, opts.N)
	}
	if req.TimeLimit != "" {
		d, err := time.ParseDuration(req.TimeLimit)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid time_limit %q", req.TimeLimit)
		}
		opts.TimeLimit = d
	}
	if limit := s.opts.MaxTimeLimit; limit > 0 && (opts.TimeLimit == 0 || opts.TimeLimit > limit) {
		opts.TimeLimit = limit
	}
	return opts, nil
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		writeError(w, s.opts.Logger, errors.New(errors.ErrCodeNotFound, "run history is disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, s.opts.Logger, errors.New(errors.ErrCodeInvalidConfig, "invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.runner.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, s.opts.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		writeError(w, s.opts.Logger, errors.New(errors.ErrCodeNotFound, "run history is disabled"))
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.opts.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
