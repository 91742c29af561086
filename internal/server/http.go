// internal/server/http.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quilbridge/internal/device"
	"quilbridge/internal/quil"
	"quilbridge/internal/qvm"
	"quilbridge/internal/sim"
	"quilbridge/internal/version"
)

// Server exposes the qvmd HTTP API over a manager.
type Server struct {
	cfg     Config
	manager *Manager
	sim     *sim.Simulator
	devices []device.Description
	log     *zap.Logger
}

// NewServer builds the HTTP layer. The advertised device list is
// synthesised from the config once, up front.
func NewServer(cfg Config, manager *Manager, log *zap.Logger) (*Server, error) {
	devices := make([]device.Description, 0, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		d, err := dc.Description()
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return &Server{
		cfg:     cfg,
		manager: manager,
		sim:     &sim.Simulator{MaxQubits: cfg.MaxQubits},
		devices: devices,
		log:     log,
	}, nil
}

// Handler returns the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /qvm", s.handleSync)
	mux.HandleFunc("POST /jobs", s.handleSubmit)
	mux.HandleFunc("GET /jobs/{id}", s.handleJob)
	mux.HandleFunc("GET /jobs/{id}/result", s.handleResult)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleCancel)
	mux.HandleFunc("GET /devices", s.handleDevices)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, qvm.ErrorResponse{Error: msg})
}

// handleSync serves the synchronous /qvm endpoint. The request type
// selects the operation; every variant simulates inline and answers on
// the same connection.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req qvm.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	syncRequestsTotal.WithLabelValues(req.Type).Inc()

	switch req.Type {
	case qvm.TypeVersion:
		writeJSON(w, http.StatusOK, qvm.VersionResponse{Version: version.String()})

	case qvm.TypeMultishot:
		p, err := quil.Parse(req.CompiledQuil)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		trials := req.Trials
		if trials < 1 {
			trials = 1
		}
		var seed int64
		if req.RNGSeed != nil {
			seed = *req.RNGSeed
		}
		rows, err := s.sim.Sample(p, trials, seed)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, qvm.RunResponse{RO: rows})

	case qvm.TypeWavefunction:
		p, err := quil.Parse(req.CompiledQuil)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		amps, err := s.sim.Wavefunction(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		pairs := make([][2]float64, len(amps))
		for i, a := range amps {
			pairs[i] = [2]float64{real(a), imag(a)}
		}
		writeJSON(w, http.StatusOK, qvm.WavefunctionResponse{Amplitudes: pairs})

	case qvm.TypeExpectation:
		prep, err := quil.Parse(req.StatePrep)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ops := make([]*quil.Program, len(req.Operators))
		for i, text := range req.Operators {
			if ops[i], err = quil.Parse(text); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		vals, err := s.sim.Expectation(prep, ops)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, qvm.ExpectationResponse{Expectations: vals})

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req qvm.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Shots < 1 {
		writeError(w, http.StatusBadRequest, "shots must be positive")
		return
	}
	j, err := s.manager.Submit(req.Quil, req.Shots, req.Seed)
	switch {
	case errors.Is(err, quil.ErrSyntax):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case err != nil:
		s.log.Error("submit job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "submit failed")
	default:
		writeJSON(w, http.StatusOK, jobInfo(j))
	}
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.manager.Job(r.PathValue("id"))
	if err != nil {
		s.jobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobInfo(j))
}

// handleResult answers 404 until the job is done, so pollers can treat
// "not yet" and "no such job" uniformly as retry-or-give-up.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	j, err := s.manager.Job(r.PathValue("id"))
	if err != nil {
		s.jobError(w, err)
		return
	}
	switch j.Status {
	case qvm.StatusDone:
		writeJSON(w, http.StatusOK, qvm.RunResponse{RO: j.Result})
	case qvm.StatusFailed:
		writeError(w, http.StatusConflict, j.Error)
	case qvm.StatusCancelled:
		writeError(w, http.StatusConflict, "job was cancelled")
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("job %s is %s", j.ID, j.Status))
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	j, err := s.manager.Cancel(r.PathValue("id"))
	switch {
	case errors.Is(err, ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrJobTerminal):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.log.Error("cancel job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cancel failed")
	default:
		writeJSON(w, http.StatusOK, jobInfo(j))
	}
}

// handleDevices filters the advertised devices. Absent parameters
// default to QPUs only, matching the client's ListDevices defaults.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	qpus, err := boolParam(r, "qpus", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	qvms, err := boolParam(r, "qvms", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]device.Description, 0, len(s.devices))
	for _, d := range s.devices {
		if (d.QPU && qpus) || (!d.QPU && qvms) {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, qvm.DevicesResponse{Devices: out})
}

func (s *Server) jobError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrJobNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error("load job", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "job lookup failed")
}

func jobInfo(j *Job) qvm.JobInfo {
	return qvm.JobInfo{ID: j.ID, Status: j.Status, Digest: j.Digest, Error: j.Error}
}

func boolParam(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parameter %s: %v", name, err)
	}
	return v, nil
}
