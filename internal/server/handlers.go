package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caremetrics/stress-screen/internal/predict"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, s.basePage())
}

// handleFormPredict scores one form submission and re-renders the page with
// the result below the form.
func (s *Server) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseForm(); err != nil {
		s.renderFormError(w, "The submission could not be read. Please try again.")
		return
	}

	req, err := s.formRequest(r)
	if err != nil {
		s.metrics.predictionErrors.Inc()
		s.renderFormError(w, err.Error())
		return
	}

	res, err := s.pipeline.Run(req)
	if err != nil {
		s.metrics.predictionErrors.Inc()
		zap.L().Error("form prediction failed", zap.Error(err))
		s.renderFormError(w, "The screening could not be computed for these inputs.")
		return
	}
	if req.WithAttribution && res.Attribution == nil {
		s.metrics.attributionFailures.Inc()
	}
	s.metrics.observePrediction(res.Predicted, start)

	page := s.basePage()
	page.Threshold = strconv.FormatFloat(res.Threshold, 'f', 2, 64)
	page.ShowAttribution = req.WithAttribution
	page.Result = buildResultView(res)
	s.renderPage(w, page)
}

// formRequest parses and validates the form fields into a scoring request.
func (s *Server) formRequest(r *http.Request) (predict.Request, error) {
	features := make(map[string]float64, len(s.schema.Fields))
	for _, f := range s.schema.Fields {
		raw := r.FormValue(f.Name)
		if raw == "" {
			return predict.Request{}, eris.Errorf("missing value for %s", s.schema.DisplayLabel(f.Name))
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return predict.Request{}, eris.Errorf("invalid value for %s: %q", s.schema.DisplayLabel(f.Name), raw)
		}
		if err := s.schema.Validate(f.Name, v); err != nil {
			return predict.Request{}, eris.Errorf("invalid value for %s: %v", s.schema.DisplayLabel(f.Name), v)
		}
		features[f.Name] = v
	}

	req := predict.Request{
		Features:        features,
		WithAttribution: r.FormValue("attribution") != "",
	}
	if raw := r.FormValue("threshold"); raw != "" {
		thr, err := strconv.ParseFloat(raw, 64)
		if err != nil || thr < 0 || thr > 1 {
			return predict.Request{}, eris.Errorf("threshold must be between 0 and 1")
		}
		req.Threshold = &thr
	}
	return req, nil
}

// apiRequest is the JSON API request body.
type apiRequest struct {
	Features    map[string]float64 `json:"features"`
	Threshold   *float64           `json:"threshold,omitempty"`
	Attribution bool               `json:"attribution,omitempty"`
}

// handleAPIPredict scores one JSON request and returns the full result.
func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in apiRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Threshold != nil && (*in.Threshold < 0 || *in.Threshold > 1) {
		writeJSONError(w, http.StatusBadRequest, "threshold must be between 0 and 1")
		return
	}
	for name, v := range in.Features {
		if err := s.schema.Validate(name, v); err != nil {
			s.metrics.predictionErrors.Inc()
			writeJSONError(w, http.StatusBadRequest, eris.Cause(err).Error())
			return
		}
	}

	req := predict.Request{
		Features:        in.Features,
		Threshold:       in.Threshold,
		WithAttribution: in.Attribution,
	}
	res, err := s.pipeline.Run(req)
	if err != nil {
		s.metrics.predictionErrors.Inc()
		zap.L().Error("api prediction failed", zap.Error(err))
		writeJSONError(w, http.StatusUnprocessableEntity, eris.Cause(err).Error())
		return
	}
	if req.WithAttribution && res.Attribution == nil {
		s.metrics.attributionFailures.Inc()
	}
	s.metrics.observePrediction(res.Predicted, start)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) renderPage(w http.ResponseWriter, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index", page); err != nil {
		zap.L().Error("render page", zap.Error(err))
	}
}

func (s *Server) renderFormError(w http.ResponseWriter, msg string) {
	page := s.basePage()
	page.Error = msg
	w.WriteHeader(http.StatusBadRequest)
	s.renderPage(w, page)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
