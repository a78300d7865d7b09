package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/cache"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/calc"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/validate"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 16

// ValidateResponse defines the body returned by POST /v1/validate
type ValidateResponse struct {
	Valid      bool                      `json:"valid"`
	Violations validate.ValidationErrors `json:"violations"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// GetTCO defines a GET handler computing a TCO comparison from query parameters
func (h *httpServer) GetTCO(w http.ResponseWriter, r *http.Request) {
	params, err := parseQuery(r.URL.Query())
	if err != nil {
		h.log.Debug("query parsing failed", "error", err)
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error(), false, nil)
		return
	}
	h.respondTCO(w, r, params)
}

// PostTCO defines a POST handler computing a TCO comparison from a JSON body.
// Fields missing from the body keep their default values.
func (h *httpServer) PostTCO(w http.ResponseWriter, r *http.Request) {
	params, err := decodeBody(w, r)
	if err != nil {
		h.log.Debug("body decoding failed", "error", err)
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error(), false, nil)
		return
	}
	h.respondTCO(w, r, params)
}

// PostValidate reports every violation of the submitted input without computing
func (h *httpServer) PostValidate(w http.ResponseWriter, r *http.Request) {
	params, err := decodeBody(w, r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error(), false, nil)
		return
	}

	resp := ValidateResponse{Valid: true, Violations: validate.ValidationErrors{}}
	if _, err := validate.Validate(params); err != nil {
		verrs, ok := validate.IsValidationError(err)
		if !ok {
			h.fail(w, r, err)
			return
		}
		resp.Valid = false
		resp.Violations = verrs
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetDefaults returns the default scenario
func (h *httpServer) GetDefaults(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dal.Defaults())
}

// Health handles GET /health
func (h *httpServer) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

func (h *httpServer) notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "no route for "+r.URL.Path, false, nil)
}

func (h *httpServer) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path), false, nil)
}

func (h *httpServer) respondTCO(w http.ResponseWriter, r *http.Request, params dal.InputParameters) {
	resp, err := h.evaluate(r.Context(), params)
	if err != nil {
		if verrs, ok := validate.IsValidationError(err); ok {
			h.log.Info("input rejected", "violations", len(verrs), "request_id", RequestIDFrom(r.Context()))
			WriteError(w, r, http.StatusUnprocessableEntity, ErrCodeValidationFailed,
				"input validation failed", false, map[string]interface{}{"violations": verrs})
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *httpServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("request failed", "error", err, "request_id", RequestIDFrom(r.Context()))
	WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error", true, nil)
}

// evaluate validates params and serves the result from the cache when possible.
// Cache errors are logged and the result is computed instead. Results that
// overflow are rejected like invalid input and never cached.
func (h *httpServer) evaluate(ctx context.Context, params dal.InputParameters) (dal.TCOResponse, error) {
	valid, err := validate.Validate(params)
	if err != nil {
		return dal.TCOResponse{}, rejected(err)
	}

	key := cache.Key(valid)
	result, hit, err := h.cache.Get(ctx, key)
	switch {
	case err != nil:
		cacheLookupsTotal.WithLabelValues("error").Inc()
		h.log.Warn("cache lookup failed", "key", key, "error", err)
		hit = false
	case hit:
		cacheLookupsTotal.WithLabelValues("hit").Inc()
	default:
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	if !hit {
		result = calc.ComputeTCO(valid)
		if err := calc.CheckFinite(result); err != nil {
			return dal.TCOResponse{}, rejected(err)
		}
		if err := h.cache.Set(ctx, key, result); err != nil {
			h.log.Warn("cache store failed", "key", key, "error", err)
		}
	}
	calculationsTotal.WithLabelValues("ok").Inc()

	return dal.TCOResponse{
		Input:     valid,
		Result:    result,
		Breakdown: calc.BreakdownOf(result),
		Verdict:   dal.VerdictOf(result.DiffTCO),
		Cached:    hit,
	}, nil
}

// rejected counts an invalid calculation and its violations
func rejected(err error) error {
	calculationsTotal.WithLabelValues("invalid").Inc()
	if verrs, ok := validate.IsValidationError(err); ok {
		for _, v := range verrs {
			violationsTotal.WithLabelValues(string(v.Field)).Inc()
		}
	}
	return err
}

// parseQuery overrides the defaults with every input field present in vars
func parseQuery(vars url.Values) (dal.InputParameters, error) {
	params := dal.Defaults()
	for _, field := range dal.Fields() {
		raw := vars.Get(string(field))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return dal.InputParameters{}, fmt.Errorf("%s must be a number: %q", field, raw)
		}
		if params, err = params.With(field, value); err != nil {
			return dal.InputParameters{}, err
		}
	}
	return params, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request) (dal.InputParameters, error) {
	params := dal.Defaults()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			return dal.Defaults(), nil
		}
		return dal.InputParameters{}, fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return dal.InputParameters{}, errors.New("invalid request body: unexpected data after the JSON object")
	}
	return params, nil
}
