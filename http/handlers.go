package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"phoneprice/ml"
)

// PricePredictor is the inference path the handlers depend on.
type PricePredictor interface {
	Predict(ctx context.Context, features ml.FeatureVector) (ml.Prediction, error)
	Ready() error
}

type handlers struct {
	predictor PricePredictor
	logger    *zap.Logger
	live      *liveHandler
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type schemaResponse struct {
	SchemaVersion string           `json:"schema_version"`
	Features      []ml.FeatureSpec `json:"features"`
	Labels        []ml.PriceLabel  `json:"labels"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Error  string `json:"error,omitempty"`
}

// RegisterHandlers mounts the form, JSON API and live endpoint on mux.
func RegisterHandlers(mux *http.ServeMux, predictor PricePredictor, allowedOrigins []string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{
		predictor: predictor,
		logger:    logger,
	}
	h.live = newLiveHandler(h, allowedOrigins)

	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handleFormSubmit)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/ws", h.live.ServeHTTP)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.predictor.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Model: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: "ready"})
}

func (h *handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		SchemaVersion: ml.SchemaVersion,
		Features:      ml.FeatureSpecs(),
		Labels:        ml.PriceLabels(),
	})
}

func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	prediction, err := h.predict(r.Context(), req.Features)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (h *handlers) predict(ctx context.Context, values map[string]float64) (ml.Prediction, error) {
	features, err := ml.FeatureVectorFromMap(values)
	if err != nil {
		return ml.Prediction{}, err
	}
	prediction, err := h.predictor.Predict(ctx, features)
	if err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
		}
		return ml.Prediction{}, err
	}
	return prediction, nil
}

// statusFor maps inference errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ml.ErrSchemaMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrFeatureOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ml.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
