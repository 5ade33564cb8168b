package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"netatlas/internal/domain"
	"netatlas/internal/service"
)

// Handler bundles the service layer behind the HTTP surface.
type Handler struct {
	tree    *service.TreeService
	network *service.NetworkService
	devices *service.DeviceService
	secrets *service.SecretService
	logger  *zap.Logger
}

// New creates the HTTP handler over the services.
func New(tree *service.TreeService, network *service.NetworkService, devices *service.DeviceService, secrets *service.SecretService, logger *zap.Logger) *Handler {
	return &Handler{
		tree:    tree,
		network: network,
		devices: devices,
		secrets: secrets,
		logger:  logger,
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const (
	headerSubject = "X-Identity-Subject"
	headerRole    = "X-Identity-Role"
	headerRoots   = "X-Identity-Roots"
	headerActive  = "X-Identity-Active"
)

// identityFrom resolves the caller identity from the proxy-injected headers.
func identityFrom(r *http.Request) (domain.Identity, bool) {
	role := domain.Role(r.Header.Get(headerRole))
	if !role.Valid() {
		return domain.Identity{}, false
	}

	identity := domain.Identity{
		Subject: r.Header.Get(headerSubject),
		Role:    role,
		Active:  true,
	}
	if raw := r.Header.Get(headerRoots); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				identity.RootIDs = append(identity.RootIDs, id)
			}
		}
	}
	if raw := r.Header.Get(headerActive); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			identity.Active = active
		}
	}
	return identity, true
}

// Identified wraps a handler, rejecting requests without a resolvable
// identity before any service is reached.
func (h *Handler) Identified(next func(http.ResponseWriter, *http.Request, domain.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFrom(r)
		if !ok {
			h.writeError(w, "Unauthorized", "a valid identity role header is required", http.StatusUnauthorized)
			return
		}
		next(w, r, identity)
	}
}

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidHierarchy),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrMissingVlan),
		errors.Is(err, domain.ErrMissingReceiverCapability),
		errors.Is(err, domain.ErrInvalidTechnology),
		errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// serviceError writes a service-layer error with the mapped status. Internal
// errors are logged and their details withheld from the response.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.writeError(w, "Internal error", "", status)
		return
	}
	h.writeError(w, http.StatusText(status), err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, msg, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Details: details}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}

// decode reads a JSON request body into dst, reporting a 422 on malformed
// input. Returns false when the response has been written already.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order: the first listed is the outermost.
func Chain(h http.Handler, middleware ...Middleware) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// Logging logs every request with method, path, status, and duration.
func Logging(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// Recover converts panics into 500 responses instead of dropped connections.
func Recover(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec))
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows browser clients on other origins to reach the API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+headerSubject+", "+headerRole+", "+headerRoots+", "+headerActive)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
