// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"example.com/tracker/internal/domain"
)

const (
	// dateInputLayout is the yyyy-mm-dd form accepted on the wire.
	dateInputLayout = "2006-01-02"
	// dateOutputLayout renders dates as locale-independent strings,
	// e.g. "Mon Jan 01 1990".
	dateOutputLayout = "Mon Jan 02 2006"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", h.users)
	mux.HandleFunc("/api/users/", h.userSubresource)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createUser(w, r)
	case http.MethodGet:
		h.listUsers(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) userSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	userID, resource := parts[0], parts[1]

	switch {
	case resource == "exercises" && r.Method == http.MethodPost:
		h.addExercise(w, r, userID)
	case resource == "logs" && r.Method == http.MethodGet:
		h.getLog(w, r, userID)
	case resource == "exercises" || resource == "logs":
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}

	username := strings.TrimSpace(values.Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.service.CreateUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserView{ID: user.ID, Username: user.Username})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, UserView{ID: user.ID, Username: user.Username})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) addExercise(w http.ResponseWriter, r *http.Request, userID string) {
	values, err := parseBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}

	description := strings.TrimSpace(values.Get("description"))
	rawDuration := strings.TrimSpace(values.Get("duration"))
	if description == "" || rawDuration == "" {
		writeError(w, http.StatusBadRequest, "description and duration are required")
		return
	}

	durationMin, err := strconv.Atoi(rawDuration)
	if err != nil {
		writeError(w, http.StatusBadRequest, "duration must be an integer")
		return
	}

	// The user lookup precedes date handling so an unknown user id is
	// reported as not-found rather than masked by a date error.
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "unknown user")
			return
		}
		h.serverError(w, r, err)
		return
	}

	var performedAt time.Time
	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		performedAt, err = time.Parse(dateInputLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
	}

	exercise, err := h.service.AddExercise(r.Context(), domain.AddExerciseInput{
		UserID:      user.ID,
		Description: description,
		DurationMin: durationMin,
		PerformedAt: performedAt,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Date:        exercise.PerformedAt.Format(dateOutputLayout),
		Duration:    exercise.DurationMin,
		Description: exercise.Description,
	})
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "unknown user")
			return
		}
		h.serverError(w, r, err)
		return
	}

	query := r.URL.Query()
	var filter domain.LogFilter

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(dateInputLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = &parsed
	}

	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(dateInputLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		// Inclusive through the whole named day: defaulted dates carry a
		// time-of-day component.
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	// A non-numeric or non-positive limit is ignored, not an error.
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	entries, err := h.service.UserLog(r.Context(), user.ID, filter)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	log := make([]LogEntry, 0, len(entries))
	for _, entry := range entries {
		log = append(log, LogEntry{
			Description: entry.Description,
			Duration:    entry.DurationMin,
			Date:        entry.PerformedAt.Format(dateOutputLayout),
		})
	}

	writeJSON(w, http.StatusOK, LogView{
		ID:       user.ID,
		Username: user.Username,
		Count:    len(log),
		Log:      log,
	})
}

// UserView is the wire shape of a user.
type UserView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// ExerciseView merges the user's identity with the stored exercise's
// fields. The exercise's own id is deliberately absent from the contract.
type ExerciseView struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntry is one projected exercise in a log response.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogView packages a user's filtered exercise log.
type LogView struct {
	ID       string     `json:"_id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

// parseBody normalizes a JSON or form-encoded request body into url.Values
// so handlers validate both encodings the same way.
func parseBody(r *http.Request) (url.Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		values := url.Values{}
		for key, value := range raw {
			switch v := value.(type) {
			case string:
				values.Set(key, v)
			case float64:
				values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
			case bool:
				values.Set(key, strconv.FormatBool(v))
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

// serverError logs the underlying failure and hides the detail from the
// caller.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
