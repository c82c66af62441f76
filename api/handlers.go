/*
handlers.go - HTTP API handlers for the mirror-line engine

PURPOSE:
  Exposes the schedule engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to mirror.Service for every computed
  view. Reference data (shift codes, lines, holidays, settings) is written
  straight to the store.

ENDPOINTS:
  Shift codes:
    GET    /api/shift-codes                     List the shift-code table
    POST   /api/shift-codes                     Create or replace a code

  Lines:
    GET    /api/lines                           List lines by number
    POST   /api/lines                           Create or replace a line
    GET    /api/lines/{id}                      Get a line
    DELETE /api/lines/{id}                      Delete a line
    GET    /api/lines/{id}/schedule             Expanded calendar
    GET    /api/lines/{id}/statistics           Aggregate statistics
    GET    /api/lines/{id}/mirrors              Ranked mirror candidates
           ?sort=<metric>&dir=asc|desc&candidates=a,b&from=&to=
    GET    /api/lines/{id}/compare/{otherID}    Day-by-day comparison

  Settings:
    GET    /api/settings                        Bid-period parameters
    PUT    /api/settings                        Replace bid-period parameters

  Holidays:
    GET    /api/holidays                        List holidays
    POST   /api/holidays                        Create holiday
    DELETE /api/holidays/{id}                   Delete holiday

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Service: Expansion, statistics, comparison and ranking
  - Factory: JSON to engine type conversion
  - Logger: Structured logging for server-side failures

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid pattern, parameters, metric, direction or body
  - 404: Line or holiday not found
  - 409: Duplicate line number or holiday date
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/factory"
	"github.com/warp/mirror-engine/mirror"
	"github.com/warp/mirror-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *mirror.Service
	Factory *factory.ScheduleFactory
	Logger  *zap.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. A nil service is replaced by one
// reading from store with default thresholds.
func NewHandler(store *sqlite.Store, svc *mirror.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if svc == nil {
		svc = mirror.NewService(store, logger)
	}
	return &Handler{
		Store:   store,
		Service: svc,
		Factory: &factory.ScheduleFactory{OffCode: svc.OffCode},
		Logger:  logger,
	}
}

// =============================================================================
// SHIFT CODE HANDLERS
// =============================================================================

// ListShiftCodes returns the shift-code table.
// GET /api/shift-codes
func (h *Handler) ListShiftCodes(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Store.ListShiftCodes(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list shift codes", err)
		return
	}

	dtos := make([]factory.ShiftCodeJSON, len(defs))
	for i, d := range defs {
		dtos[i] = h.Factory.ShiftCodeToJSON(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShiftCode creates or replaces a shift code.
// POST /api/shift-codes
func (h *Handler) CreateShiftCode(w http.ResponseWriter, r *http.Request) {
	var req factory.ShiftCodeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	def, err := h.Factory.ShiftCodeFromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift code", err)
		return
	}
	if def.Code == h.Factory.OffCode {
		writeError(w, http.StatusBadRequest, "The day-off code cannot be defined as a shift", nil)
		return
	}

	if err := h.Store.SaveShiftCode(r.Context(), def); err != nil {
		h.writeServiceError(w, "Failed to save shift code", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.ShiftCodeToJSON(def))
}

// =============================================================================
// LINE HANDLERS
// =============================================================================

// ListLines returns all lines ordered by number.
// GET /api/lines
func (h *Handler) ListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Store.ListLines(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list lines", err)
		return
	}

	dtos := make([]factory.LineJSON, len(lines))
	for i, l := range lines {
		dtos[i] = h.Factory.LineToJSON(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLine creates or replaces a line. A missing id is generated.
// POST /api/lines
func (h *Handler) CreateLine(w http.ResponseWriter, r *http.Request) {
	var req factory.LineJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	line, err := h.Factory.LineFromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid line", err)
		return
	}

	if err := h.Store.SaveLine(r.Context(), *line); err != nil {
		h.writeServiceError(w, "Failed to save line", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.LineToJSON(*line))
}

// GetLine returns a single line.
// GET /api/lines/{id}
func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request) {
	line, err := h.Store.GetLine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get line", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.LineToJSON(*line))
}

// DeleteLine removes a line.
// DELETE /api/lines/{id}
func (h *Handler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLine(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "Failed to delete line", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// SCHEDULE VIEWS
// =============================================================================

// GetSchedule returns the expanded calendar of a line.
// GET /api/lines/{id}/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sched, err := h.Service.Schedule(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to expand schedule", err)
		return
	}
	catalog, err := h.Service.Catalog(ctx)
	if err != nil {
		h.writeServiceError(w, "Failed to load shift codes", err)
		return
	}

	cl := cycle.NewClassifier(catalog)
	days := make([]ExpandedDayDTO, 0, sched.Expansion.Len())
	for d := range sched.Expansion.All() {
		days = append(days, toExpandedDayDTO(d, cl))
	}

	writeJSON(w, http.StatusOK, ScheduleDTO{
		Line:        h.Factory.LineToJSON(sched.Line),
		Parameters:  h.Factory.ParametersToJSON(sched.Params),
		CycleLength: sched.Expansion.CycleLength(),
		Days:        days,
	})
}

// GetStatistics returns aggregate statistics for a line.
// GET /api/lines/{id}/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Service.Statistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsDTO(ls, h.Factory))
}

// GetMirrors ranks candidate lines against the user's line.
// GET /api/lines/{id}/mirrors
func (h *Handler) GetMirrors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := mirror.MirrorQuery{
		UserLineID: chi.URLParam(r, "id"),
		Metric:     cycle.MetricName(q.Get("sort")),
	}

	if dir := q.Get("dir"); dir != "" {
		d, err := cycle.ParseDirection(dir)
		if err != nil {
			h.writeServiceError(w, "Invalid sort direction", err)
			return
		}
		query.Direction = d
	}
	if c := q.Get("candidates"); c != "" {
		for _, id := range strings.Split(c, ",") {
			if id = strings.TrimSpace(id); id != "" {
				query.CandidateIDs = append(query.CandidateIDs, id)
			}
		}
	}
	window, err := parseWindow(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comparison window (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
		return
	}
	query.Window = window

	results, err := h.Service.FindMirrors(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, "Failed to rank mirror lines", err)
		return
	}

	resp := MirrorsResponse{
		UserLineID: query.UserLineID,
		Metric:     string(query.Metric),
		Direction:  string(query.Direction),
		Results:    toMirrorResultDTOs(results),
	}
	if resp.Metric == "" {
		resp.Metric = string(cycle.MetricUserShiftPatternScore)
	}
	if resp.Direction == "" {
		resp.Direction = string(cycle.Desc)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CompareLines returns the day-by-day comparison of two lines.
// GET /api/lines/{id}/compare/{otherID}
func (h *Handler) CompareLines(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comparison window (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
		return
	}

	lc, err := h.Service.Compare(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "otherID"), window)
	if err != nil {
		h.writeServiceError(w, "Failed to compare lines", err)
		return
	}
	writeJSON(w, http.StatusOK, toComparisonDTO(lc))
}

// parseWindow reads an optional inclusive look-ahead window. Both bounds
// are required when either is given.
func parseWindow(from, to string) (*cycle.Period, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	start, err := cycle.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := cycle.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, errors.New("window ends before it starts")
	}
	return &cycle.Period{Start: start, End: end}, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the bid-period parameters.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetParameters(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load settings", err)
		return
	}
	dto := factory.ParametersJSON{NumCycles: p.NumCycles}
	if !p.StartDate.IsZero() {
		dto.StartDate = p.StartDate.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// UpdateSettings replaces the bid-period parameters.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req factory.ParametersJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Factory.ParametersFromJSON(req)
	if err != nil {
		h.writeServiceError(w, "Invalid settings", err)
		return
	}
	if err := h.Store.SaveParameters(r.Context(), p); err != nil {
		h.writeServiceError(w, "Failed to save settings", err)
		return
	}

	h.Logger.Info("bid period updated",
		zap.String("start_date", p.StartDate.String()),
		zap.Int("num_cycles", p.NumCycles))
	writeJSON(w, http.StatusOK, h.Factory.ParametersToJSON(p))
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.GetAllHolidays(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to get holidays", err)
		return
	}

	dtos := make([]factory.HolidayJSON, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, h.Factory.HolidayToJSON(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	holiday, err := h.Factory.HolidayFromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date (YYYY-MM-DD) and name are required", err)
		return
	}
	holiday.ID = uuid.NewString()

	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.writeServiceError(w, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"holiday": holiday.ID,
	})
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps store and engine errors to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Error: message, Details: err.Error()}
	status := http.StatusBadRequest

	switch {
	case mirror.IsNotFound(err), errors.Is(err, sqlite.ErrHolidayNotFound):
		status, resp.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, sqlite.ErrDuplicateLineNumber), errors.Is(err, sqlite.ErrDuplicateHoliday):
		status, resp.Code = http.StatusConflict, "conflict"
	case errors.Is(err, cycle.ErrUnknownMetric):
		resp.Code = "unknown_metric"
		resp.Details = map[string]any{
			"message":   err.Error(),
			"available": h.Service.Ranker.Metrics(),
		}
	case errors.Is(err, cycle.ErrInvalidDirection):
		resp.Code = "invalid_direction"
	case errors.Is(err, cycle.ErrInvalidPattern):
		resp.Code = "invalid_pattern"
	case errors.Is(err, cycle.ErrInvalidParameters):
		resp.Code = "invalid_parameters"
	default:
		status, resp.Code = http.StatusInternalServerError, "internal"
		h.Logger.Error(message, zap.Error(err))
	}
	writeJSON(w, status, resp)
}
