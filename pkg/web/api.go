package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/linecode"
	"github.com/linelab/linelab/pkg/logger"
	"github.com/linelab/linelab/pkg/plot"
	"github.com/linelab/linelab/pkg/studio"
)

// API handles REST API endpoints
type API struct {
	service  *studio.Service
	repo     *database.RunRepository // nil when the database is disabled
	defaults studio.AnalogDefaults
	logger   *logger.Logger
}

// NewAPI creates a new API instance
func NewAPI(service *studio.Service, repo *database.RunRepository, defaults studio.AnalogDefaults, log *logger.Logger) *API {
	return &API{
		service:  service,
		repo:     repo,
		defaults: defaults,
		logger:   log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeCodecError maps the codec error taxonomy onto HTTP statuses:
// caller mistakes are 400s, anything else is a 500.
func writeCodecError(w http.ResponseWriter, err error) {
	var inputErr *linecode.InvalidInputError
	var schemeErr *linecode.UnsupportedSchemeError
	status := http.StatusInternalServerError
	if errors.As(err, &inputErr) || errors.As(err, &schemeErr) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version, commit, build := GetVersionInfo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "running",
		"service":         "linelab",
		"version":         version,
		"commit":          commit,
		"build_time":      build,
		"samples_per_bit": a.service.SamplesPerBit(),
		"schemes":         linecode.Schemes(),
	})
}

// HandleSchemes handles the /api/schemes endpoint
func (a *API) HandleSchemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, linecode.Schemes())
}

// encodeResponse is an EncodeResult plus the plot step series
type encodeResponse struct {
	*studio.EncodeResult
	PlotSteps []plot.Point `json:"plot_steps"`
}

// HandleEncode handles the /api/encode endpoint
func (a *API) HandleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req studio.EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result, err := a.service.Encode(req)
	if err != nil {
		writeCodecError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, encodeResponse{
		EncodeResult: result,
		PlotSteps:    plot.WaveformSteps(result.Waveform, result.SamplesPerBit),
	})
}

// HandleDecode handles the /api/decode endpoint. Decoding is advisory, so
// the response is always 200; sentinel results pass through as bits.
func (a *API) HandleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req studio.DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	writeJSON(w, http.StatusOK, a.service.Decode(req))
}

// HandleAnalog handles the /api/analog endpoint
func (a *API) HandleAnalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req studio.AnalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result, err := a.service.Analog(req, a.defaults)
	if err != nil {
		writeCodecError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleRuns handles the /api/runs endpoint with pagination
func (a *API) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.repo == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"runs": []database.SignalRun{}, "total": 0, "page": 1, "per_page": 0,
		})
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	runs, total, err := a.repo.GetRecentPaginated(page, perPage)
	if err != nil {
		a.logger.Error("Failed to list runs", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []database.SignalRun{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":     runs,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
