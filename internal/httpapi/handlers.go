package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"propscout-engine/internal/aggregate"
	"propscout-engine/internal/domain"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/store"
)

// Deps wires the handlers to the orchestrator and the optional local cache.
// The secret setters default to the keyring-backed ones in NewRouter.
type Deps struct {
	Run func(ctx context.Context, req aggregate.Request) domain.AggregationReport
	DB  *store.DB
	Log *slog.Logger

	SetAPIKey       func(envVar, key string) error
	SetMailPassword func(account, password string) error
}

type Handler struct {
	deps Deps
}

// Integrate runs one aggregation sweep for the posted location.
// A body that fails to parse or validate is the only non-200 outcome.
func (h Handler) Integrate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Invalid request", err.Error())
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		WriteError(w, http.StatusInternalServerError, "Invalid request", err.Error())
		return
	}
	if err := requestSchema.Validate(raw); err != nil {
		WriteError(w, http.StatusInternalServerError, "Invalid request", err.Error())
		return
	}

	var req aggregate.Request
	if err := json.Unmarshal(body, &req); err != nil {
		WriteError(w, http.StatusInternalServerError, "Invalid request", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.deps.Run(r.Context(), req))
}

func (h Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type sourceInfo struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Method string `json:"method"`
}

type jurisdictionInfo struct {
	Name             string       `json:"name"`
	Keywords         []string     `json:"keywords"`
	TransmissionGrid bool         `json:"transmission_grid"`
	Sources          []sourceInfo `json:"sources"`
}

// Sources exposes the static registry; ?location= narrows the listing to the
// jurisdiction that location resolves to.
func (h Handler) Sources(w http.ResponseWriter, r *http.Request) {
	jurs := registry.All()
	if loc := r.URL.Query().Get("location"); loc != "" {
		jurs = nil
		if j, ok := registry.Match(loc); ok {
			jurs = []registry.Jurisdiction{j}
		}
	}
	out := make([]jurisdictionInfo, 0, len(jurs))
	for _, j := range jurs {
		info := jurisdictionInfo{
			Name:             j.Name,
			Keywords:         j.Keywords,
			TransmissionGrid: j.TransmissionGrid,
		}
		for _, s := range j.Sources {
			info.Sources = append(info.Sources, sourceInfo{
				Name:   s.Name,
				Label:  s.Label,
				Method: string(s.Method),
			})
		}
		out = append(out, info)
	}
	WriteJSON(w, http.StatusOK, out)
}

// Properties lists cached records from previous sweeps.
func (h Handler) Properties(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB == nil {
		WriteError(w, http.StatusServiceUnavailable, "cache_disabled", "no local property cache is configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	props, err := store.ListProperties(r.Context(), h.deps.DB.Pool, store.ListPropertiesOpts{
		Location: r.URL.Query().Get("location"),
		Source:   r.URL.Query().Get("source"),
		Limit:    limit,
	})
	if err != nil {
		h.deps.Log.Error("listing cached properties failed", "err", err)
		WriteError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if props == nil {
		props = []domain.PropertyData{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"properties": props,
		"total":      len(props),
	})
}
