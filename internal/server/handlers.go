package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goodsign/monday"
	"github.com/rs/zerolog"

	"github.com/sadopc/pmreport/internal/activity"
	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/export"
	"github.com/sadopc/pmreport/internal/report"
	"github.com/sadopc/pmreport/internal/snapshot"
)

const defaultActivityLimit = 50

type handler struct {
	loader        SnapshotLoader
	activities    ActivitySource
	locale        monday.Locale
	activityLimit int
	now           func() time.Time
}

func newHandler(cfg Config) *handler {
	h := &handler{
		loader:        cfg.Dependencies.Loader,
		activities:    cfg.Dependencies.Activities,
		locale:        cfg.Locale,
		activityLimit: cfg.ActivityLimit,
		now:           cfg.Now,
	}
	if h.locale == "" {
		h.locale = activity.DefaultLocale
	}
	if h.activityLimit <= 0 {
		h.activityLimit = defaultActivityLimit
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type reportResponse struct {
	Type    report.Type       `json:"type"`
	Range   rangeResponse     `json:"range"`
	Rows    []report.Row      `json:"rows"`
	Summary report.Summary    `json:"summary"`
	Status  map[string]string `json:"status"`
	Partial bool              `json:"partial"`
}

type entryResponse struct {
	api.Activity
	Description string `json:"description"`
	TimeAgo     string `json:"time_ago"`
}

type bucketResponse struct {
	Label   string          `json:"label"`
	Day     string          `json:"day"`
	Entries []entryResponse `json:"entries"`
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) GetReport(w http.ResponseWriter, r *http.Request) {
	t, dr, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	s := h.loader.Load(r.Context(), dr)
	rows, err := report.Aggregate(t, s)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	respond(w, r, http.StatusOK, reportResponse{
		Type: t,
		Range: rangeResponse{
			Start: dr.Start.Format(api.DateLayout),
			End:   dr.End.Format(api.DateLayout),
		},
		Rows:    rows,
		Summary: report.Summarize(t, s),
		Status:  s.Statuses(),
		Partial: s.Partial(),
	})
}

func (h *handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	t, dr, ok := h.reportParams(w, r)
	if !ok {
		return
	}
	format := export.FormatCSV
	if strings.HasSuffix(r.URL.Path, ".json") {
		format = export.FormatJSON
	}

	s := h.loader.Load(r.Context(), dr)
	rows, err := report.ExportRows(t, s)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	now := h.now()
	contentType := "text/csv; charset=utf-8"
	if format == export.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(t, now, format)))
	if s.Partial() {
		w.Header().Set("X-Partial-Load", "true")
	}

	if err := export.Encode(w, t, rows, format, now); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("type", string(t)).Msg("failed to encode export")
	}
}

func (h *handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit := h.activityLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	locale := h.locale
	if raw := q.Get("locale"); raw != "" {
		l, err := activity.ParseLocale(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		locale = l
	}
	projectID := q.Get("project_id")

	entries, err := h.activities.ListActivities(ctx, api.ActivityQuery{Limit: limit, ProjectID: projectID})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to load activity feed")
		respondError(w, r, upstreamStatus(err), err.Error())
		return
	}

	now := h.now()
	buckets := activity.Group(activity.FilterByProject(entries, projectID), now, locale)
	out := make([]bucketResponse, 0, len(buckets))
	for _, b := range buckets {
		br := bucketResponse{Label: b.Label, Day: b.Day, Entries: make([]entryResponse, 0, len(b.Entries))}
		for _, e := range b.Entries {
			br.Entries = append(br.Entries, entryResponse{
				Activity:    e,
				Description: activity.Describe(e),
				TimeAgo:     activity.TimeAgo(e.CreatedAt, now, locale),
			})
		}
		out = append(out, br)
	}
	respond(w, r, http.StatusOK, out)
}

// reportParams resolves the report type and date range of a request,
// answering 400 itself when either is invalid.
func (h *handler) reportParams(w http.ResponseWriter, r *http.Request) (report.Type, snapshot.DateRange, bool) {
	t, err := report.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return "", snapshot.DateRange{}, false
	}
	dr, err := h.dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return "", snapshot.DateRange{}, false
	}
	return t, dr, true
}

func (h *handler) dateRange(r *http.Request) (snapshot.DateRange, error) {
	q := r.URL.Query()
	return snapshot.Resolve(q.Get("preset"), q.Get("start"), q.Get("end"), h.now())
}

func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, api.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, api.Envelope[any]{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeEnvelope(w, r, status, api.Envelope[any]{Success: false, Message: msg})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env api.Envelope[any]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
