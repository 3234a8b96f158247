package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/omarshaarawi/commish/internal/api/fantasy"
	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/players"
	"github.com/omarshaarawi/commish/internal/service"
	"github.com/omarshaarawi/commish/internal/week"
)

// AuthURLer builds the Yahoo consent URL the user visits to get a code.
type AuthURLer interface {
	AuthCodeURL(state string) string
}

type Handlers struct {
	recaps *service.RecapService
	yahoo  AuthURLer
	now    func() time.Time
}

// NewHandlers wires the web surface. yahoo may be nil when no Yahoo app is configured.
func NewHandlers(recaps *service.RecapService, yahoo AuthURLer) *Handlers {
	return &Handlers{recaps: recaps, yahoo: yahoo, now: time.Now}
}

// Routes registers every page and endpoint on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Form)
	mux.HandleFunc("POST /recap", h.Recap)
	mux.HandleFunc("GET /week", h.Week)
	mux.HandleFunc("GET /yahoo/auth", h.YahooAuth)
	mux.HandleFunc("GET /healthz", healthCheckHandler)
	return mux
}

func (h *Handlers) Form(w http.ResponseWriter, r *http.Request) {
	sel := week.Describe(h.now())
	page := formPage{
		Weeks:       sel.AvailableWeeks,
		SafestWeek:  sel.SafestWeek,
		Open:        sel.Open,
		YahooAuth:   h.yahoo != nil,
		DefaultTalk: llm.DefaultTrashTalk,
		MinTalk:     llm.MinTrashTalk,
		MaxTalk:     llm.MaxTrashTalk,
		Placeholder: "Dwight Schrute",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, page); err != nil {
		slog.Error("Error rendering form", "request_id", RequestIDFrom(r.Context()), "error", err)
	}
}

// Recap validates the form and streams the stat summary followed by the
// persona narration as markdown. Without a configured model only the
// summary is written.
func (h *Handlers) Recap(w http.ResponseWriter, r *http.Request) {
	req, persona, err := parseRecapForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	out := newFlushWriter(w)

	ctx := r.Context()
	if h.recaps.CanNarrate() {
		err = h.recaps.Narrate(ctx, req, persona, out)
	} else {
		var summary string
		_, summary, err = h.recaps.Summary(ctx, req)
		if err == nil {
			_, err = io.WriteString(out, "## Stat Summary\n\n"+summary)
		}
	}
	if err == nil {
		return
	}

	slog.Error("Error generating recap",
		"request_id", RequestIDFrom(ctx),
		"platform", req.Platform,
		"league", req.LeagueID,
		"error", err,
	)
	if out.wrote {
		// Headers are gone; finish the document with a note instead.
		_, _ = io.WriteString(out, "\n\n_The recap was interrupted: "+userMessage(err)+"_\n")
		return
	}
	http.Error(w, userMessage(err), statusFor(err))
}

// Week reports the current NFL week selection as JSON.
func (h *Handlers) Week(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(week.Describe(h.now())); err != nil {
		slog.Error("Error encoding week", "request_id", RequestIDFrom(r.Context()), "error", err)
	}
}

func (h *Handlers) YahooAuth(w http.ResponseWriter, r *http.Request) {
	if h.yahoo == nil {
		http.Error(w, "Yahoo is not configured on this server.", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, h.yahoo.AuthCodeURL(uuid.NewString()), http.StatusFound)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, llm.ErrPersonaRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrMissingCredentials), errors.Is(err, fantasy.ErrUnknownPlatform):
		return http.StatusBadRequest
	case errors.Is(err, players.ErrDirectoryUnavailable), errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrPersonaRejected):
		return "That character description was flagged by moderation. Try a different one."
	case errors.Is(err, models.ErrMissingCredentials):
		return "This league needs credentials that were not provided."
	case errors.Is(err, fantasy.ErrUnknownPlatform):
		return "That league type is not supported on this server."
	case errors.Is(err, players.ErrDirectoryUnavailable):
		return "The player directory is unavailable. Try again later."
	default:
		return "Could not load the league. Check the league ID and credentials."
	}
}

type flushWriter struct {
	w     io.Writer
	f     http.Flusher
	wrote bool
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	f, _ := w.(http.Flusher)
	return &flushWriter{w: w, f: f}
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if n > 0 {
		fw.wrote = true
	}
	if fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}
