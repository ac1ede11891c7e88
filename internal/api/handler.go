package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"punchlog/internal/composer"
	"punchlog/internal/fragment"
	"punchlog/internal/intent"
	"punchlog/internal/storage"
)

const maxInputBodySize = 1 << 20 // 1MB

// Deps holds the handler's collaborators. Now is injectable so tests can
// pin "today".
type Deps struct {
	Store    *storage.Store
	Composer *composer.Composer
	Now      func() time.Time
}

// NewHandler builds the work-log HTTP API.
func NewHandler(deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Composer == nil {
		deps.Composer = composer.New(0)
	}

	r := chi.NewRouter()
	r.Post("/api/input", handleInput(deps))
	r.Delete("/api/fragments/{id}", handleDeleteFragment(deps))
	r.Get("/health", handleHealth)
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleInput(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxInputBodySize)
		defer r.Body.Close()

		var req InputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, InputResponse{Ok: false, Error: fmt.Sprintf("invalid request body: %v", err)})
			return
		}
		if req.Author == "" {
			writeJSON(w, http.StatusBadRequest, InputResponse{Ok: false, Error: "missing author field"})
			return
		}

		now := deps.Now()
		norm := intent.Normalize(req.Text, now)

		// Explicit date wins over a relative reference in the text,
		// which wins over today.
		date := req.Date
		if date == "" {
			date = norm.ResolvedDate
		}
		if date == "" {
			date = now.Format(intent.DateFormat)
		}

		// The "all" sentinel means no author filter on reads.
		queryAuthor := req.Author
		if queryAuthor == fragment.AuthorAll {
			queryAuthor = ""
		}

		action := intent.Route(norm.CleanText)
		slog.Debug("routed input", "action", action, "author", req.Author, "date", date)

		switch action {
		case intent.ActionReject:
			writeJSON(w, http.StatusOK, InputResponse{
				Ok:             true,
				Action:         ActionReject,
				TodayFragments: []fragment.Fragment{},
				InputText:      req.Text,
			})

		case intent.ActionConfirm:
			if req.Author == fragment.AuthorAll {
				writeJSON(w, http.StatusOK, InputResponse{Ok: false, Error: "a clock-in needs a specific author, not the all-authors view"})
				return
			}
			if err := deps.Store.SaveClockEvent(storage.ClockEvent{
				Date:        date,
				EventType:   storage.EventStartWork,
				Status:      storage.ClockConfirmed,
				ConfirmedAt: now,
				Channel:     "manual",
				Note:        norm.CleanText,
			}); err != nil {
				writeJSON(w, http.StatusInternalServerError, InputResponse{Ok: false, Error: fmt.Sprintf("recording clock event: %v", err)})
				return
			}
			// Store the triggering text as a fragment so the derived
			// clock-in indicator survives a reload.
			if err := deps.Store.SaveFragment(storage.FragmentRecord{
				ID:           uuid.New().String(),
				Type:         fragment.TypeNote,
				Content:      norm.CleanText,
				OccurredDate: date,
				Source:       "user",
				Author:       req.Author,
				CreatedAt:    now,
			}); err != nil {
				writeJSON(w, http.StatusInternalServerError, InputResponse{Ok: false, Error: fmt.Sprintf("recording fragment: %v", err)})
				return
			}
			respondWithFragments(w, deps, ActionConfirm, "confirm_clock_event", req.Text, date, req.Author)

		case intent.ActionSummarize:
			items, err := deps.Store.FragmentsByDate(date, queryAuthor)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, InputResponse{Ok: false, Error: fmt.Sprintf("querying fragments: %v", err)})
				return
			}
			content, ok := deps.Composer.Compose(date, req.Author, items)
			if !ok {
				// Nothing to summarize; answer like a plain query.
				writeJSON(w, http.StatusOK, InputResponse{
					Ok:             true,
					Action:         ActionQuery,
					ToolCalled:     "get_fragments_by_date",
					TodayFragments: toWire(items),
					InputText:      req.Text,
				})
				return
			}
			if err := deps.Store.SaveFragment(storage.FragmentRecord{
				ID:           uuid.New().String(),
				Type:         fragment.TypeSummary,
				Content:      content,
				OccurredDate: date,
				Source:       "user",
				Author:       req.Author,
				CreatedAt:    now,
			}); err != nil {
				writeJSON(w, http.StatusInternalServerError, InputResponse{Ok: false, Error: fmt.Sprintf("recording summary: %v", err)})
				return
			}
			respondWithFragments(w, deps, ActionRecord, "summarize_day", req.Text, date, queryAuthor)

		case intent.ActionRecord:
			if req.Author == fragment.AuthorAll {
				writeJSON(w, http.StatusOK, InputResponse{Ok: false, Error: "recording needs a specific author, not the all-authors view"})
				return
			}
			if err := deps.Store.SaveFragment(storage.FragmentRecord{
				ID:           uuid.New().String(),
				Type:         fragment.TypeNote,
				Content:      norm.CleanText,
				OccurredDate: date,
				Source:       "user",
				Author:       req.Author,
				CreatedAt:    now,
			}); err != nil {
				writeJSON(w, http.StatusInternalServerError, InputResponse{Ok: false, Error: fmt.Sprintf("recording fragment: %v", err)})
				return
			}
			respondWithFragments(w, deps, ActionRecord, "record_fragment", req.Text, date, req.Author)

		default: // intent.ActionQuery
			respondWithFragments(w, deps, ActionQuery, "get_fragments_by_date", req.Text, date, queryAuthor)
		}
	}
}

func handleDeleteFragment(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Optional scope parameters pin the refreshed list to the
		// caller's view; without them the deleted fragment's own
		// date/author are used.
		scopeAuthor := r.URL.Query().Get("author")
		scopeDate := r.URL.Query().Get("date")
		if scopeAuthor == fragment.AuthorAll {
			scopeAuthor = ""
		}

		target, err := deps.Store.GetFragment(id)
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, DeleteResponse{Ok: false, Error: "fragment not found", TodayFragments: []fragment.Fragment{}})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, DeleteResponse{Ok: false, Error: fmt.Sprintf("loading fragment: %v", err), TodayFragments: []fragment.Fragment{}})
			return
		}

		if err := deps.Store.DeleteFragment(id); err != nil {
			writeJSON(w, http.StatusInternalServerError, DeleteResponse{Ok: false, Error: fmt.Sprintf("deleting fragment: %v", err), TodayFragments: []fragment.Fragment{}})
			return
		}

		if scopeDate == "" {
			scopeDate = target.OccurredDate
		}
		items, err := deps.Store.FragmentsByDate(scopeDate, scopeAuthor)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, DeleteResponse{Ok: false, Error: fmt.Sprintf("querying fragments: %v", err), TodayFragments: []fragment.Fragment{}})
			return
		}

		writeJSON(w, http.StatusOK, DeleteResponse{
			Ok:             true,
			DeletedID:      id,
			TodayFragments: toWire(items),
		})
	}
}

func respondWithFragments(w http.ResponseWriter, deps Deps, action, tool, inputText, date, author string) {
	items, err := deps.Store.FragmentsByDate(date, author)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, InputResponse{Ok: false, Error: fmt.Sprintf("querying fragments: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, InputResponse{
		Ok:             true,
		Action:         action,
		ToolCalled:     tool,
		TodayFragments: toWire(items),
		InputText:      inputText,
	})
}

// toWire converts stored records to the wire representation. The result is
// never nil so today_fragments always serializes as a JSON array.
func toWire(items []storage.FragmentRecord) []fragment.Fragment {
	out := make([]fragment.Fragment, 0, len(items))
	for _, rec := range items {
		var tags []string
		if rec.Tags != "" && rec.Tags != "[]" {
			if err := json.Unmarshal([]byte(rec.Tags), &tags); err != nil {
				tags = nil
			}
		}
		out = append(out, fragment.Fragment{
			ID:           rec.ID,
			Type:         rec.Type,
			Content:      rec.Content,
			OccurredDate: rec.OccurredDate,
			Source:       rec.Source,
			Author:       rec.Author,
			Tags:         tags,
			CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
