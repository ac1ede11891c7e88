// Package session is the client-side view-model layer: it reconciles the
// locally held snapshot of a day's fragments against service responses,
// derives the clock-in and summary indicators from that snapshot, and
// governs the (author-or-all, date) scope attached to every request.
//
// Every network-touching operation is split in two: a Begin step that
// validates, captures the active scope, and returns a Call descriptor, and
// a Resolve step that applies the response. The split makes the suspension
// point explicit, so the same state machine drives both the blocking CLI
// (Execute runs begin, transport, and resolve inline) and the TUI event
// loop (begin in Update, transport in a command, resolve on the result
// message).
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"punchlog/internal/api"
	"punchlog/internal/fragment"
	"punchlog/internal/identity"
	"punchlog/internal/intent"
)

// Sentinel errors for local validation failures. None of these involve a
// network call; the caller surfaces them inline.
var (
	ErrEmptyText        = errors.New("nothing to submit")
	ErrIdentityRequired = errors.New("no author configured")
	ErrBusy             = errors.New("a request is already in flight")
	ErrNoDeleteTarget   = errors.New("no fragment staged for deletion")
)

// Notice lifetimes. The clock reminder lingers a little longer than the
// delete confirmation.
const (
	clockNoticeTTL  = 3 * time.Second
	deleteNoticeTTL = 2 * time.Second
)

// Fixed quick-action payloads. They go through the ordinary submit path;
// the service routes them by content like any typed text.
const (
	clockInText   = "clock in now"
	summarizeText = "summarize today"
)

// scopeQueryText is the synthetic input issued for date changes, view
// toggles, and the bootstrap refresh.
const scopeQueryText = "what happened today"

// Service is the remote work-log endpoint the session talks to.
// api.Client satisfies it.
type Service interface {
	SubmitInput(ctx context.Context, req api.InputRequest) (api.InputResponse, error)
	DeleteFragment(ctx context.Context, id, scopeAuthor, scopeDate string) (api.DeleteResponse, error)
}

type callKind int

const (
	callScopeQuery callKind = iota
	callSubmit
	callDelete
)

// Call describes one outgoing request. The scope it carries is the scope
// captured when the operation was issued, and that captured scope is
// authoritative for the merge when the response arrives; in-flight calls
// are never cancelled, so a response still merges even if the active scope
// changed while it was outstanding.
type Call struct {
	kind callKind

	// Req is the submission payload (submit and scope-query calls).
	Req api.InputRequest

	// DeleteID plus ScopeAuthor/ScopeDate describe a delete call.
	DeleteID    string
	ScopeAuthor string
	ScopeDate   string

	// Quick marks canned invocations; manual input is only cleared for
	// non-quick submissions.
	Quick bool

	clockIn bool
}

// Session owns all transient client state. It is not safe for concurrent
// use; the CLI runs it inline and the TUI mutates it only from its single
// Update loop.
type Session struct {
	svc Service
	ids identity.Store
	now func() time.Time

	author  string
	allView bool
	date    string

	fragments []fragment.Fragment
	clockedIn bool
	summary   string
	hasSum    bool

	pending          bool
	errText          string
	notice           string
	noticeExpiry     time.Time
	deleteTarget     *fragment.Fragment
	identityRequired bool
}

// New creates a Session against the given service and identity store.
func New(svc Service, ids identity.Store) *Session {
	return NewWithClock(svc, ids, time.Now)
}

// NewWithClock is New with an injectable clock, used by tests to pin
// notice expiry.
func NewWithClock(svc Service, ids identity.Store, now func() time.Time) *Session {
	return &Session{svc: svc, ids: ids, now: now}
}

// Bootstrap adopts a previously remembered author, if any, and returns the
// initial scope query for today under that author (never "all"). When no
// identity is stored the session enters the identity-required state and no
// query is issued.
func (s *Session) Bootstrap() *Call {
	s.date = s.now().Format(intent.DateFormat)
	name, ok := s.ids.Get()
	if !ok {
		s.identityRequired = true
		return nil
	}
	s.author = name
	return s.scopeQuery()
}

// SetAuthor trims and adopts a new author identity, persisting it to the
// identity store and dismissing the identity prompt. Blank input is a
// silent no-op: the identity never becomes empty and the prompt stays up.
func (s *Session) SetAuthor(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if err := s.ids.Set(name); err != nil {
		return err
	}
	s.author = name
	s.identityRequired = false
	return nil
}

// SetDate switches the active date and returns the refresh query for it.
// The date change itself always takes effect; a failed refresh is logged
// by the resolver and dropped.
func (s *Session) SetDate(date string) *Call {
	s.date = date
	return s.scopeQuery()
}

// ShiftDate moves the active date by a number of days.
func (s *Session) ShiftDate(days int) *Call {
	t, err := time.Parse(intent.DateFormat, s.date)
	if err != nil {
		t = s.now()
	}
	return s.SetDate(t.AddDate(0, 0, days).Format(intent.DateFormat))
}

// ToggleAllView flips between the single-author and all-authors view.
// When the store is non-empty the returned call refreshes it under the new
// flag; on an empty store the flag flips with no request, since the only
// observable difference would be an author filter on nothing.
func (s *Session) ToggleAllView() *Call {
	s.allView = !s.allView
	if len(s.fragments) == 0 {
		return nil
	}
	return s.scopeQuery()
}

// BeginSubmit validates and stages one free-text submission. quick marks
// canned invocations (clock-in, summarize) whose text is not user-typed.
func (s *Session) BeginSubmit(text string, quick bool) (*Call, error) {
	if s.pending {
		return nil, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.author == "" {
		s.identityRequired = true
		return nil, ErrIdentityRequired
	}

	s.pending = true
	s.errText = ""
	s.clearNotice()
	return &Call{
		kind:  callSubmit,
		Req:   api.InputRequest{Text: text, Author: s.subject(), Date: s.date},
		Quick: quick,
	}, nil
}

// BeginClockIn stages the clock-in shortcut. Its resolution sets the
// clock-in indicator optimistically on success, since the payload is known
// in advance to be a clock-in.
func (s *Session) BeginClockIn() (*Call, error) {
	call, err := s.BeginSubmit(clockInText, true)
	if err != nil {
		return nil, err
	}
	call.clockIn = true
	return call, nil
}

// BeginSummarize stages the summarize-today shortcut.
func (s *Session) BeginSummarize() (*Call, error) {
	return s.BeginSubmit(summarizeText, true)
}

// ResolveSubmit applies a submit or scope-query response. The returned ok
// reports a successful manual submission, which is the caller's cue to
// clear the input box (and only then).
//
// Successful responses merge non-destructively: an empty fragment list
// leaves the store untouched, since the service legitimately returns no
// fragments for purely informational turns and that must not blank an
// already populated view. Failures leave the store alone and, for scope
// queries, are swallowed after logging.
func (s *Session) ResolveSubmit(call *Call, resp api.InputResponse, err error) (ok bool) {
	if call.kind == callScopeQuery {
		if err != nil {
			slog.Debug("scope refresh failed", "error", err)
			return false
		}
		if !resp.Ok {
			slog.Debug("scope refresh rejected", "error", resp.Error)
			return false
		}
		s.merge(resp.TodayFragments)
		return true
	}

	defer func() { s.pending = false }()

	if err != nil {
		s.errText = err.Error()
		return false
	}
	if !resp.Ok {
		s.errText = resp.Error
		return false
	}

	s.merge(resp.TodayFragments)
	if call.clockIn {
		s.clockedIn = true
	}
	if !s.clockedIn {
		s.setNotice("not yet clocked in", clockNoticeTTL)
	}
	return !call.Quick
}

// RequestDelete stages a fragment for deletion, replacing any prior
// staged target. No request is issued until BeginDelete.
func (s *Session) RequestDelete(f fragment.Fragment) {
	s.deleteTarget = &f
}

// CancelDelete clears the staged target without a request.
func (s *Session) CancelDelete() {
	s.deleteTarget = nil
}

// BeginDelete stages the delete request for the confirmed target.
func (s *Session) BeginDelete() (*Call, error) {
	if s.pending {
		return nil, ErrBusy
	}
	if s.deleteTarget == nil {
		return nil, ErrNoDeleteTarget
	}

	s.pending = true
	s.errText = ""
	s.clearNotice()
	return &Call{
		kind:        callDelete,
		DeleteID:    s.deleteTarget.ID,
		ScopeAuthor: s.subject(),
		ScopeDate:   s.date,
	}, nil
}

// ResolveDelete applies a delete response. Unlike submission, a delete
// response is authoritative: the store is replaced outright and an empty
// list really empties the view. The staged target is cleared on every
// outcome.
func (s *Session) ResolveDelete(call *Call, resp api.DeleteResponse, err error) {
	defer func() {
		s.pending = false
		s.deleteTarget = nil
	}()

	if err != nil {
		s.errText = err.Error()
		return
	}
	if !resp.Ok {
		s.errText = resp.Error
		return
	}

	s.replace(resp.TodayFragments)
	s.setNotice("fragment deleted", deleteNoticeTTL)
}

// Execute runs a call to completion inline: transport plus resolve. A nil
// call is a no-op, so callers can chain it straight onto SetDate or
// ToggleAllView.
func (s *Session) Execute(ctx context.Context, call *Call) {
	if call == nil {
		return
	}
	switch call.kind {
	case callDelete:
		resp, err := s.svc.DeleteFragment(ctx, call.DeleteID, call.ScopeAuthor, call.ScopeDate)
		s.ResolveDelete(call, resp, err)
	default:
		resp, err := s.svc.SubmitInput(ctx, call.Req)
		s.ResolveSubmit(call, resp, err)
	}
}

// ExpireNotices drops the transient notice once its lifetime has passed.
// The TUI drives this from a tick; Notice also checks lazily.
func (s *Session) ExpireNotices(now time.Time) {
	if s.notice != "" && !now.Before(s.noticeExpiry) {
		s.notice = ""
	}
}

// --- accessors ---

// Fragments is the current store contents for the active scope.
func (s *Session) Fragments() []fragment.Fragment { return s.fragments }

// ClockedIn reports the derived clock-in indicator.
func (s *Session) ClockedIn() bool { return s.clockedIn }

// Summary returns the derived daily summary text, if one has been seen.
func (s *Session) Summary() (string, bool) { return s.summary, s.hasSum }

// Pending reports whether a submit or delete is in flight.
func (s *Session) Pending() bool { return s.pending }

// Err returns the current error text, empty when the last operation
// succeeded.
func (s *Session) Err() string { return s.errText }

// Notice returns the active transient notification, if it has not yet
// expired.
func (s *Session) Notice() (string, bool) {
	if s.notice == "" || !s.now().Before(s.noticeExpiry) {
		return "", false
	}
	return s.notice, true
}

// Author is the active author identity, empty until configured.
func (s *Session) Author() string { return s.author }

// AllView reports whether the all-authors view is active.
func (s *Session) AllView() bool { return s.allView }

// Date is the active calendar date (YYYY-MM-DD).
func (s *Session) Date() string { return s.date }

// IdentityRequired reports whether an author must be configured before
// submissions are permitted.
func (s *Session) IdentityRequired() bool { return s.identityRequired }

// DeleteTarget returns the fragment staged for deletion, if any.
func (s *Session) DeleteTarget() (fragment.Fragment, bool) {
	if s.deleteTarget == nil {
		return fragment.Fragment{}, false
	}
	return *s.deleteTarget, true
}

// --- internals ---

// subject resolves the scope subject for outgoing requests: the all
// sentinel under the all view, the literal author otherwise.
func (s *Session) subject() string {
	if s.allView {
		return fragment.AuthorAll
	}
	return s.author
}

func (s *Session) scopeQuery() *Call {
	return &Call{
		kind: callScopeQuery,
		Req:  api.InputRequest{Text: scopeQueryText, Author: s.subject(), Date: s.date},
	}
}

// merge applies the non-destructive rule: a non-empty list replaces the
// store, an empty one leaves it untouched. Indicators recompute either
// way.
func (s *Session) merge(list []fragment.Fragment) {
	if len(list) > 0 {
		s.fragments = list
	}
	s.recompute(false)
}

// replace is the destructive variant used by deletion: the response list
// is authoritative, empty meaning empty.
func (s *Session) replace(list []fragment.Fragment) {
	if list == nil {
		list = []fragment.Fragment{}
	}
	s.fragments = list
	s.recompute(true)
}

// recompute re-derives the indicators from the store. The clock-in flag is
// rebuilt from scratch every time. The summary sticks once seen and only a
// destructive replacement may clear it; a submit merge that happens to
// carry no summary keeps the last one.
func (s *Session) recompute(destructive bool) {
	s.clockedIn = fragment.ClockedIn(s.fragments)
	if sum, ok := fragment.LatestSummary(s.fragments); ok {
		s.summary = sum
		s.hasSum = true
	} else if destructive {
		s.summary = ""
		s.hasSum = false
	}
}

func (s *Session) setNotice(text string, ttl time.Duration) {
	s.notice = text
	s.noticeExpiry = s.now().Add(ttl)
}

func (s *Session) clearNotice() {
	s.notice = ""
	s.noticeExpiry = time.Time{}
}
