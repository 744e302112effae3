package friends

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

var validate = validator.New()

// Confirmer asks the user to confirm a destructive action before any network
// call is issued.
type Confirmer func(prompt string) bool

// Option configures an Executor.
type Option func(*Executor)

// WithConfirmer sets the destructive-action confirmation hook.
func WithConfirmer(c Confirmer) Option {
	return func(e *Executor) { e.confirm = c }
}

// WithKick sets the hook fired after every successful action (and after a
// conflict) to trigger an authoritative refresh.
func WithKick(fn func()) Option {
	return func(e *Executor) { e.kick = fn }
}

// WithCache attaches the advisory friendship cache.
func WithCache(c *Cache) Option {
	return func(e *Executor) { e.cache = c }
}

type overlay struct {
	rel   Relationship
	stamp uint64
}

// Executor runs relationship transitions against the API and keeps the
// client-observed state consistent: a per-target in-flight guard suppresses
// duplicate actions, successful actions write an optimistic overlay that is
// visible immediately, and sequence-tagged snapshots reconcile the overlays
// against the server.
type Executor struct {
	client  *Client
	confirm Confirmer
	kick    func()
	cache   *Cache

	mu       sync.Mutex
	snapshot Lists
	fetchSeq uint64 // latest issued fetch
	clock    uint64 // logical time ordering overlays against fetch starts
	overlays map[string]overlay
	inFlight map[string]string
}

// NewExecutor creates an executor over the friends API client.
func NewExecutor(client *Client, opts ...Option) *Executor {
	e := &Executor{
		client:   client,
		overlays: make(map[string]overlay),
		inFlight: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refresh fetches the three lists and reconciles. Responses of fetches that
// are no longer the latest are discarded.
func (e *Executor) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.fetchSeq++
	seq := e.fetchSeq
	e.clock++
	started := e.clock
	e.mu.Unlock()

	l, err := e.client.Lists(ctx)
	if err != nil {
		return err
	}
	e.applySnapshot(l, seq, started)
	return nil
}

// applySnapshot installs an authoritative snapshot. Overlays recorded before
// the fetch began are superseded by it; overlays recorded after survive until
// a later fetch. Among snapshots that pass the sequence check, last write
// wins: the API carries no ordering token, so two fetches racing on the wire
// may still land out of true order. Accepted.
func (e *Executor) applySnapshot(l Lists, seq, started uint64) {
	e.mu.Lock()
	if seq != e.fetchSeq {
		e.mu.Unlock()
		log.Debug().Uint64("seq", seq).Uint64("latest", e.fetchSeq).Msg("discarding stale friends snapshot")
		return
	}

	e.snapshot = l
	for id, ov := range e.overlays {
		if ov.stamp < started {
			delete(e.overlays, id)
		}
	}
	e.mu.Unlock()

	if e.cache != nil {
		for _, f := range l.Friends {
			if f.ID != "" {
				e.cache.SetFriend(f.ID, true)
			}
		}
	}
}

// Relationship returns the current client-observed state for targetID: the
// optimistic overlay when one is live, the resolved snapshot otherwise.
func (e *Executor) Relationship(targetID string) Relationship {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relationshipLocked(normalizeID(targetID))
}

func (e *Executor) relationshipLocked(target string) Relationship {
	if ov, ok := e.overlays[target]; ok {
		return ov.rel
	}
	return Resolve(target, e.snapshot)
}

// Snapshot returns the last applied lists.
func (e *Executor) Snapshot() Lists {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// SendRequest moves none -> sent.
func (e *Executor) SendRequest(ctx context.Context, targetID string) error {
	target := normalizeID(targetID)
	if err := validate.Var(target, "required"); err != nil {
		return ErrMissingTarget
	}

	if _, err := e.begin(target, "send", StateNone); err != nil {
		return err
	}
	defer e.finish(target)

	requestID, err := e.client.Send(ctx, target)
	if err != nil {
		return e.fail(target, "send", err)
	}

	e.setOverlay(target, Relationship{State: StateSent, RequestID: requestID})
	e.kickRefresh()
	return nil
}

// CancelRequest moves sent -> none. The by-ID route is preferred when the
// request record ID is known; otherwise the by-target route is used.
func (e *Executor) CancelRequest(ctx context.Context, targetID string) error {
	target := normalizeID(targetID)
	if err := validate.Var(target, "required"); err != nil {
		return ErrMissingTarget
	}

	cur, err := e.begin(target, "cancel", StateSent)
	if err != nil {
		return err
	}
	defer e.finish(target)

	if cur.RequestID != "" {
		err = e.client.CancelByID(ctx, cur.RequestID)
	} else {
		err = e.client.CancelByTarget(ctx, target)
	}
	if err != nil {
		return e.fail(target, "cancel", err)
	}

	e.setOverlay(target, Relationship{State: StateNone})
	e.kickRefresh()
	return nil
}

// Respond moves received -> friends (accept) or received -> none (reject).
func (e *Executor) Respond(ctx context.Context, requestID string, d Decision) error {
	if err := validate.Var(requestID, "required"); err != nil {
		return ErrMissingRequest
	}

	target := e.receivedCounterpart(requestID)
	if target == "" {
		return ErrUnknownRequest
	}

	if _, err := e.begin(target, "respond", StateReceived); err != nil {
		return err
	}
	defer e.finish(target)

	if err := e.client.Respond(ctx, requestID, d); err != nil {
		return e.fail(target, "respond", err)
	}

	if d == DecisionAccept {
		e.setOverlay(target, Relationship{State: StateFriends})
	} else {
		e.setOverlay(target, Relationship{State: StateNone})
	}
	e.kickRefresh()
	return nil
}

// Unfriend moves friends -> none after explicit confirmation.
func (e *Executor) Unfriend(ctx context.Context, targetID string) error {
	target := normalizeID(targetID)
	if err := validate.Var(target, "required"); err != nil {
		return ErrMissingTarget
	}

	if _, err := e.begin(target, "unfriend", StateFriends); err != nil {
		return err
	}
	defer e.finish(target)

	if e.confirm != nil && !e.confirm("Remove this friend?") {
		return ErrConfirmDeclined
	}

	if err := e.client.Unfriend(ctx, target); err != nil {
		return e.fail(target, "unfriend", err)
	}

	e.setOverlay(target, Relationship{State: StateNone})
	e.kickRefresh()
	return nil
}

// CheckFriend hits the single-target check endpoint and refreshes the
// advisory cache with the answer.
func (e *Executor) CheckFriend(ctx context.Context, targetID string) (bool, error) {
	target := normalizeID(targetID)
	if err := validate.Var(target, "required"); err != nil {
		return false, ErrMissingTarget
	}
	isFriend, err := e.client.CheckFriend(ctx, target)
	if err != nil {
		return false, err
	}
	if e.cache != nil {
		e.cache.SetFriend(target, isFriend)
	}
	return isFriend, nil
}

// begin takes the in-flight slot for target and enforces the transition
// guard. Both checks happen before any network call.
func (e *Executor) begin(target, action string, allowed ...State) (Relationship, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pending, busy := e.inFlight[target]; busy {
		log.Debug().Str("target", target).Str("pending", pending).Str("action", action).Msg("friends action suppressed, already in flight")
		return Relationship{}, ErrActionInFlight
	}

	cur := e.relationshipLocked(target)
	ok := false
	for _, s := range allowed {
		if cur.State == s {
			ok = true
			break
		}
	}
	if !ok {
		return Relationship{}, ErrInvalidTransition
	}

	e.inFlight[target] = action
	return cur, nil
}

func (e *Executor) finish(target string) {
	e.mu.Lock()
	delete(e.inFlight, target)
	e.mu.Unlock()
}

// fail leaves local state untouched. A conflict means the server's view of
// this relationship moved under us, so a resync is kicked.
func (e *Executor) fail(target, action string, err error) error {
	log.Warn().Err(err).Str("target", target).Str("action", action).Msg("friends action failed")
	if apiclient.IsConflict(err) {
		e.kickRefresh()
	}
	return err
}

func (e *Executor) setOverlay(target string, rel Relationship) {
	e.mu.Lock()
	e.clock++
	e.overlays[target] = overlay{rel: rel, stamp: e.clock}
	e.mu.Unlock()

	if e.cache != nil {
		switch rel.State {
		case StateFriends:
			e.cache.SetFriend(target, true)
		case StateNone:
			e.cache.SetFriend(target, false)
		}
	}
}

func (e *Executor) receivedCounterpart(requestID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.snapshot.Received {
		if r.Status != StatusPending || r.ID != requestID {
			continue
		}
		if id := normalizeID(r.From.ID); id != "" {
			return id
		}
		return normalizeID(r.User.ID)
	}
	return ""
}

func (e *Executor) kickRefresh() {
	if e.kick != nil {
		e.kick()
	}
}
