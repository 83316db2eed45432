package crm

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/signalpost/leadcapture-backend/internal/platform/hubspot"
	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionFound   Action = "found"
)

// Resolution is the authoritative answer for one email: which remote
// contact it maps to and whether this request created it.
type Resolution struct {
	ContactID string
	Action    Action
}

type ResolverConfig struct {
	// Extractor overrides the conflict-body id heuristic. Nil uses
	// ExtractConflictID.
	Extractor ExtractorFunc
	// SingleFlight coalesces concurrent resolves for the same email into
	// one remote chain. Off by default: the base design lets the remote's
	// uniqueness constraint arbitrate races.
	SingleFlight bool
}

// Resolver guarantees exactly one remote contact per email. The remote
// offers no create-or-update primitive, so resolution is a three-step
// reconciliation: direct create, conflict-body id extraction, then an
// exact-match search.
type Resolver struct {
	log     *logger.Logger
	api     hubspot.Client
	extract ExtractorFunc
	group   *singleflight.Group
}

func NewResolver(log *logger.Logger, api hubspot.Client, cfg ResolverConfig) *Resolver {
	extract := cfg.Extractor
	if extract == nil {
		extract = ExtractConflictID
	}
	r := &Resolver{
		log:     log.With("service", "ContactResolver"),
		api:     api,
		extract: extract,
	}
	if cfg.SingleFlight {
		r.group = &singleflight.Group{}
	}
	return r
}

// Resolve maps email to a remote contact id, creating the contact when
// absent. Two sequential calls for the same email return the same id: the
// first creates, the second lands on the conflict path.
func (r *Resolver) Resolve(ctx context.Context, email string) (*Resolution, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, newError(CodeValidation, errors.New("email required"))
	}

	if r.group == nil {
		return r.resolve(ctx, email)
	}

	v, err, _ := r.group.Do(strings.ToLower(email), func() (any, error) {
		return r.resolve(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Resolution), nil
}

func (r *Resolver) resolve(ctx context.Context, email string) (*Resolution, error) {
	contact, err := r.api.CreateContact(ctx, email)
	if err == nil {
		r.log.Info("contact created", "email", email, "contact_id", contact.ID)
		return &Resolution{ContactID: contact.ID, Action: ActionCreated}, nil
	}

	if hubspot.IsConflict(err) {
		var he *hubspot.HTTPError
		errors.As(err, &he)
		return r.resolveConflict(ctx, email, he)
	}

	var he *hubspot.HTTPError
	if errors.As(err, &he) {
		return nil, &Error{
			Code:         CodeRemoteCreateFailed,
			RemoteStatus: he.StatusCode,
			RemoteBody:   he.Body,
			Err:          he,
		}
	}
	return nil, r.remoteError("create contact", err)
}

func (r *Resolver) resolveConflict(ctx context.Context, email string, he *hubspot.HTTPError) (*Resolution, error) {
	if id := r.extract(he.Body); id != "" {
		r.log.Info("contact found via conflict body", "email", email, "contact_id", id)
		return &Resolution{ContactID: id, Action: ActionFound}, nil
	}

	r.log.Debug("conflict body had no extractable id, searching", "email", email)
	results, err := r.api.SearchContactsByEmail(ctx, email)
	if err != nil {
		return nil, r.remoteError("search contacts", err)
	}
	if len(results) == 0 {
		// The remote claimed a duplicate exists but cannot locate it.
		// Surfaced, never treated as success.
		r.log.Warn("conflict reported but search returned nothing", "email", email)
		return nil, &Error{
			Code:         CodeNotFoundAfterConflict,
			RemoteStatus: he.StatusCode,
			RemoteBody:   he.Body,
			Err:          errors.New("contact search after conflict returned no results"),
		}
	}

	id := results[0].ID
	r.log.Info("contact found via search", "email", email, "contact_id", id)
	return &Resolution{ContactID: id, Action: ActionFound}, nil
}

// remoteError classifies failures outside the create status handling:
// undecodable payloads vs everything transport-shaped. Neither is retried
// here; retry policy belongs to the caller.
func (r *Resolver) remoteError(op string, err error) *Error {
	var de *hubspot.DecodeError
	if errors.As(err, &de) {
		return newError(CodeRemoteResponseInvalid, err)
	}
	e := newError(CodeRemoteUnavailable, err)
	var he *hubspot.HTTPError
	if errors.As(err, &he) {
		e.RemoteStatus = he.StatusCode
		e.RemoteBody = he.Body
	}
	r.log.Warn("remote call failed", "op", op, "error", err)
	return e
}
