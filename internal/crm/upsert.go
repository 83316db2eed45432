package crm

import (
	"context"
	"errors"
	"time"

	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

// Outcome is the combined result of one capture request. It lives for the
// duration of that request only; nothing is persisted locally.
type Outcome struct {
	ContactID    string `json:"contactId"`
	EngagementID string `json:"engagementId"`
	Action       Action `json:"action"`
}

// UpsertService runs the resolver then the attacher. The attacher is never
// invoked when resolution failed.
type UpsertService struct {
	log      *logger.Logger
	resolver *Resolver
	attacher *Attacher
}

func NewUpsertService(log *logger.Logger, resolver *Resolver, attacher *Attacher) *UpsertService {
	return &UpsertService{
		log:      log.With("service", "UpsertService"),
		resolver: resolver,
		attacher: attacher,
	}
}

// Upsert guarantees a contact exists for email and appends one note to it.
// When attachment fails after a successful resolve, the returned error
// carries the resolved contact id; the remote contact is not rolled back.
func (s *UpsertService) Upsert(ctx context.Context, email, notes string) (*Outcome, error) {
	res, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	engagementID, err := s.attacher.Attach(ctx, res.ContactID, notes, time.Time{})
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.ContactID = res.ContactID
		}
		return nil, err
	}

	return &Outcome{
		ContactID:    res.ContactID,
		EngagementID: engagementID,
		Action:       res.Action,
	}, nil
}
