package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/signalpost/leadcapture-backend/internal/platform/hubspot"
	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

type AttacherConfig struct {
	// FallbackNoteBody is used verbatim when the caller supplies no note
	// text. Deployment-specific (typically an event-identifying label).
	FallbackNoteBody string
	// Now overrides the clock for tests. Nil uses time.Now.
	Now func() time.Time
}

// Attacher creates a timestamped note against an already-resolved contact.
// Association happens inside the create call itself; there is no second
// association request to half-fail.
type Attacher struct {
	log      *logger.Logger
	api      hubspot.Client
	fallback string
	now      func() time.Time
}

func NewAttacher(log *logger.Logger, api hubspot.Client, cfg AttacherConfig) *Attacher {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Attacher{
		log:      log.With("service", "EngagementAttacher"),
		api:      api,
		fallback: cfg.FallbackNoteBody,
		now:      now,
	}
}

// Attach creates one note per call; repeated notes for the same contact are
// appended, never deduplicated. A zero timestamp means now.
func (a *Attacher) Attach(ctx context.Context, contactID, noteBody string, timestamp time.Time) (string, error) {
	if strings.TrimSpace(contactID) == "" {
		return "", newError(CodeValidation, errors.New("contact id required"))
	}
	body := noteBody
	if strings.TrimSpace(body) == "" {
		body = a.fallback
	}
	if timestamp.IsZero() {
		timestamp = a.now()
	}

	eng, err := a.api.CreateEngagement(ctx, hubspot.CreateEngagementRequest{
		ContactID: contactID,
		Body:      body,
		Timestamp: timestamp,
	})
	if err != nil {
		e := &Error{
			Code:      CodeEngagementCreateFailed,
			ContactID: contactID,
			Err:       err,
		}
		var he *hubspot.HTTPError
		if errors.As(err, &he) {
			e.RemoteStatus = he.StatusCode
			e.RemoteBody = he.Body
		}
		a.log.Warn("engagement create failed", "contact_id", contactID, "error", err)
		return "", e
	}

	a.log.Info("engagement created", "contact_id", contactID, "engagement_id", eng.ID)
	return eng.ID, nil
}
