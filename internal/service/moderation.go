package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarcart/internal/models"
	"tarcart/internal/ws"
)

// Moderation actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Decision outcome kinds for an approval.
const (
	DecisionKindPrice   = "price"
	DecisionKindStation = "station"
)

// Decision reports what a successful Decide call did.
type Decision struct {
	SubmissionID int64  `json:"submission_id"`
	Action       string `json:"action"`
	// Kind is set on approvals: "price" when a ledger entry was appended,
	// "station" when a new station was created.
	Kind      string `json:"type,omitempty"`
	StationID *int64 `json:"station_id,omitempty"`
}

// ModerationService is the submission decision state machine. Each decision
// runs in one transaction with the submission row locked, so concurrent
// decisions on the same submission serialize and the loser observes
// ErrAlreadyReviewed.
type ModerationService struct {
	store   ModerationStore
	reports ReportStore
	hub     *ws.Hub
	logger  *zap.Logger
	now     func() time.Time
}

// NewModerationService builds the engine. reports and hub may be nil.
func NewModerationService(store ModerationStore, reports ReportStore, hub *ws.Hub, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		store:   store,
		reports: reports,
		hub:     hub,
		logger:  logger,
		now:     time.Now,
	}
}

// Decide applies an approve/reject decision to a pending submission.
func (s *ModerationService) Decide(ctx context.Context, id int64, action string) (*Decision, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, ErrUnknownAction
	}

	var (
		out  Decision
		tick *ws.PriceTick
	)
	err := s.store.DecideTx(ctx, func(tx ModerationTx) error {
		sub, err := tx.SubmissionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sub.Status != models.SubmissionStatusPending {
			return ErrAlreadyReviewed
		}

		now := s.now().UTC()
		out = Decision{SubmissionID: id, Action: action}

		if action == ActionReject {
			return tx.FinishReview(ctx, id, models.SubmissionStatusRejected, sub.StationID, now)
		}

		switch {
		case isPriceUpdate(sub):
			entry := &models.PriceEntry{
				StationID:   *sub.StationID,
				Grade:       *sub.Grade,
				PriceCents:  *sub.PriceCents,
				EffectiveAt: now,
				Source:      models.SourceAdminApproval,
				SourceNote:  sub.Notes,
			}
			if _, err := tx.AppendEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.FinishReview(ctx, id, models.SubmissionStatusApproved, sub.StationID, now); err != nil {
				return err
			}
			out.Kind = DecisionKindPrice
			out.StationID = sub.StationID
			tick = &ws.PriceTick{
				StationID:   entry.StationID,
				Grade:       entry.Grade,
				PriceCents:  entry.PriceCents,
				EffectiveAt: entry.EffectiveAt,
			}
			return nil

		case isNewStation(sub):
			address, city, state := parseAddress(deref(sub.StationAddress))
			station := &models.Station{
				Name:     strings.TrimSpace(*sub.StationName),
				Address:  address,
				City:     city,
				State:    state,
				IsHome:   false,
				IsActive: true,
			}
			stationID, err := tx.InsertStation(ctx, station)
			if err != nil {
				return err
			}
			if err := tx.FinishReview(ctx, id, models.SubmissionStatusApproved, &stationID, now); err != nil {
				return err
			}
			out.Kind = DecisionKindStation
			out.StationID = &stationID
			return nil

		default:
			return ErrMalformedSubmission
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("submission decided",
		zap.Int64("submission_id", id),
		zap.String("action", action),
		zap.String("type", out.Kind))

	// Side channels run after commit and never fail the decision.
	if action == ActionApprove {
		if s.reports != nil {
			if err := s.reports.Invalidate(ctx); err != nil {
				s.logger.Warn("failed to invalidate report cache", zap.Error(err))
			}
		}
		if s.hub != nil && tick != nil {
			s.hub.Broadcast(*tick)
		}
	}

	return &out, nil
}

// isPriceUpdate matches submissions linked to a station with a grade and a
// positive price.
func isPriceUpdate(sub *models.Submission) bool {
	return sub.StationID != nil &&
		sub.Grade != nil && strings.TrimSpace(*sub.Grade) != "" &&
		sub.PriceCents != nil && *sub.PriceCents > 0
}

// isNewStation matches unlinked submissions carrying a station name.
func isNewStation(sub *models.Submission) bool {
	return sub.StationID == nil &&
		sub.StationName != nil && strings.TrimSpace(*sub.StationName) != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
