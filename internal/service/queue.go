package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarcart/internal/models"
)

// Submission listing bounds.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// SubmitInput is the public submission payload, stored verbatim.
type SubmitInput struct {
	StationID      *int64
	StationName    *string
	StationAddress *string
	Grade          *string
	PriceCents     *int64
	Notes          *string
	SubmitterName  *string
	SubmitterIP    string
}

// QueueService accepts public submissions and serves the moderation queue.
type QueueService struct {
	store  SubmissionStore
	logger *zap.Logger
	now    func() time.Time
}

// NewQueueService builds the submission queue.
func NewQueueService(store SubmissionStore, logger *zap.Logger) *QueueService {
	return &QueueService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Submit enqueues a pending submission and returns its id. Input is taken
// as given; validation happens at approval time.
func (s *QueueService) Submit(ctx context.Context, input SubmitInput) (int64, error) {
	ip := strings.TrimSpace(input.SubmitterIP)
	sub := &models.Submission{
		StationID:      input.StationID,
		StationName:    input.StationName,
		StationAddress: input.StationAddress,
		Grade:          input.Grade,
		PriceCents:     input.PriceCents,
		Notes:          input.Notes,
		SubmitterName:  input.SubmitterName,
		Status:         models.SubmissionStatusPending,
		CreatedAt:      s.now().UTC(),
	}
	if ip != "" {
		sub.SubmitterIP = &ip
	}

	id, err := s.store.InsertSubmission(ctx, sub)
	if err != nil {
		return 0, err
	}

	s.logger.Info("submission enqueued",
		zap.Int64("submission_id", id),
		zap.Bool("new_station", input.StationID == nil))
	return id, nil
}

// List returns submissions with the given status, newest first, enriched
// with current station data. The limit is clamped to 200 regardless of the
// requested value; non-positive requests get the default of 50.
func (s *QueueService) List(ctx context.Context, status string, limit int) ([]models.SubmissionView, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		status = models.SubmissionStatusPending
	}
	switch status {
	case models.SubmissionStatusPending, models.SubmissionStatusApproved, models.SubmissionStatusRejected:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownStatus, status)
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.ListSubmissions(ctx, status, limit)
}
