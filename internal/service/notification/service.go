package notification

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/foodles/order-api/internal/email"
	"github.com/foodles/order-api/internal/model"
	"github.com/foodles/order-api/internal/telephony"
	apperrors "github.com/foodles/order-api/pkg/errors"
	"github.com/foodles/order-api/pkg/messaging"
	"github.com/foodles/order-api/pkg/metrics"
)

// Service fans a verified order out to the notification channels: customer
// email, vendor email, and (after a successful vendor email) a vendor missed
// call. Repeated invocations for the same order observe the first outcome
// instead of re-delivering.
type Service struct {
	store   *SnapshotStore
	sender  email.Sender
	caller  telephony.Caller
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewService(store *SnapshotStore, sender email.Sender, caller telephony.Caller, broker messaging.Broker, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	return &Service{
		store:   store,
		sender:  sender,
		caller:  caller,
		broker:  broker,
		metrics: m,
		logger:  logger,
	}
}

// Store exposes the snapshot store for the polling handler.
func (s *Service) Store() *SnapshotStore {
	return s.store
}

// Notify runs the channel fan-out for one order and returns the outcome.
// It never returns an error: every channel failure is captured in the
// outcome and the snapshot store. A duplicate invocation short-circuits to
// the existing snapshot.
func (s *Service) Notify(ctx context.Context, job *model.OrderNotification) model.NotificationOutcome {
	started, existing := s.store.Begin(job.OrderID)
	if !started {
		s.logger.Info().Str("order_id", job.OrderID).Msg("duplicate notification request short-circuited")
		if s.metrics != nil {
			s.metrics.DuplicateRequests.Inc()
		}
		return existing
	}

	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.NotificationLatency)
	}

	outcome := s.runChannels(ctx, job)

	if timer != nil {
		timer.ObserveDuration()
	}

	s.store.Complete(job.OrderID, outcome)
	s.publishOutcome(ctx, job.OrderID, outcome)

	s.logger.Info().
		Str("order_id", job.OrderID).
		Int("emails_sent", outcome.EmailsSent).
		Int("email_errors", len(outcome.EmailErrors)).
		Str("missed_call", string(outcome.MissedCallStatus)).
		Msg("order notification completed")

	return outcome
}

func (s *Service) runChannels(ctx context.Context, job *model.OrderNotification) model.NotificationOutcome {
	outcome := model.NotificationOutcome{EmailErrors: []model.ChannelError{}}

	// Step 1: customer email. Failure never blocks the vendor channels.
	s.countAttempt(model.ChannelCustomerEmail)
	if err := s.sendCustomerEmail(ctx, job); err != nil {
		s.recordFailure(&outcome, model.ChannelCustomerEmail, err)
	} else {
		outcome.EmailsSent++
	}

	// Step 2: vendor email. A missing target is "not attempted", not a
	// failure.
	if job.VendorEmail == "" {
		return outcome
	}
	s.countAttempt(model.ChannelVendorEmail)
	if err := s.sendVendorEmail(ctx, job); err != nil {
		s.recordFailure(&outcome, model.ChannelVendorEmail, err)
		// The missed call reinforces the vendor email, so it only runs
		// after the email delivered.
		return outcome
	}
	outcome.EmailsSent++

	// Step 3: vendor missed call.
	if job.VendorPhone == "" {
		return outcome
	}
	s.placeVendorCall(ctx, job, &outcome)

	return outcome
}

func (s *Service) sendCustomerEmail(ctx context.Context, job *model.OrderNotification) error {
	if !email.ValidAddress(job.CustomerEmail) {
		return apperrors.BadRequest("invalid customer email address", nil)
	}
	body, err := email.RenderConfirmation(job.CustomerName, job.Details)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, job.CustomerEmail, "Order Confirmation", body)
}

func (s *Service) sendVendorEmail(ctx context.Context, job *model.OrderNotification) error {
	if !email.ValidAddress(job.VendorEmail) {
		return apperrors.BadRequest("invalid vendor email address", nil)
	}
	body, err := email.RenderVendorAlert(job.OrderID, job.CustomerName, job.Details)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, job.VendorEmail, "New Order "+job.OrderID, body)
}

func (s *Service) placeVendorCall(ctx context.Context, job *model.OrderNotification, outcome *model.NotificationOutcome) {
	s.countAttempt(model.ChannelVendorCall)
	err := s.caller.PlaceCall(ctx, job.RestaurantID, job.VendorPhone)
	if err == nil {
		outcome.MissedCallStatus = model.CallStatusSuccess
		if s.metrics != nil {
			s.metrics.MissedCallsPlaced.Inc()
		}
		return
	}

	if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrNotConfigured {
		// Missing telephony credentials: not attempted, no status tag.
		s.logger.Warn().
			Str("order_id", job.OrderID).
			Str("restaurant_id", job.RestaurantID).
			Msg("missed call skipped: restaurant has no telephony credentials")
		return
	}

	outcome.MissedCallStatus = model.CallStatusFailed
	if s.metrics != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(model.ChannelVendorCall)).Inc()
	}
	s.logger.Error().Err(err).
		Str("order_id", job.OrderID).
		Str("restaurant_id", job.RestaurantID).
		Msg("missed call failed")
}

func (s *Service) recordFailure(outcome *model.NotificationOutcome, channel model.Channel, err error) {
	outcome.EmailErrors = append(outcome.EmailErrors, model.ChannelError{
		Channel: channel,
		Message: err.Error(),
	})
	if s.metrics != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(channel)).Inc()
	}
	s.logger.Error().Err(err).Str("channel", string(channel)).Msg("notification channel failed")
}

func (s *Service) countAttempt(channel model.Channel) {
	if s.metrics != nil {
		s.metrics.NotificationsAttempted.WithLabelValues(string(channel)).Inc()
	}
}

type outcomeEvent struct {
	OrderID string                    `json:"order_id"`
	Outcome model.NotificationOutcome `json:"outcome"`
	SentAt  time.Time                 `json:"sent_at"`
}

func (s *Service) publishOutcome(ctx context.Context, orderID string, outcome model.NotificationOutcome) {
	if s.broker == nil {
		return
	}
	event := outcomeEvent{OrderID: orderID, Outcome: outcome, SentAt: time.Now()}
	if err := s.broker.Publish(ctx, messaging.ChannelOrderNotified, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to publish outcome event")
	}
}
