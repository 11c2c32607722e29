package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/pkg/clients/whatsapp"
)

// Service announces ledger activity. Without a messaging client it only logs.
type Service struct {
	client    whatsapp.Client
	recipient string
	logger    *zap.Logger
}

// NewService wires the notifier. client may be nil.
func NewService(client whatsapp.Client, recipient string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, recipient: recipient, logger: logger}
}

// Publish implements ledger.Publisher.
func (s *Service) Publish(ctx context.Context, event models.ParcelEvent) error {
	s.logger.Info("ledger event",
		zap.String("event_id", event.ID),
		zap.String("event", string(event.Type)),
		zap.String("parcel_id", event.ParcelID),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)),
		zap.String("amount", event.Amount.String()))

	return s.Send(ctx, Render(event))
}

// Send pushes a free-form message to the configured recipient.
func (s *Service) Send(ctx context.Context, message string) error {
	if s.client == nil || message == "" {
		return nil
	}
	id, err := s.client.SendText(ctx, s.recipient, message)
	if err != nil {
		return fmt.Errorf("notify %s: %w", s.recipient, err)
	}
	s.logger.Debug("notification sent", zap.String("message_id", id))
	return nil
}

// Render formats an event as a short human readable message.
func Render(event models.ParcelEvent) string {
	switch event.Type {
	case models.EventRegistered:
		return fmt.Sprintf("Parcel %s (%s) registered to %s, declared value %s.",
			event.ParcelID, event.Location, event.To, event.Amount)
	case models.EventTransferred:
		return fmt.Sprintf("Parcel %s transferred from %s to %s.", event.ParcelID, event.From, event.To)
	case models.EventSold:
		return fmt.Sprintf("Parcel %s sold by %s to %s for %s.", event.ParcelID, event.From, event.To, event.Amount)
	default:
		return ""
	}
}
