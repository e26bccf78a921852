package services

import (
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, n Notification) error {
	s.logger.Info(n.Title, map[string]interface{}{
		"user_id":    n.UserID,
		"tag":        n.Tag,
		"sender_id":  n.Request.SenderID,
		"request_id": n.Request.RequestID,
		"body":       n.Body,
	})
	return nil
}

// BusSink republishes notifications so local UI surfaces can refresh.
type BusSink struct {
	bus events.Publisher
}

func NewBusSink(bus events.Publisher) *BusSink {
	return &BusSink{bus: bus}
}

func (s *BusSink) Name() string { return "bus" }

func (s *BusSink) Deliver(_ context.Context, n Notification) error {
	s.bus.Publish(events.Event{
		Kind:          events.FriendRequestReceived,
		UserID:        n.UserID,
		CounterpartID: n.Request.SenderID,
		RequestID:     n.Request.RequestID,
	})
	return nil
}

// NotificationRecorder persists delivered notifications.
type NotificationRecorder interface {
	Record(ctx context.Context, rec *models.NotificationRecord) error
}

type HistorySink struct {
	store NotificationRecorder
}

func NewHistorySink(store NotificationRecorder) *HistorySink {
	return &HistorySink{store: store}
}

func (s *HistorySink) Name() string { return "history" }

func (s *HistorySink) Deliver(ctx context.Context, n Notification) error {
	return s.store.Record(ctx, &models.NotificationRecord{
		ID:        uuid.New(),
		UserID:    n.UserID,
		Kind:      n.Kind,
		RequestID: n.Request.RequestID,
		ActorID:   n.Request.SenderID,
		ActorName: n.Request.SenderName(),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	})
}

// EmailSender is satisfied by EmailService.
type EmailSender interface {
	SendNotificationEmail(ctx context.Context, to, subject, htmlBody, textBody string) error
}

type EmailSink struct {
	sender EmailSender
	to     string
}

func NewEmailSink(sender EmailSender, to string) *EmailSink {
	return &EmailSink{sender: sender, to: to}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, n Notification) error {
	htmlBody := fmt.Sprintf("<p>%s</p>", html.EscapeString(n.Body))
	return s.sender.SendNotificationEmail(ctx, s.to, n.Title, htmlBody, n.Body)
}
