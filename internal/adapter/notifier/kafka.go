// Package notifier delivers the settlement side channels. The Kafka notifier
// publishes one message per notification; downstream consumers own the actual
// email/SMS/alert delivery.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
)

// Notification kinds published to the topic
const (
	kindBranchAlert = "BRANCH_ALERT"
	kindSenderEmail = "SENDER_EMAIL"
	kindSenderSMS   = "SENDER_SMS"
)

// notificationEnvelope is the wire format of one notification message
type notificationEnvelope struct {
	Kind        string    `json:"kind"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sent_at"`
}

// KafkaNotifier implements domain.Notifier over a sarama sync producer
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

// NewKafkaNotifier creates a sync producer publishing to the given topic
func NewKafkaNotifier(brokers []string, topic string, log *slog.Logger) (*KafkaNotifier, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka notifier ready", slog.String("topic", topic))
	return &KafkaNotifier{producer: producer, topic: topic, log: log}, nil
}

// AlertBranch publishes an internal branch alert
func (n *KafkaNotifier) AlertBranch(ctx context.Context, branchID uuid.UUID, message string) error {
	return n.publish(notificationEnvelope{
		Kind:        kindBranchAlert,
		RecipientID: branchID,
		Message:     message,
		SentAt:      time.Now(),
	})
}

// EmailSender publishes a sender email notification
func (n *KafkaNotifier) EmailSender(ctx context.Context, senderID uuid.UUID, subject, message string) error {
	return n.publish(notificationEnvelope{
		Kind:        kindSenderEmail,
		RecipientID: senderID,
		Subject:     subject,
		Message:     message,
		SentAt:      time.Now(),
	})
}

// SMSSender publishes a sender SMS notification
func (n *KafkaNotifier) SMSSender(ctx context.Context, senderID uuid.UUID, message string) error {
	return n.publish(notificationEnvelope{
		Kind:        kindSenderSMS,
		RecipientID: senderID,
		Message:     message,
		SentAt:      time.Now(),
	})
}

// Close shuts down the underlying producer
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

func (n *KafkaNotifier) publish(envelope notificationEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, _, err = n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(envelope.RecipientID.String()),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", envelope.Kind, err)
	}
	return nil
}

var _ domain.Notifier = (*KafkaNotifier)(nil)

// LogNotifier implements domain.Notifier by logging every message. Used when
// no broker is configured.
type LogNotifier struct {
	Log *slog.Logger
}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) AlertBranch(ctx context.Context, branchID uuid.UUID, message string) error {
	n.Log.Info("branch alert", slog.String("branch_id", branchID.String()), slog.String("message", message))
	return nil
}

func (n *LogNotifier) EmailSender(ctx context.Context, senderID uuid.UUID, subject, message string) error {
	n.Log.Info("sender email", slog.String("sender_id", senderID.String()), slog.String("subject", subject))
	return nil
}

func (n *LogNotifier) SMSSender(ctx context.Context, senderID uuid.UUID, message string) error {
	n.Log.Info("sender sms", slog.String("sender_id", senderID.String()))
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
