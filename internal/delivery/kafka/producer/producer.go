package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type Producer interface {
	service.EventPublisher
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishCheckedIn(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error {
	now := time.Now()
	return p.send(ctx, kafka.TopicTicketCheckedIn, event.ID, kafka.TicketCheckedInEvent{
		TicketUUID:     ticket.UUID,
		EventID:        event.ID,
		EventShortName: event.ShortName,
		Operator:       operator,
		CheckedInAt:    now,
		Timestamp:      now,
	})
}

func (p *implProducer) PublishReverted(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error {
	now := time.Now()
	return p.send(ctx, kafka.TopicTicketReverted, event.ID, kafka.TicketRevertedEvent{
		TicketUUID:     ticket.UUID,
		EventID:        event.ID,
		EventShortName: event.ShortName,
		Operator:       operator,
		NewStatus:      string(ticket.Status),
		RevertedAt:     now,
		Timestamp:      now,
	})
}

func (p *implProducer) PublishOnSitePayment(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error {
	return p.send(ctx, kafka.TopicOnSitePayment, event.ID, kafka.OnSitePaymentEvent{
		TicketUUID:     ticket.UUID,
		EventID:        event.ID,
		EventShortName: event.ShortName,
		ReservationID:  ticket.ReservationID,
		PriceCts:       ticket.FinalPriceCts,
		Currency:       event.Currency,
		Operator:       operator,
		Timestamp:      time.Now(),
	})
}

func (p *implProducer) send(ctx context.Context, topic string, eventID int64, payload any) error {
	val, err := json.Marshal(payload)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.producer.send: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(eventID, 10)), // Partition by event id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("message_id"),
				Value: []byte(uuid.NewString()),
			},
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	if err := p.prod.Close(); err != nil {
		return err
	}

	return nil
}
