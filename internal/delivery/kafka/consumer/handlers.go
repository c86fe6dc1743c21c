package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
)

// HandleTicketUpdated drops the cached offline bundle of the ticket's
// event. The next device sync rebuilds it from the store.
func (c *Consumer) HandleTicketUpdated(ctx context.Context, message *sarama.ConsumerMessage) error {
	c.l.Info(ctx, "HandleTicketUpdated consumed")

	var e kafka.TicketUpdatedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Error(ctx, "delivery.kafka.consumer.handlers.HandleTicketUpdated: %v", err)
		return err
	}

	if err := c.exportSvc.HandleTicketUpdated(ctx, e.EventID); err != nil {
		c.l.Error(ctx, "delivery.kafka.consumer.handlers.HandleTicketUpdated: %v", err)
		return err
	}

	return nil
}
