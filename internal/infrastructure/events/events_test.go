package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/zap/zaptest"
)

type placed struct {
	Type    string `json:"type"`
	OrderID int64  `json:"order_id"`
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got placed
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != "order.placed" || got.OrderID != 42 {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})

	pub := NewKafkaPublisher(producer, "order_events", zaptest.NewLogger(t))
	if err := pub.Publish(context.Background(), "42", placed{Type: "order.placed", OrderID: 42}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisher(producer, "order_events", zaptest.NewLogger(t))
	err := pub.Publish(context.Background(), "1", placed{Type: "order.placed", OrderID: 1})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected wrapped ErrOutOfBrokers, got %v", err)
	}
	_ = pub.Close()
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisher(producer, "order_events", zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, "1", placed{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	_ = pub.Close()
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), "k", placed{}); err != nil {
		t.Fatal(err)
	}
}
