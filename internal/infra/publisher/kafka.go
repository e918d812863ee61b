package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cartify/internal/domain/model"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// order.placedのメッセージ本体
type OrderPlacedEvent struct {
	OrderID  int64           `json:"order_id"`
	UserID   string          `json:"user_id"`
	Total    decimal.Decimal `json:"total"`
	Status   string          `json:"status"`
	Items    []EventItem     `json:"items"`
	PlacedAt time.Time       `json:"placed_at"`
}

type EventItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// kafka.Writerの必要な部分だけ（テストで差し替える）
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	writerBatchTimeout = 10 * time.Millisecond
	writerWriteTimeout = 5 * time.Second
)

type KafkaOrderPublisher struct {
	writer messageWriter
	clock  func() time.Time
}

func NewKafkaOrderPublisher(topic string, brokers ...string) *KafkaOrderPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // 同じ注文は同じpartition
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           writerBatchTimeout, // 同期で1件ずつ送るのでバッチは待たない
		WriteTimeout:           writerWriteTimeout,
	}
	return &KafkaOrderPublisher{writer: w, clock: time.Now}
}

// 注文確定の通知（keyは注文ID）
func (p *KafkaOrderPublisher) PublishOrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem) error {
	ev := OrderPlacedEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Total:    order.TotalAmount,
		Status:   string(order.Status),
		Items:    make([]EventItem, 0, len(items)),
		PlacedAt: p.clock().UTC(),
	}
	for _, it := range items {
		ev.Items = append(ev.Items, EventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: body,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}

// ブローカー未設定のとき用（何もしない）
type NopOrderPublisher struct{}

func (NopOrderPublisher) PublishOrderPlaced(context.Context, model.Order, []model.OrderItem) error {
	return nil
}

func (NopOrderPublisher) Close() error { return nil }
