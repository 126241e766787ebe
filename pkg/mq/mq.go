// Package mq 提供基于RabbitMQ的目录事件发布
//
// 服务只作为生产者：图书创建/评分/已读等事件发布到Topic Exchange，
// 由下游（推荐、统计等）自行订阅。事件发布是尽力而为的，
// 发布失败不影响主流程。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Nestly-dev/bookdiscovery/pkg/metrics"
)

// 路由键定义
const (
	RoutingKeyBookCreated = "book.created"
	RoutingKeyBookUpdated = "book.updated"
	RoutingKeyBookDeleted = "book.deleted"
	RoutingKeyBookRated   = "book.rated"
	RoutingKeyBookRead    = "book.read"
)

// BookEvent 目录事件载荷
type BookEvent struct {
	BookID      uint    `json:"book_id"`
	UserID      uint    `json:"user_id,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	RatingCount int64   `json:"rating_count,omitempty"`
	ReadCount   int64   `json:"read_count,omitempty"`
	OccurredAt  int64   `json:"occurred_at"` // Unix时间戳
}

// EventPublisher 事件发布接口
// 未配置MQ时注入NoopPublisher，业务代码无需判空。
type EventPublisher interface {
	Publish(routingKey string, event interface{}) error
	Close() error
}

// Publisher 消息发布者（RabbitMQ实现）
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

var _ EventPublisher = (*Publisher)(nil)

// NewPublisher 创建消息发布者
// exchangeType一般为topic，支持下游按book.*订阅。
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	// Durable Exchange，Broker重启后保留
	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log.Printf("消息发布者已创建: Exchange=%s, Type=%s", exchange, exchangeType)

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 发布消息（JSON序列化，持久化投递）
func (p *Publisher) Publish(routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	err = p.channel.PublishWithContext(
		context.Background(),
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal,
		map[string]string{"exchange": p.exchange, "routing_key": routingKey})

	return nil
}

// Close 关闭发布者
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// NoopPublisher 空实现（MQ未配置时使用）
type NoopPublisher struct{}

var _ EventPublisher = (*NoopPublisher)(nil)

// Publish 空操作
func (NoopPublisher) Publish(string, interface{}) error { return nil }

// Close 空操作
func (NoopPublisher) Close() error { return nil }
