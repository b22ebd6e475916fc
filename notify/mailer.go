// Package notify 实现借阅到期提醒：周期扫描未归还借阅，
// 按 (借阅, 提醒种类) 去重后发送邮件并落发送记录。
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer 是邮件传输协作方的最小能力面。
// 传输细节（SMTP、队列、第三方网关）都收敛在实现里。
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer 通过 SMTP 发送纯文本邮件。
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogMailer 只把邮件打进日志，开发与测试环境用。
type LogMailer struct {
	Log zerolog.Logger
}

func (m *LogMailer) Send(to, subject, body string) error {
	m.Log.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("mail suppressed (log-only mailer)")
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
