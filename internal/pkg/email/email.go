package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/qs3c/prv_line_server/config"
)

type Service struct {
	from string
	send func(...*gomail.Message) error
}

func NewService(cfg *config.EmailConfig) *Service {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Service{from: from, send: d.DialAndSend}
}

// SendOTP 发送邮箱验证码
func (s *Service) SendOTP(to, code string, expiresInMinutes int) error {
	subject := "Email verification code - Privilege Card"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #06c755;">Verify your email</h2>
        <p>Use the code below to finish activating your privilege card:</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
            %s
        </div>
        <p>The code expires in %d minutes.</p>
        <p>If you did not request this, you can ignore this email.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, code, expiresInMinutes)

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.send(m)
}
