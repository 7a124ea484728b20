package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/verifake/verifake_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(to, name string) error {
	subject := "欢迎加入 VeriFake"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">欢迎加入 VeriFake</h2>
        <p>%s，您好，</p>
        <p>您的账号已创建成功，现在可以上传图片进行深度伪造、人脸等内容检测。</p>
        <p>每个账号默认包含 1000 次检测额度，如需提升请联系管理员。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, name)

	return s.sendHTML(to, subject, body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	headers := []string{
		fmt.Sprintf("From: %s", s.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
