package notification

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

const otpSubject = "Your OTP Code"

var otpEmail = template.Must(template.New("otp_email").Parse(`Hello {{.FullName}},

Your OTP code is {{.Code}}. It is valid for {{.ValidFor}}.

If you did not create a DevClub account, you can ignore this message.
`))

// OTPEmail holds the values rendered into the verification email.
type OTPEmail struct {
	Recipient string
	FullName  string
	Code      string
	TTL       time.Duration
}

// RenderOTPEmail builds the verification email for a freshly issued code.
func RenderOTPEmail(data OTPEmail) (domain.Notification, error) {
	name := data.FullName
	if name == "" {
		name = "there"
	}

	var body bytes.Buffer
	err := otpEmail.Execute(&body, struct {
		FullName string
		Code     string
		ValidFor string
	}{
		FullName: name,
		Code:     data.Code,
		ValidFor: humanizeMinutes(data.TTL),
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("render otp email: %w", err)
	}

	return domain.Notification{
		Recipient: data.Recipient,
		Subject:   otpSubject,
		Body:      body.String(),
		Kind:      domain.NotificationKindOTP,
	}, nil
}

func humanizeMinutes(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
