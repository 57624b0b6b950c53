package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/smtp"
	"strings"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/repository"
)

const (
	otpLength = 6
	otpTTL    = time.Minute
)

// SMTPConfig holds the mail relay settings
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// EmailService sends mail and manages the OTP lifecycle for email
// verification and password recovery.
type EmailService interface {
	Send(to []string, subject, body string) error
	SendOTP(ctx context.Context, email string) error
	CheckOTP(ctx context.Context, email, code string) error
}

type emailService struct {
	cfg     SMTPConfig
	otpRepo repository.OTPRepository
}

func NewEmailService(cfg SMTPConfig, otpRepo repository.OTPRepository) EmailService {
	return &emailService{cfg: cfg, otpRepo: otpRepo}
}

func (s *emailService) Send(to []string, subject, body string) error {
	message := fmt.Appendf(nil, "To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", strings.Join(to, ","), subject, body)

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port

	if err := smtp.SendMail(addr, auth, s.cfg.From, to, message); err != nil {
		log.Printf("Error sending email to %s: %v", strings.Join(to, ","), err)
		return apperr.New(apperr.EmailSendingFailed, "")
	}
	return nil
}

// SendOTP generates a fresh one-time password, stores it in Redis with a
// short TTL and mails it. A new OTP always replaces any outstanding one.
func (s *emailService) SendOTP(ctx context.Context, email string) error {
	code, err := generateOTP(otpLength)
	if err != nil {
		return apperr.New(apperr.OTPGenerationFailed, "")
	}

	if err := s.otpRepo.Save(ctx, email, code, otpTTL); err != nil {
		log.Printf("Failed to store OTP for %s: %v", email, err)
		return apperr.New(apperr.OTPGenerationFailed, "")
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minute(s).",
		code, int(otpTTL.Minutes()))
	return s.Send([]string{email}, "Your verification code", body)
}

// CheckOTP compares the submitted code against the stored one and consumes
// it on success. A missing key means the OTP expired or was never issued.
func (s *emailService) CheckOTP(ctx context.Context, email, code string) error {
	stored, err := s.otpRepo.Get(ctx, email)
	if err != nil {
		if err == repository.ErrOTPNotFound {
			return apperr.New(apperr.OTPExpired, "")
		}
		return apperr.New(apperr.Internal, "")
	}

	if stored != code {
		return apperr.New(apperr.OTPInvalid, "")
	}

	if err := s.otpRepo.Delete(ctx, email); err != nil {
		log.Printf("Failed to delete consumed OTP for %s: %v", email, err)
	}
	return nil
}

func generateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
