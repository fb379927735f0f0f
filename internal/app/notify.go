package app

import (
	"fmt"
	"strings"

	"github.com/rapidautoparts/storefront/config"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier mails the shop owner when a customer posts a review
type Notifier struct {
	cfg  config.MailConfig
	send func(m *gomail.Message) error
}

func NewNotifier(cfg config.MailConfig) *Notifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &Notifier{cfg: cfg, send: func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	}}
}

func (n *Notifier) message(review *domain.Review, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", strings.Split(n.cfg.To, ",")...)
	m.SetHeader("Subject", fmt.Sprintf("New %d-star review for %s", review.Rating, subject))
	body := fmt.Sprintf("%s wrote:\n\n%s\n", review.Name, review.Review)
	if review.ImageURL != nil {
		body += "\nImage: " + *review.ImageURL
	}
	if review.VideoURL != nil {
		body += "\nVideo: " + *review.VideoURL
	}
	m.SetBody("text/plain", body)
	return m
}

// NotifyReview handles events.TopicReviewCreated
func (n *Notifier) NotifyReview(e events.Event) {
	review, ok := e.Payload.(*domain.Review)
	if !ok {
		return
	}
	if err := n.send(n.message(review, e.Subject)); err != nil {
		zap.L().Error("review notification failed", zap.String("review", review.ID), zap.Error(err))
	}
}
