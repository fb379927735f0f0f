package app

import (
	"context"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/pkg/metrics"
	"go.uber.org/zap"
)

var topicCounters = map[string]string{
	events.TopicProductCreated:   metrics.ProductCreated,
	events.TopicProductUpdated:   metrics.ProductUpdated,
	events.TopicProductDeleted:   metrics.ProductDeleted,
	events.TopicReviewCreated:    metrics.ReviewCreated,
	events.TopicCategoryUpdated:  metrics.CategoryUpdated,
	events.TopicAdminLogin:       metrics.AdminLogin,
	events.TopicAdminLoginFailed: metrics.AdminLoginFail,
}

func (a *Application) subscribe() {
	for _, topic := range events.AdminTopics {
		if err := a.bus.Subscribe(topic, a.recordAdminLog); err != nil {
			zap.L().Error("subscribe audit log", zap.String("topic", topic), zap.Error(err))
		}
	}
	for topic, name := range topicCounters {
		name := name
		if err := a.bus.Subscribe(topic, func(events.Event) { metrics.Incr(name) }); err != nil {
			zap.L().Error("subscribe metrics", zap.String("topic", topic), zap.Error(err))
		}
	}
	if a.notifier != nil {
		if err := a.bus.SubscribeAsync(events.TopicReviewCreated, a.notifier.NotifyReview); err != nil {
			zap.L().Error("subscribe notifier", zap.Error(err))
		}
	}
}

func (a *Application) recordAdminLog(e events.Event) {
	description := e.Message
	if description == "" {
		description = e.Subject
	}
	err := a.repos.AdminLogs.Create(context.Background(), &domain.AdminLog{
		Operator:    e.Operator,
		IP:          e.IP,
		Action:      e.Topic,
		Description: description,
		OptTime:     e.At,
	})
	if err != nil {
		zap.L().Error("write admin log", zap.String("action", e.Topic), zap.Error(err))
	}
}
