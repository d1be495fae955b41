package services

import (
	"context"

	"pawtrait/internal/interfaces"
	"pawtrait/internal/models"

	"github.com/samber/do"
)

type ServiceActivity struct {
	feed interfaces.FeedSink
}

func NewServiceActivity(container *do.Injector) (*ServiceActivity, error) {
	feed, err := do.Invoke[interfaces.FeedSink](container)
	if err != nil {
		return nil, err
	}

	return &ServiceActivity{feed}, nil
}

// Recent reads the best-effort activity feed. A down sink degrades to an
// empty feed rather than failing the caller.
func (service *ServiceActivity) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	activities, err := service.feed.Recent(ctx, limit)
	if err != nil {
		return []*models.Activity{}, nil
	}

	return activities, nil
}
