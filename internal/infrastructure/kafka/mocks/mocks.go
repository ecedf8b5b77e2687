package mocks

import (
	"context"

	"github.com/honeynil/LavenderPOS/internal/models"
	"github.com/stretchr/testify/mock"
)

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, event models.PurchaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
