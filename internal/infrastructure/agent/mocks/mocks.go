package mocks

import (
	"context"

	"github.com/honeynil/LavenderPOS/internal/infrastructure/agent"
	"github.com/stretchr/testify/mock"
)

type Notifier struct {
	mock.Mock
}

func (m *Notifier) Dispense(ctx context.Context, agentURL string, req agent.DispenseRequest) error {
	args := m.Called(ctx, agentURL, req)
	return args.Error(0)
}

func (m *Notifier) Cancel(ctx context.Context, agentURL string, req agent.CancelRequest) error {
	args := m.Called(ctx, agentURL, req)
	return args.Error(0)
}
