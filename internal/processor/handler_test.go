package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) Process(ctx context.Context, cmd Command) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	return m.Called(ctx, key, originalMessageValue, reason).Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	return m.Called().Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCommandHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	valid := kafka.Message{
		Key:   []byte("acc-1"),
		Value: []byte(`{"command_id": "cmd-1", "type": "DELETE", "payload": {"operation_id": "op-1"}}`),
	}
	broken := kafka.Message{Key: []byte("acc-1"), Value: []byte(`{"command_id": `)}
	isDelete := mock.MatchedBy(func(cmd Command) bool { return cmd.ID == "cmd-1" && cmd.OperationID == "op-1" })

	tests := []struct {
		name       string
		msg        kafka.Message
		setupMocks func(svc *MockProcessingService, dlq *MockDeadLetterPublisher)
		wantErr    bool
	}{
		{
			name: "Processed",
			msg:  valid,
			setupMocks: func(svc *MockProcessingService, _ *MockDeadLetterPublisher) {
				svc.On("Process", ctx, isDelete).Return(nil).Once()
			},
		},
		{
			name: "BusinessErrorIsAcknowledged",
			msg:  valid,
			setupMocks: func(svc *MockProcessingService, _ *MockDeadLetterPublisher) {
				svc.On("Process", ctx, isDelete).Return(shared.ErrNotFound{Entity: shared.EntityOperation, ID: "op-1"}).Once()
			},
		},
		{
			name: "ValidationErrorIsAcknowledged",
			msg:  valid,
			setupMocks: func(svc *MockProcessingService, _ *MockDeadLetterPublisher) {
				svc.On("Process", ctx, isDelete).Return(shared.Invalid(shared.RuleDateWindow, "too late")).Once()
			},
		},
		{
			name: "InfrastructureErrorIsRetried",
			msg:  valid,
			setupMocks: func(svc *MockProcessingService, _ *MockDeadLetterPublisher) {
				svc.On("Process", ctx, isDelete).Return(errors.New("connection reset")).Once()
			},
			wantErr: true,
		},
		{
			name: "UndecodableGoesToDLQ",
			msg:  broken,
			setupMocks: func(_ *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", ctx, "acc-1", broken.Value, mock.AnythingOfType("string")).Return(nil).Once()
			},
		},
		{
			name: "DLQFailureIsRetried",
			msg:  broken,
			setupMocks: func(_ *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", ctx, "acc-1", broken.Value, mock.AnythingOfType("string")).Return(errors.New("dlq down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProcessingService)
			dlq := new(MockDeadLetterPublisher)
			tt.setupMocks(svc, dlq)
			handler := NewCommandHandler(newTestLogger(), svc, dlq)

			err := handler.HandleMessage(ctx, tt.msg)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			svc.AssertExpectations(t)
			dlq.AssertExpectations(t)
		})
	}

	t.Run("UndecodableWithoutDLQ", func(t *testing.T) {
		handler := NewCommandHandler(newTestLogger(), new(MockProcessingService), nil)

		err := handler.HandleMessage(ctx, broken)

		require.Error(t, err)
	})
}
