package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
)

func TestReportSuccessWritesNothingLocally(t *testing.T) {
	pending := new(MockPendingActionRepository)
	client := new(MockRemoteClient)
	when := time.Date(2025, 3, 2, 14, 0, 0, 0, time.UTC)
	client.On("ReportAction", mock.Anything, uint(7), model.ActionPickup, when).Return(nil)

	reporter := NewReporter(pending, client)
	require.NoError(t, reporter.Report(context.Background(), 7, model.ActionPickup, when))

	pending.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportFailureQueuesPendingAction(t *testing.T) {
	pending := new(MockPendingActionRepository)
	client := new(MockRemoteClient)
	when := time.Date(2025, 3, 2, 14, 0, 0, 0, time.UTC)

	client.On("ReportAction", mock.Anything, uint(9), model.ActionOpening, when).
		Return(errors.New("connection refused"))
	pending.On("Record", mock.Anything, uint(9), model.ActionOpening, when).
		Return(&model.PendingAction{OrderID: 9}, nil)

	reporter := NewReporter(pending, client)
	err := reporter.Report(context.Background(), 9, model.ActionOpening, when)
	require.Error(t, err)

	pending.AssertExpectations(t)
}

func TestReportQueuesWithOriginalActionTime(t *testing.T) {
	pending := new(MockPendingActionRepository)
	client := new(MockRemoteClient)
	// The action happened earlier than the report attempt
	happened := time.Now().Add(-10 * time.Minute)

	client.On("ReportAction", mock.Anything, uint(7), model.ActionPickup, happened).
		Return(errors.New("timeout"))
	pending.On("Record", mock.Anything, uint(7), model.ActionPickup, happened).
		Return(&model.PendingAction{OrderID: 7, ActionTime: happened}, nil)

	reporter := NewReporter(pending, client)
	require.Error(t, reporter.Report(context.Background(), 7, model.ActionPickup, happened))
	pending.AssertExpectations(t)
}
