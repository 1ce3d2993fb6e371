package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
)

type recordingDoors struct {
	opened [][]string
	err    error
}

func (d *recordingDoors) OpenDoors(doors []string) error {
	d.opened = append(d.opened, doors)
	return d.err
}

func TestPollOnceOpensAndConfirms(t *testing.T) {
	client := new(MockRemoteClient)
	doors := &recordingDoors{}

	client.On("FetchDoorRequests", mock.Anything).Return([]remote.DoorRequest{
		{ID: 12, Door: "4"},
		{ID: 13, Door: "6"},
	}, nil)
	client.On("MarkRequestExecuted", mock.Anything, uint(12)).Return(nil)
	client.On("MarkRequestExecuted", mock.Anything, uint(13)).Return(nil)

	NewUnlockPoller(client, doors).PollOnce(context.Background())

	require.Equal(t, [][]string{{"4"}, {"6"}}, doors.opened)
	client.AssertExpectations(t)
}

func TestPollOnceSkipsConfirmWhenDoorFails(t *testing.T) {
	client := new(MockRemoteClient)
	doors := &recordingDoors{err: errors.New("relay jammed")}

	client.On("FetchDoorRequests", mock.Anything).Return([]remote.DoorRequest{{ID: 12, Door: "4"}}, nil)

	NewUnlockPoller(client, doors).PollOnce(context.Background())

	// The request stays pending for the next poll
	client.AssertNotCalled(t, "MarkRequestExecuted", mock.Anything, mock.Anything)
}

func TestPollOnceToleratesFetchFailure(t *testing.T) {
	client := new(MockRemoteClient)
	doors := &recordingDoors{}
	client.On("FetchDoorRequests", mock.Anything).Return(nil, errors.New("offline"))

	NewUnlockPoller(client, doors).PollOnce(context.Background())
	require.Empty(t, doors.opened)
}
