package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
)

// Mock repositories and remote client for testing

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Upsert(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ReplaceDoors(ctx context.Context, orderID uint, doors []model.OrderDoor) error {
	args := m.Called(ctx, orderID, doors)
	return args.Error(0)
}

func (m *MockOrderRepository) SyncOrder(ctx context.Context, order *model.Order, doors []model.OrderDoor) error {
	args := m.Called(ctx, order, doors)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByCode(ctx context.Context, code string) (*model.Order, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) DoorsForOrder(ctx context.Context, orderID uint) ([]string, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPendingActionRepository struct {
	mock.Mock
}

func (m *MockPendingActionRepository) Record(ctx context.Context, orderID uint, action model.Action, when time.Time) (*model.PendingAction, error) {
	args := m.Called(ctx, orderID, action, when)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingAction), args.Error(1)
}

func (m *MockPendingActionRepository) ListUnresolved(ctx context.Context) ([]model.PendingAction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PendingAction), args.Error(1)
}

func (m *MockPendingActionRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPendingActionRepository) HasRecentUnresolved(ctx context.Context, orderID uint, since time.Duration) (bool, error) {
	args := m.Called(ctx, orderID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockPendingActionRepository) List(ctx context.Context, limit int) ([]model.PendingAction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PendingAction), args.Error(1)
}

func (m *MockPendingActionRepository) CountUnresolved(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) FetchOrders(ctx context.Context) ([]remote.OrderPayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.OrderPayload), args.Error(1)
}

func (m *MockRemoteClient) ReportAction(ctx context.Context, orderID uint, action model.Action, actionTime time.Time) error {
	args := m.Called(ctx, orderID, action, actionTime)
	return args.Error(0)
}

func (m *MockRemoteClient) FetchDoorRequests(ctx context.Context) ([]remote.DoorRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.DoorRequest), args.Error(1)
}

func (m *MockRemoteClient) MarkRequestExecuted(ctx context.Context, requestID uint) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

// testDB opens a fresh in-memory SQLite database with the full schema
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.OrderDoor{}, &model.PendingAction{}))
	return db
}
