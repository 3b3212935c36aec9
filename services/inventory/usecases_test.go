package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace/noop"
)

// MockRepository simula o repositório de estoque
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListItems(ctx context.Context) ([]Item, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) SearchItems(ctx context.Context, query string) ([]Item, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, itemID string) (*Item, error) {
	args := m.Called(ctx, itemID)
	if item := args.Get(0); item != nil {
		return item.(*Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateItem(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) UpdateItem(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) DeleteItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockRepository) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	return args.Get(0).(Tx), args.Error(1)
}

func (m *MockRepository) GetItemForUpdate(ctx context.Context, tx Tx, itemID string) (*Item, error) {
	args := m.Called(ctx, tx, itemID)
	if item := args.Get(0); item != nil {
		return item.(*Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) AdjustStock(ctx context.Context, tx Tx, itemID string, delta int) error {
	args := m.Called(ctx, tx, itemID, delta)
	return args.Error(0)
}

func (m *MockRepository) InsertMovement(ctx context.Context, tx Tx, movement *StockMovement) error {
	args := m.Called(ctx, tx, movement)
	return args.Error(0)
}

func (m *MockRepository) ListMovements(ctx context.Context, filter MovementFilter) ([]MovementRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]MovementRecord), args.Error(1)
}

func (m *MockRepository) DashboardStats(ctx context.Context, from, to time.Time) (*DashboardStats, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(*DashboardStats), args.Error(1)
}

// MockTx simula uma transação
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func testItem(id, code string, quantity int) *Item {
	return NewItem(id, code, code+" part", quantity,
		decimal.RequireFromString("2.50"), decimal.RequireFromString("0.16"))
}

func newTestUseCase(repo Repository, idem IdempotencyStore) *InventoryUseCase {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewInventoryUseCase(repo, idem, tracer)
}

func TestBatchStockOutAppliesAllLines(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)

	// BatchStockOut opens a span, so the repository sees a derived context.
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("GetItemForUpdate", mock.Anything, tx, "a").Return(testItem("a", "A100", 40), nil)
	repo.On("GetItemForUpdate", mock.Anything, tx, "b").Return(testItem("b", "A200", 15), nil)
	repo.On("AdjustStock", mock.Anything, tx, "a", -5).Return(nil)
	repo.On("AdjustStock", mock.Anything, tx, "b", -2).Return(nil)
	repo.On("InsertMovement", mock.Anything, tx, mock.Anything).Return(nil)
	tx.On("Commit").Return(nil)
	tx.On("Rollback").Return(nil)

	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	// The lines arrive out of itemID order; locks must still be taken in order.
	req := BatchStockOutRequest{
		RequestID: "req-1",
		Items: []BatchStockOutLine{
			{ItemID: "b", Quantity: 2},
			{ItemID: "a", Quantity: 5},
		},
	}

	// Act
	result, err := uc.BatchStockOut(ctx, req)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.False(t, result.Duplicate)
	tx.AssertCalled(t, "Commit")
	repo.AssertExpectations(t)

	// Movements must carry the batch request id and the out type.
	for _, call := range repo.Calls {
		if call.Method == "InsertMovement" {
			movement := call.Arguments.Get(2).(*StockMovement)
			assert.Equal(t, MovementTypeOut, movement.MovementType)
			assert.Equal(t, "req-1", movement.RequestID)
		}
	}
}

func TestBatchStockOutInsufficientStockRollsBackWholeBatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("GetItemForUpdate", mock.Anything, tx, "a").Return(testItem("a", "A100", 40), nil)
	repo.On("GetItemForUpdate", mock.Anything, tx, "b").Return(testItem("b", "A200", 1), nil)
	repo.On("AdjustStock", mock.Anything, tx, "a", -5).Return(nil)
	repo.On("InsertMovement", mock.Anything, tx, mock.Anything).Return(nil)
	tx.On("Rollback").Return(nil)

	idem := NewInMemoryIdempotencyStore()
	uc := newTestUseCase(repo, idem)

	req := BatchStockOutRequest{
		RequestID: "req-1",
		Items: []BatchStockOutLine{
			{ItemID: "a", Quantity: 5},
			{ItemID: "b", Quantity: 2},
		},
	}

	// Act
	_, err := uc.BatchStockOut(ctx, req)

	// Assert
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "A200")
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")

	// The request id must be released so the corrected batch can retry.
	fresh, _ := idem.MarkProcessed(ctx, "req-1", time.Minute)
	assert.True(t, fresh)
}

func TestBatchStockOutUnknownItemFailsBatch(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("GetItemForUpdate", mock.Anything, tx, "ghost").Return(nil, ErrItemNotFound)
	tx.On("Rollback").Return(nil)

	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	_, err := uc.BatchStockOut(ctx, BatchStockOutRequest{
		RequestID: "req-1",
		Items:     []BatchStockOutLine{{ItemID: "ghost", Quantity: 1}},
	})

	assert.ErrorIs(t, err, ErrItemNotFound)
	tx.AssertNotCalled(t, "Commit")
}

func TestBatchStockOutDuplicateRequestIsReplayed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockRepository)
	idem := NewInMemoryIdempotencyStore()
	_, err := idem.MarkProcessed(ctx, "req-1", time.Minute)
	assert.NoError(t, err)

	uc := newTestUseCase(repo, idem)

	// Act
	result, err := uc.BatchStockOut(ctx, BatchStockOutRequest{
		RequestID: "req-1",
		Items:     []BatchStockOutLine{{ItemID: "a", Quantity: 5}},
	})

	// Assert: a re-sent batch is acknowledged without touching the database.
	assert.NoError(t, err)
	assert.True(t, result.Duplicate)
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestBatchStockOutRejectsInvalidLines(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	for _, req := range []BatchStockOutRequest{
		{RequestID: "r", Items: nil},
		{RequestID: "r", Items: []BatchStockOutLine{{ItemID: "a", Quantity: 0}}},
		{RequestID: "r", Items: []BatchStockOutLine{{ItemID: "a", Quantity: -3}}},
	} {
		_, err := uc.BatchStockOut(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidMovement)
	}
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestMoveStockOutInsufficientStock(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetItemForUpdate", ctx, tx, "a").Return(testItem("a", "A100", 2), nil)
	tx.On("Rollback").Return(nil)

	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	err := uc.MoveStock(ctx, StockMoveRequest{ItemID: "a", Type: MovementTypeOut, Quantity: 3})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	tx.AssertNotCalled(t, "Commit")
}

func TestMoveStockInAddsQuantity(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetItemForUpdate", ctx, tx, "a").Return(testItem("a", "A100", 2), nil)
	repo.On("AdjustStock", ctx, tx, "a", 7).Return(nil)
	repo.On("InsertMovement", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit").Return(nil)
	tx.On("Rollback").Return(nil)

	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	err := uc.MoveStock(ctx, StockMoveRequest{ItemID: "a", Type: MovementTypeIn, Quantity: 7})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchItemsEmptyQuery(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	items, err := uc.SearchItems(context.Background(), "")

	assert.NoError(t, err)
	assert.Empty(t, items)
	repo.AssertNotCalled(t, "SearchItems", mock.Anything, mock.Anything)
}

func TestCreateItemValidatesInput(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	_, err := uc.CreateItem(context.Background(), ItemRequest{Code: "", Name: "Bolt"})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

func TestIdempotencyStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()

	fresh, err := store.MarkProcessed(ctx, "req-1", 10*time.Millisecond)
	assert.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.MarkProcessed(ctx, "req-1", 10*time.Millisecond)
	assert.NoError(t, err)
	assert.False(t, fresh)

	time.Sleep(20 * time.Millisecond)
	fresh, err = store.MarkProcessed(ctx, "req-1", 10*time.Millisecond)
	assert.NoError(t, err)
	assert.True(t, fresh)
}

func TestIdempotencyStoreRelease(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()

	_, err := store.MarkProcessed(ctx, "req-1", time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, store.Release(ctx, "req-1"))

	fresh, err := store.MarkProcessed(ctx, "req-1", time.Minute)
	assert.NoError(t, err)
	assert.True(t, fresh)
}

var errBoom = errors.New("boom")

func TestBatchStockOutBeginTxFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("BeginTx", mock.Anything).Return((*MockTx)(nil), errBoom)

	uc := newTestUseCase(repo, NewInMemoryIdempotencyStore())

	_, err := uc.BatchStockOut(ctx, BatchStockOutRequest{
		Items: []BatchStockOutLine{{ItemID: "a", Quantity: 1}},
	})

	assert.ErrorIs(t, err, errBoom)
}
