package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInsufficientStock indica que o estoque não cobre a saída pedida
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidMovement indica uma movimentação com tipo ou quantidade inválida
	ErrInvalidMovement = errors.New("invalid stock movement")
)

// idempotencyTTL é o período em que um request ID de lote continua sendo
// reconhecido como duplicado
const idempotencyTTL = 24 * time.Hour

// InventoryUseCase contém a lógica de negócio do estoque
type InventoryUseCase struct {
	repository Repository
	idem       IdempotencyStore
	tracer     trace.Tracer
}

// NewInventoryUseCase cria uma nova instância de InventoryUseCase
func NewInventoryUseCase(
	repository Repository,
	idem IdempotencyStore,
	tracer trace.Tracer,
) *InventoryUseCase {
	return &InventoryUseCase{
		repository: repository,
		idem:       idem,
		tracer:     tracer,
	}
}

// ListItems retorna o catálogo completo
func (uc *InventoryUseCase) ListItems(ctx context.Context) ([]Item, error) {
	return uc.repository.ListItems(ctx)
}

// SearchItems busca itens por fragmento de código ou nome
func (uc *InventoryUseCase) SearchItems(ctx context.Context, query string) ([]Item, error) {
	if query == "" {
		return []Item{}, nil
	}
	return uc.repository.SearchItems(ctx, query)
}

// CreateItem cadastra um novo item
func (uc *InventoryUseCase) CreateItem(ctx context.Context, req ItemRequest) (*Item, error) {
	item := NewItem(uuid.New().String(), req.Code, req.Name, req.Quantity, req.Price, req.PriceUSD)
	item.Description = req.Description
	item.Information = req.Information

	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repository.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// UpdateItem atualiza os dados cadastrais de um item
func (uc *InventoryUseCase) UpdateItem(ctx context.Context, itemID string, req ItemRequest) (*Item, error) {
	item, err := uc.repository.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.Code = req.Code
	item.Name = req.Name
	item.Quantity = req.Quantity
	item.Price = req.Price
	item.PriceUSD = req.PriceUSD
	item.Description = req.Description
	item.Information = req.Information

	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repository.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// DeleteItem remove um item do catálogo
func (uc *InventoryUseCase) DeleteItem(ctx context.Context, itemID string) error {
	return uc.repository.DeleteItem(ctx, itemID)
}

// MoveStock aplica uma movimentação avulsa de entrada ou saída
func (uc *InventoryUseCase) MoveStock(ctx context.Context, req StockMoveRequest) error {
	log.Printf("➡️ [STOCK %s] ItemID: %s Quantity: %d", req.Type, req.ItemID, req.Quantity)

	if req.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidMovement)
	}
	if req.Type != MovementTypeIn && req.Type != MovementTypeOut {
		return fmt.Errorf("%w: unknown movement type %q", ErrInvalidMovement, req.Type)
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := uc.repository.GetItemForUpdate(ctx, tx, req.ItemID)
	if err != nil {
		return err
	}

	delta := req.Quantity
	if req.Type == MovementTypeOut {
		if item.Quantity < req.Quantity {
			return fmt.Errorf("%w for item %s: have %d, requested %d",
				ErrInsufficientStock, item.Code, item.Quantity, req.Quantity)
		}
		delta = -req.Quantity
	}

	if err := uc.repository.AdjustStock(ctx, tx, req.ItemID, delta); err != nil {
		return err
	}
	movement := NewStockMovement(uuid.New().String(), req.ItemID, req.Quantity, req.Type, "")
	if err := uc.repository.InsertMovement(ctx, tx, movement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stock movement: %w", err)
	}

	log.Printf("✅ [STOCK %s] Success: ItemID=%s", req.Type, req.ItemID)
	return nil
}

// BatchResult é o resultado da aplicação de um lote de saída
type BatchResult struct {
	Applied   int
	Duplicate bool
}

// BatchStockOut aplica todas as linhas do lote em uma única transação.
// Qualquer linha com estoque insuficiente ou item desconhecido desfaz o
// lote inteiro: do ponto de vista do cliente a aplicação é tudo-ou-nada.
//
// O request ID gerado pelo cliente é registrado antes da aplicação; um lote
// reenviado com o mesmo ID é reconhecido como duplicado e respondido com
// sucesso sem reaplicar. Se o processamento falha depois da marcação, o ID
// é liberado para permitir a retentativa.
func (uc *InventoryUseCase) BatchStockOut(ctx context.Context, req BatchStockOutRequest) (*BatchResult, error) {
	ctx, span := uc.tracer.Start(ctx, "batch_stock_out")
	defer span.End()
	span.SetAttributes(
		attribute.String("request_id", req.RequestID),
		attribute.Int("lines", len(req.Items)),
	)

	log.Printf("➡️ [BATCH OUT] RequestID: %s | Lines: %d", req.RequestID, len(req.Items))

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: batch has no lines", ErrInvalidMovement)
	}
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1 for item %s", ErrInvalidMovement, line.ItemID)
		}
	}

	if req.RequestID != "" {
		fresh, err := uc.idem.MarkProcessed(ctx, req.RequestID, idempotencyTTL)
		if err != nil {
			// Dedup degrades to at-least-once when the store is down; the
			// client already accepts that re-sends may double-apply.
			log.Printf("⚠️ [BATCH OUT] idempotency store unavailable: %v", err)
		} else if !fresh {
			log.Printf("ℹ️ [IDEMPOTENCY] Batch already processed: RequestID=%s", req.RequestID)
			span.AddEvent("duplicate batch replayed")
			return &BatchResult{Applied: len(req.Items), Duplicate: true}, nil
		}
	}

	applied, err := uc.applyBatch(ctx, req)
	if err != nil {
		if req.RequestID != "" {
			if relErr := uc.idem.Release(ctx, req.RequestID); relErr != nil {
				log.Printf("⚠️ [BATCH OUT] failed to release request id %s: %v", req.RequestID, relErr)
			}
		}
		log.Printf("❌ [BATCH OUT] FAILED RequestID=%s: %v", req.RequestID, err)
		span.RecordError(err)
		return nil, err
	}

	log.Printf("✅ [BATCH OUT] Success: RequestID=%s Applied=%d", req.RequestID, applied)
	return &BatchResult{Applied: applied}, nil
}

func (uc *InventoryUseCase) applyBatch(ctx context.Context, req BatchStockOutRequest) (int, error) {
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Locks are taken in itemID order so two concurrent batches touching
	// the same items cannot deadlock each other.
	lines := make([]BatchStockOutLine, len(req.Items))
	copy(lines, req.Items)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })

	for _, line := range lines {
		item, err := uc.repository.GetItemForUpdate(ctx, tx, line.ItemID)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrItemNotFound, line.ItemID)
			}
			return 0, err
		}
		if item.Quantity < line.Quantity {
			return 0, fmt.Errorf("%w for item %s: have %d, requested %d",
				ErrInsufficientStock, item.Code, item.Quantity, line.Quantity)
		}
		if err := uc.repository.AdjustStock(ctx, tx, line.ItemID, -line.Quantity); err != nil {
			return 0, err
		}
		movement := NewStockMovement(uuid.New().String(), line.ItemID, line.Quantity, MovementTypeOut, req.RequestID)
		if err := uc.repository.InsertMovement(ctx, tx, movement); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch stock-out: %w", err)
	}
	return len(lines), nil
}

// ListStockLogs retorna o relatório de movimentações
func (uc *InventoryUseCase) ListStockLogs(ctx context.Context, filter MovementFilter) ([]MovementRecord, error) {
	return uc.repository.ListMovements(ctx, filter)
}

// Dashboard agrega os indicadores do painel
func (uc *InventoryUseCase) Dashboard(ctx context.Context, from, to time.Time) (*DashboardStats, error) {
	return uc.repository.DashboardStats(ctx, from, to)
}

// ItemRequest representa a requisição de criação/edição de item
type ItemRequest struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	PriceUSD    decimal.Decimal `json:"priceUsd"`
	Description string          `json:"description"`
	Information string          `json:"information"`
}

// StockMoveRequest representa uma movimentação avulsa de estoque
type StockMoveRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// BatchStockOutLine é uma linha do lote de saída
type BatchStockOutLine struct {
	ItemID    string          `json:"itemId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// BatchStockOutRequest representa o lote de saída enviado pelo PDV
type BatchStockOutRequest struct {
	RequestID string              `json:"requestId"`
	Items     []BatchStockOutLine `json:"items" binding:"required"`
}
