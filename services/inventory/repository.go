package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound indica que o item não existe no catálogo
	ErrItemNotFound = errors.New("item not found")
)

// Repository define a interface para operações de banco de dados de estoque
type Repository interface {
	ListItems(ctx context.Context) ([]Item, error)
	SearchItems(ctx context.Context, query string) ([]Item, error)
	GetItem(ctx context.Context, itemID string) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID string) error

	// BeginTx inicia uma transação; as operações abaixo rodam dentro dela
	BeginTx(ctx context.Context) (Tx, error)

	// GetItemForUpdate obtém o item com lock pessimista (FOR UPDATE)
	GetItemForUpdate(ctx context.Context, tx Tx, itemID string) (*Item, error)

	// AdjustStock aplica um delta (positivo ou negativo) ao estoque do item
	AdjustStock(ctx context.Context, tx Tx, itemID string, delta int) error

	// InsertMovement registra uma movimentação no ledger
	InsertMovement(ctx context.Context, tx Tx, movement *StockMovement) error

	ListMovements(ctx context.Context, filter MovementFilter) ([]MovementRecord, error)
	DashboardStats(ctx context.Context, from, to time.Time) (*DashboardStats, error)
}

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// MovementFilter são os filtros do relatório de movimentações
type MovementFilter struct {
	Search       string
	MovementType string
	From         time.Time
	To           time.Time
}

// MovementRecord é uma movimentação acompanhada dos dados do item
type MovementRecord struct {
	StockMovement
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
}

// DailyFlow agrega entradas e saídas de um dia
type DailyFlow struct {
	Date     time.Time `json:"date"`
	TotalIn  int       `json:"total_in"`
	TotalOut int       `json:"total_out"`
}

// DashboardStats agrega os indicadores do painel
type DashboardStats struct {
	TotalItems         int         `json:"totalItems"`
	TotalStock         int         `json:"totalStock"`
	LowStock           int         `json:"lowStock"`
	LowStockItems      []Item      `json:"lowStockItems"`
	StagnantItemsCount int         `json:"stagnantItemsCount"`
	StagnantItems      []Item      `json:"stagnantItems"`
	Transactions       []DailyFlow `json:"transactions"`
}

// PostgresRepository implementa Repository usando PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository cria uma nova instância de PostgresRepository
func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// BeginTx inicia uma nova transação
func (r *PostgresRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{tx: tx}, nil
}

const itemColumns = `id, code, name, quantity, price::text, price_usd::text, description, information, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var price, priceUSD string
	err := row.Scan(
		&item.ID, &item.Code, &item.Name, &item.Quantity,
		&price, &priceUSD,
		&item.Description, &item.Information,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid price for item %s: %w", item.ID, err)
	}
	if item.PriceUSD, err = decimal.NewFromString(priceUSD); err != nil {
		return nil, fmt.Errorf("invalid price_usd for item %s: %w", item.ID, err)
	}
	return &item, nil
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	defer rows.Close()
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListItems retorna todos os itens em ordem de código
func (r *PostgresRepository) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// SearchItems busca itens por fragmento de código ou nome (case-insensitive)
func (r *PostgresRepository) SearchItems(ctx context.Context, query string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY code
	`, query)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// GetItem busca um item pelo ID
func (r *PostgresRepository) GetItem(ctx context.Context, itemID string) (*Item, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items WHERE id = $1
	`, itemID)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return item, err
}

// CreateItem insere um novo item
func (r *PostgresRepository) CreateItem(ctx context.Context, item *Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, code, name, quantity, price, price_usd, description, information, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, item.ID, item.Code, item.Name, item.Quantity,
		item.Price.String(), item.PriceUSD.String(),
		item.Description, item.Information, item.CreatedAt, item.UpdatedAt)
	return err
}

// UpdateItem atualiza os dados cadastrais de um item
func (r *PostgresRepository) UpdateItem(ctx context.Context, item *Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE items
		SET code = $1, name = $2, quantity = $3, price = $4, price_usd = $5,
		    description = $6, information = $7, updated_at = NOW()
		WHERE id = $8
	`, item.Code, item.Name, item.Quantity,
		item.Price.String(), item.PriceUSD.String(),
		item.Description, item.Information, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// DeleteItem remove um item do catálogo
func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// GetItemForUpdate obtém o item com lock pessimista (FOR UPDATE)
func (r *PostgresRepository) GetItemForUpdate(ctx context.Context, tx Tx, itemID string) (*Item, error) {
	pgTx := tx.(*PostgresTx).tx

	row := pgTx.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id = $1
		FOR UPDATE
	`, itemID)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item with lock: %w", err)
	}
	return item, nil
}

// AdjustStock aplica o delta ao estoque do item dentro da transação
func (r *PostgresRepository) AdjustStock(ctx context.Context, tx Tx, itemID string, delta int) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		UPDATE items
		SET quantity = quantity + $1,
		    updated_at = NOW()
		WHERE id = $2
	`, delta, itemID)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	return nil
}

// InsertMovement insere o registro de movimentação dentro da transação
func (r *PostgresRepository) InsertMovement(ctx context.Context, tx Tx, movement *StockMovement) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		INSERT INTO inventory_movements (id, item_id, change_quantity, movement_type, request_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, movement.ID, movement.ItemID, movement.ChangeQuantity, movement.MovementType, movement.RequestID, movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert movement record: %w", err)
	}
	return nil
}

// ListMovements retorna o relatório de movimentações, mais recentes primeiro
func (r *PostgresRepository) ListMovements(ctx context.Context, filter MovementFilter) ([]MovementRecord, error) {
	query := `
		SELECT m.id, m.item_id, m.change_quantity, m.movement_type,
		       COALESCE(m.request_id, ''), m.created_at,
		       i.code, i.name
		FROM inventory_movements m
		JOIN items i ON i.id = m.item_id
		WHERE ($1 = '' OR i.code ILIKE '%' || $1 || '%' OR i.name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR m.movement_type = $2)
		  AND ($3::timestamptz IS NULL OR m.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR m.created_at < $4)
		ORDER BY m.created_at DESC
	`

	var from, to any
	if !filter.From.IsZero() {
		from = filter.From
	}
	if !filter.To.IsZero() {
		to = filter.To
	}

	rows, err := r.db.Query(ctx, query, filter.Search, filter.MovementType, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MovementRecord
	for rows.Next() {
		var rec MovementRecord
		err := rows.Scan(
			&rec.ID, &rec.ItemID, &rec.ChangeQuantity, &rec.MovementType,
			&rec.RequestID, &rec.CreatedAt,
			&rec.ItemCode, &rec.ItemName,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// lowStockThreshold define o limite do indicador de estoque baixo
const lowStockThreshold = 5

// stagnantAfter define o período sem movimentação que marca um item como parado
const stagnantAfter = 90 * 24 * time.Hour

// DashboardStats agrega os indicadores do painel em uma única chamada
func (r *PostgresRepository) DashboardStats(ctx context.Context, from, to time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM items
	`).Scan(&stats.TotalItems, &stats.TotalStock)
	if err != nil {
		return nil, err
	}

	lowRows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items WHERE quantity < $1
		ORDER BY quantity
	`, lowStockThreshold)
	if err != nil {
		return nil, err
	}
	if stats.LowStockItems, err = collectItems(lowRows); err != nil {
		return nil, err
	}
	stats.LowStock = len(stats.LowStockItems)

	stagnantRows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items i
		WHERE NOT EXISTS (
			SELECT 1 FROM inventory_movements m
			WHERE m.item_id = i.id AND m.created_at >= $1
		)
		ORDER BY code
	`, time.Now().Add(-stagnantAfter))
	if err != nil {
		return nil, err
	}
	if stats.StagnantItems, err = collectItems(stagnantRows); err != nil {
		return nil, err
	}
	stats.StagnantItemsCount = len(stats.StagnantItems)

	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}
	flowRows, err := r.db.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       COALESCE(SUM(change_quantity) FILTER (WHERE movement_type = 'in'), 0),
		       COALESCE(SUM(change_quantity) FILTER (WHERE movement_type = 'out'), 0)
		FROM inventory_movements
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)
		GROUP BY day
		ORDER BY day
	`, fromArg, toArg)
	if err != nil {
		return nil, err
	}
	defer flowRows.Close()
	for flowRows.Next() {
		var flow DailyFlow
		if err := flowRows.Scan(&flow.Date, &flow.TotalIn, &flow.TotalOut); err != nil {
			return nil, err
		}
		stats.Transactions = append(stats.Transactions, flow)
	}
	return stats, flowRows.Err()
}
