package main

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Item representa um item do catálogo de estoque
type Item struct {
	ID          string          `json:"id" db:"id"`
	Code        string          `json:"code" db:"code"`
	Name        string          `json:"name" db:"name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	PriceUSD    decimal.Decimal `json:"priceUsd" db:"price_usd"`
	Description string          `json:"description" db:"description"`
	Information string          `json:"information" db:"information"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// NewItem cria uma nova instância de Item
func NewItem(id, code, name string, quantity int, price, priceUSD decimal.Decimal) *Item {
	return &Item{
		ID:        id,
		Code:      code,
		Name:      name,
		Quantity:  quantity,
		Price:     price,
		PriceUSD:  priceUSD,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Validate verifica os invariantes do item
func (i *Item) Validate() error {
	if i.Code == "" {
		return errors.New("item code is required")
	}
	if i.Name == "" {
		return errors.New("item name is required")
	}
	if i.Quantity < 0 {
		return errors.New("item quantity cannot be negative")
	}
	if i.Price.IsNegative() || i.PriceUSD.IsNegative() {
		return errors.New("item price cannot be negative")
	}
	return nil
}

// StockMovement representa uma movimentação de estoque (entrada ou saída)
type StockMovement struct {
	ID             string    `json:"id" db:"id"`
	ItemID         string    `json:"item_id" db:"item_id"`
	ChangeQuantity int       `json:"change_quantity" db:"change_quantity"`
	MovementType   string    `json:"movement_type" db:"movement_type"`
	RequestID      string    `json:"request_id,omitempty" db:"request_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewStockMovement cria uma nova instância de StockMovement
func NewStockMovement(id, itemID string, changeQuantity int, movementType, requestID string) *StockMovement {
	return &StockMovement{
		ID:             id,
		ItemID:         itemID,
		ChangeQuantity: changeQuantity,
		MovementType:   movementType,
		RequestID:      requestID,
		CreatedAt:      time.Now(),
	}
}

// MovementType representa os tipos de movimentação de estoque
const (
	MovementTypeIn  = "in"
	MovementTypeOut = "out"
)
