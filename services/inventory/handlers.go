package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InventoryHandler contém os handlers HTTP do serviço de estoque
type InventoryHandler struct {
	useCase *InventoryUseCase
	tracer  trace.Tracer
}

// NewInventoryHandler cria uma nova instância de InventoryHandler
func NewInventoryHandler(useCase *InventoryUseCase, tracer trace.Tracer) *InventoryHandler {
	return &InventoryHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// ListItems retorna o catálogo completo
func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.useCase.ListItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}
	if items == nil {
		items = []Item{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SearchItems busca itens por fragmento de código ou nome
func (h *InventoryHandler) SearchItems(c *gin.Context) {
	items, err := h.useCase.SearchItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search items"})
		return
	}
	if items == nil {
		items = []Item{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateItem cadastra um novo item
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.useCase.CreateItem(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem atualiza os dados cadastrais de um item
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.useCase.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem remove um item do catálogo
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	err := h.useCase.DeleteItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// MoveStock aplica uma movimentação avulsa de entrada ou saída
func (h *InventoryHandler) MoveStock(c *gin.Context) {
	var req StockMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "move_stock")
	defer span.End()
	span.SetAttributes(
		attribute.String("item_id", req.ItemID),
		attribute.String("movement_type", req.Type),
		attribute.Int("quantity", req.Quantity),
	)

	if err := h.useCase.MoveStock(ctx, req); err != nil {
		span.RecordError(err)
		h.writeMovementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// BatchStockOut aplica o lote de saída do PDV como uma transação única
func (h *InventoryHandler) BatchStockOut(c *gin.Context) {
	var req BatchStockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RequestID == "" {
		req.RequestID = c.GetHeader("X-Request-ID")
	}

	result, err := h.useCase.BatchStockOut(c.Request.Context(), req)
	if err != nil {
		h.writeMovementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requestId": req.RequestID,
		"applied":   result.Applied,
		"duplicate": result.Duplicate,
	})
}

// StockLogs retorna o relatório de movimentações
func (h *InventoryHandler) StockLogs(c *gin.Context) {
	filter := MovementFilter{
		Search:       c.Query("search"),
		MovementType: c.Query("type"),
	}
	var err error
	if filter.From, err = parseDateParam(c.Query("startDate")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
		return
	}
	if filter.To, err = parseDateParam(c.Query("endDate")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
		return
	}

	logs, err := h.useCase.ListStockLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stock logs"})
		return
	}
	if logs == nil {
		logs = []MovementRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// Dashboard agrega os indicadores do painel
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	from, err := parseDateParam(c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
		return
	}
	to, err := parseDateParam(c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
		return
	}

	stats, err := h.useCase.Dashboard(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HealthCheck é o endpoint de health check
func (h *InventoryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "inventory-service",
	})
}

// writeMovementError mapeia falhas de movimentação para o status HTTP
func (h *InventoryHandler) writeMovementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidMovement),
		errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply stock movement"})
	}
}

func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
