package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// StockUseCase ajustes manuales de inventario. Cada ajuste deja un movimiento ADJUSTMENT
// con el delta aplicado, en la misma transacción que el cambio de stock.
type StockUseCase struct {
	tx        repository.TxRunner
	variants  repository.VariantRepository
	movements repository.StockMovementRepository
	log       zerolog.Logger
}

func NewStockUseCase(tx repository.TxRunner, variants repository.VariantRepository, movements repository.StockMovementRepository, log zerolog.Logger) *StockUseCase {
	return &StockUseCase{tx: tx, variants: variants, movements: movements, log: log}
}

// AdjustProductStock fija el stock absoluto del producto. nil lo deja sin control de inventario.
func (uc *StockUseCase) AdjustProductStock(ctx context.Context, productID, userID string, stock *int) (*dto.StockMovementResponse, error) {
	return uc.adjust(ctx, userID, stock, productID, "")
}

// AdjustVariantStock fija el stock absoluto de la variante.
func (uc *StockUseCase) AdjustVariantStock(ctx context.Context, variantID, userID string, stock *int) (*dto.StockMovementResponse, error) {
	v, err := uc.variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrVariantNotFound
	}
	return uc.adjust(ctx, userID, stock, v.ProductID, variantID)
}

func (uc *StockUseCase) adjust(ctx context.Context, userID string, stock *int, productID, variantID string) (*dto.StockMovementResponse, error) {
	if stock != nil && *stock < 0 {
		return nil, fmt.Errorf("%w: el stock no puede ser negativo", domain.ErrInvalidInput)
	}
	now := time.Now()
	m := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		VariantID:      variantID,
		Type:           entity.MovementAdjustment,
		ResultingStock: stock,
		CreatedBy:      userID,
		CreatedAt:      now,
	}
	err := uc.tx.Run(ctx, func(repos repository.TxRepos) error {
		var (
			previous *int
			err      error
		)
		if variantID != "" {
			previous, err = repos.Stock.SetVariantStock(ctx, variantID, stock, now)
		} else {
			previous, err = repos.Stock.SetProductStock(ctx, productID, stock, now)
		}
		if err != nil {
			return err
		}
		m.Quantity = deref(stock) - deref(previous)
		return repos.Movements.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", productID).
		Str("variant_id", variantID).
		Int("delta", m.Quantity).
		Msg("stock ajustado")
	resp := toMovementResponse(m)
	return &resp, nil
}

// History movimientos de stock del producto (ventas y ajustes), más recientes primero.
func (uc *StockUseCase) History(ctx context.Context, productID string, limit, offset int) ([]dto.StockMovementResponse, error) {
	list, err := uc.movements.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		VariantID:      m.VariantID,
		TransactionID:  m.TransactionID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		ResultingStock: m.ResultingStock,
		CreatedAt:      m.CreatedAt,
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
