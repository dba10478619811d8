package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// VariantUseCase alta y edición de variantes de producto.
type VariantUseCase struct {
	repo     repository.VariantRepository
	products repository.ProductRepository
	lowStock int
}

func NewVariantUseCase(repo repository.VariantRepository, products repository.ProductRepository, lowStock int) *VariantUseCase {
	return &VariantUseCase{repo: repo, products: products, lowStock: lowStock}
}

// Create crea la variante bajo productID y marca el producto como con variantes.
func (uc *VariantUseCase) Create(ctx context.Context, productID string, in dto.VariantInput) (*dto.VariantResponse, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	v := &entity.ProductVariant{
		ID:         uuid.New().String(),
		ProductID:  productID,
		StockCount: in.StockCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := cleanVariantInput(v, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	if !product.HasVariants {
		product.HasVariants = true
		product.UpdatedAt = now
		if err := uc.products.Update(ctx, product); err != nil {
			return nil, err
		}
	}
	resp := toVariantResponse(v, uc.lowStock)
	return &resp, nil
}

// Update reemplaza los datos de la variante. Si in.ProductID viene vacío se conserva el actual.
// El stock no se modifica aquí.
func (uc *VariantUseCase) Update(ctx context.Context, id string, in dto.VariantInput) (*dto.VariantResponse, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if in.ProductID != "" {
		v.ProductID = in.ProductID
	}
	if err := cleanVariantInput(v, in); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	resp := toVariantResponse(v, uc.lowStock)
	return &resp, nil
}

// ListByProduct variantes de un producto.
func (uc *VariantUseCase) ListByProduct(ctx context.Context, productID string) ([]dto.VariantResponse, error) {
	list, err := uc.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VariantResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVariantResponse(v, uc.lowStock))
	}
	return out, nil
}

// cleanVariantInput precio por defecto 0, atributos por defecto vacíos.
func cleanVariantInput(v *entity.ProductVariant, in dto.VariantInput) error {
	price := decimalOrZero(in.Price)
	if price.IsNegative() {
		return fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrInvalidInput)
	}
	v.Price = price
	v.SKU = strings.TrimSpace(in.SKU)
	v.Color = strings.TrimSpace(in.Color)
	v.Size = strings.TrimSpace(in.Size)
	v.Flavor = strings.TrimSpace(in.Flavor)
	v.Attributes = in.Attributes
	if v.Attributes == nil {
		v.Attributes = map[string]string{}
	}
	return nil
}

func toVariantResponse(v *entity.ProductVariant, lowStock int) dto.VariantResponse {
	return dto.VariantResponse{
		ID:          v.ID,
		ProductID:   v.ProductID,
		Price:       v.Price,
		StockCount:  v.StockCount,
		StockStatus: entity.StockStatusOf(v.StockCount, lowStock),
		SKU:         v.SKU,
		Color:       v.Color,
		Size:        v.Size,
		Flavor:      v.Flavor,
		Description: v.Description(),
		Attributes:  v.Attributes,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
