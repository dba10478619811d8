package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock se fija al crear;
// después solo cambia por ventas o ajustes (StockUseCase).
type ProductUseCase struct {
	repo     repository.ProductRepository
	variants repository.VariantRepository
	lowStock int
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, variants repository.VariantRepository, lowStock int) *ProductUseCase {
	return &ProductUseCase{repo: repo, variants: variants, lowStock: lowStock}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductInput) (*dto.ProductResponse, error) {
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		Stock:     in.Stock,
		CreatedAt: now,
	}
	if err := cleanProductInput(product, in); err != nil {
		return nil, err
	}
	product.UpdatedAt = now
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return uc.toResponse(product, nil), nil
}

// GetByID obtiene un producto con sus variantes.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	var variants []*entity.ProductVariant
	if product.HasVariants {
		if variants, err = uc.variants.ListByProduct(ctx, id); err != nil {
			return nil, err
		}
	}
	return uc.toResponse(product, variants), nil
}

// Update reemplaza los datos de catálogo. No modifica el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.ProductInput) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := cleanProductInput(product, in); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.toResponse(product, nil), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *uc.toResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// cleanProductInput normaliza el formulario: nombre recortado y obligatorio, precio >= 0,
// opcionales vacíos se guardan como NULL, has_variants por defecto false.
func cleanProductInput(p *entity.Product, in dto.ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if in.Price == nil || in.Price.IsNegative() {
		return fmt.Errorf("%w: el precio es obligatorio y no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.Cost != nil && in.Cost.IsNegative() {
		return fmt.Errorf("%w: el costo no puede ser negativo", domain.ErrInvalidInput)
	}
	p.Name = name
	p.Price = *in.Price
	p.Cost = in.Cost
	p.Description = strings.TrimSpace(in.Description)
	p.SKU = strings.TrimSpace(in.SKU)
	p.Barcode = strings.TrimSpace(in.Barcode)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.Category = strings.TrimSpace(in.Category)
	p.CategoryID = strings.TrimSpace(in.CategoryID)
	p.HasVariants = in.HasVariants != nil && *in.HasVariants
	return nil
}

func (uc *ProductUseCase) toResponse(p *entity.Product, variants []*entity.ProductVariant) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		StockStatus: entity.StockStatusOf(p.Stock, uc.lowStock),
		SKU:         p.SKU,
		Barcode:     p.Barcode,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		CategoryID:  p.CategoryID,
		HasVariants: p.HasVariants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, v := range variants {
		resp.Variants = append(resp.Variants, toVariantResponse(v, uc.lowStock))
	}
	return resp
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
