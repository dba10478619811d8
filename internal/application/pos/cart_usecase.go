package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/cart"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// CartUseCase operaciones del carrito de una caja. El carrito vive en el CartStore;
// cada cambio valida contra el stock vivo antes de escribir.
type CartUseCase struct {
	store     repository.CartStore
	products  repository.ProductRepository
	variants  repository.VariantRepository
	customers repository.CustomerRepository
	stock     *StockGateway
	taxes     TaxSettings
	lowStock  int
	log       zerolog.Logger
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(
	store repository.CartStore,
	products repository.ProductRepository,
	variants repository.VariantRepository,
	customers repository.CustomerRepository,
	stock *StockGateway,
	taxes TaxSettings,
	lowStock int,
	log zerolog.Logger,
) *CartUseCase {
	return &CartUseCase{
		store:     store,
		products:  products,
		variants:  variants,
		customers: customers,
		stock:     stock,
		taxes:     taxes,
		lowStock:  lowStock,
		log:       log,
	}
}

// GetCart devuelve el carrito con totales.
func (uc *CartUseCase) GetCart(ctx context.Context, sessionID string) (*dto.CartResponse, error) {
	c, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, uc.backend(err, "leer carrito", sessionID)
	}
	return toCartResponse(c, uc.taxes, uc.lowStock), nil
}

// PrepareCartItem construye la línea a agregar validando la cantidad pedida (más la ya presente
// en current) contra el stock vivo. No escribe nada.
func (uc *CartUseCase) PrepareCartItem(ctx context.Context, current []entity.CartItem, productID, variantID string, qty int) (entity.CartItem, error) {
	if productID == "" || qty <= 0 {
		return entity.CartItem{}, fmt.Errorf("%w: producto y cantidad positiva son obligatorios", domain.ErrInvalidInput)
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return entity.CartItem{}, uc.backend(err, "leer producto", productID)
	}
	if product == nil {
		return entity.CartItem{}, domain.ErrNotFound
	}

	item := entity.CartItem{
		ProductID: product.ID,
		VariantID: variantID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  qty,
		Category:  product.Category,
	}

	var live *int
	if variantID != "" {
		variant, err := uc.variants.GetByID(ctx, variantID)
		if err != nil {
			return entity.CartItem{}, uc.backend(err, "leer variante", variantID)
		}
		if variant == nil || variant.ProductID != product.ID {
			return entity.CartItem{}, domain.ErrVariantNotFound
		}
		live, err = uc.stock.VariantStock(ctx, variantID)
		if errors.Is(err, domain.ErrNotFound) {
			return entity.CartItem{}, domain.ErrVariantNotFound
		}
		if err != nil {
			return entity.CartItem{}, uc.backend(err, "leer stock de variante", variantID)
		}
		item.Price = variant.Price
		item.Variant = entity.NewCartVariant(*variant)
		item.Variant.StockCount = live
		item.Stock = product.Stock
	} else {
		if product.HasVariants {
			return entity.CartItem{}, fmt.Errorf("%w: seleccione una variante de %s", domain.ErrInvalidInput, product.Name)
		}
		live, err = uc.stock.ProductStock(ctx, productID)
		if errors.Is(err, domain.ErrNotFound) {
			return entity.CartItem{}, domain.ErrNotFound
		}
		if err != nil {
			return entity.CartItem{}, uc.backend(err, "leer stock de producto", productID)
		}
		item.Stock = live
	}

	if err := checkAvailable(item, cart.QuantityOf(current, item.Key())+qty); err != nil {
		return entity.CartItem{}, err
	}
	return item, nil
}

// AddToCart agrega o fusiona la línea en el carrito de la sesión.
func (uc *CartUseCase) AddToCart(ctx context.Context, sessionID string, in dto.AddToCartRequest) (*dto.CartResponse, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	current, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, uc.backend(err, "leer carrito", sessionID)
	}
	item, err := uc.PrepareCartItem(ctx, current.Items, in.ProductID, in.VariantID, in.Quantity)
	if err != nil {
		return nil, err
	}

	updated, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if err := checkoutIdle(c); err != nil {
			return c, err
		}
		// el carrito pudo cambiar entre la lectura y la escritura
		if err := checkAvailable(item, cart.QuantityOf(c.Items, item.Key())+item.Quantity); err != nil {
			return c, err
		}
		c.Items = cart.UpdateCartWithNewItem(c.Items, item)
		c.InventoryUpdated = false
		return c, nil
	})
	if err != nil {
		return nil, uc.passOrBackend(err, "agregar al carrito", sessionID)
	}
	return toCartResponse(updated, uc.taxes, uc.lowStock), nil
}

// UpdateItemQuantity fija la cantidad de la línea index. Cantidades <= 0 eliminan la línea.
// Si la cantidad supera el stock vivo, o el stock no puede leerse, el carrito no cambia.
func (uc *CartUseCase) UpdateItemQuantity(ctx context.Context, sessionID string, index, qty int) (*dto.CartResponse, error) {
	if qty <= 0 {
		return uc.RemoveItem(ctx, sessionID, index)
	}
	current, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, uc.backend(err, "leer carrito", sessionID)
	}
	if index < 0 || index >= len(current.Items) {
		return nil, fmt.Errorf("%w: línea %d fuera de rango", domain.ErrInvalidInput, index)
	}
	target := current.Items[index]

	live, err := uc.stock.LineStock(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		if target.VariantID != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, target.Name)
		}
		return nil, fmt.Errorf("%w: %s ya no existe", domain.ErrNotFound, target.Name)
	}
	if err != nil {
		return nil, uc.backend(err, "leer stock de línea", target.ProductID)
	}
	target = withLiveStock(target, live)
	if err := checkAvailable(target, qty); err != nil {
		return nil, err
	}

	updated, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if err := checkoutIdle(c); err != nil {
			return c, err
		}
		if index >= len(c.Items) || c.Items[index].Key() != target.Key() {
			return c, fmt.Errorf("%w: el carrito cambió, intente de nuevo", domain.ErrInvalidInput)
		}
		items, err := cart.SetQuantity(c.Items, index, qty)
		if err != nil {
			return c, err
		}
		items[index] = withLiveStock(items[index], live)
		c.Items = items
		c.InventoryUpdated = false
		return c, nil
	})
	if err != nil {
		return nil, uc.passOrBackend(err, "actualizar cantidad", sessionID)
	}
	return toCartResponse(updated, uc.taxes, uc.lowStock), nil
}

// RemoveItem elimina la línea index.
func (uc *CartUseCase) RemoveItem(ctx context.Context, sessionID string, index int) (*dto.CartResponse, error) {
	updated, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if err := checkoutIdle(c); err != nil {
			return c, err
		}
		items, err := cart.RemoveAt(c.Items, index)
		if err != nil {
			return c, err
		}
		c.Items = items
		return c, nil
	})
	if err != nil {
		return nil, uc.passOrBackend(err, "eliminar línea", sessionID)
	}
	return toCartResponse(updated, uc.taxes, uc.lowStock), nil
}

// ClearCart descarta el carrito de la sesión.
func (uc *CartUseCase) ClearCart(ctx context.Context, sessionID string) error {
	if err := uc.store.Delete(ctx, sessionID); err != nil {
		return uc.backend(err, "vaciar carrito", sessionID)
	}
	return nil
}

// SetCustomer asocia un cliente existente al carrito; vacío lo desasocia.
func (uc *CartUseCase) SetCustomer(ctx context.Context, sessionID, customerID string) (*dto.CartResponse, error) {
	if customerID != "" {
		customer, err := uc.customers.GetByID(ctx, customerID)
		if err != nil {
			return nil, uc.backend(err, "leer cliente", customerID)
		}
		if customer == nil {
			return nil, domain.ErrNotFound
		}
	}
	updated, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if err := checkoutIdle(c); err != nil {
			return c, err
		}
		c.CustomerID = customerID
		return c, nil
	})
	if err != nil {
		return nil, uc.passOrBackend(err, "asignar cliente", sessionID)
	}
	return toCartResponse(updated, uc.taxes, uc.lowStock), nil
}

// checkoutIdle rechaza cambios mientras otro cobro tiene reclamado el carrito.
func checkoutIdle(c entity.Cart) error {
	if c.CheckoutPending(time.Now().UTC()) {
		return domain.ErrCheckoutInProgress
	}
	return nil
}

// checkAvailable compara la cantidad total pedida contra el stock conocido de la línea.
func checkAvailable(it entity.CartItem, requested int) error {
	stock := it.AvailableStock()
	if stock == nil || requested <= *stock {
		return nil
	}
	return domain.NewStockError(shortageFor(it, requested, *stock))
}

func shortageFor(it entity.CartItem, requested, available int) domain.StockShortage {
	s := domain.StockShortage{
		ProductID: it.ProductID,
		VariantID: it.VariantID,
		Name:      it.Name,
		Requested: requested,
		Available: available,
	}
	if it.Variant != nil {
		s.Variant = it.Variant.Description()
	}
	return s
}

func withLiveStock(it entity.CartItem, live *int) entity.CartItem {
	if it.VariantID != "" && it.Variant != nil {
		v := *it.Variant
		v.StockCount = live
		it.Variant = &v
		return it
	}
	if it.VariantID == "" {
		it.Stock = live
	}
	return it
}

// backend registra el fallo y lo convierte en ErrBackend.
func (uc *CartUseCase) backend(err error, op, id string) error {
	uc.log.Error().Err(err).Str("op", op).Str("id", id).Msg("error de backend en carrito")
	return fmt.Errorf("%w: %s", domain.ErrBackend, op)
}

// passOrBackend deja pasar errores de dominio y convierte el resto en ErrBackend.
func (uc *CartUseCase) passOrBackend(err error, op, id string) error {
	if isDomainError(err) {
		return err
	}
	return uc.backend(err, op, id)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrInsufficientStock, domain.ErrNotFound,
		domain.ErrVariantNotFound, domain.ErrEmptyCart, domain.ErrTabClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
