package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP de productos, variantes y stock (protegido).
type ProductHandler struct {
	products *usecase.ProductUseCase
	variants *usecase.VariantUseCase
	stock    *usecase.StockUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(products *usecase.ProductUseCase, variants *usecase.VariantUseCase, stock *usecase.StockUseCase) *ProductHandler {
	return &ProductHandler{products: products, variants: variants, stock: stock}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductInput  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.products.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID (con variantes)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.products.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := pageFrom(c)
	out, err := h.products.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.ProductInput  true  "Datos del producto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.products.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AdjustStock PUT /api/products/:id/stock
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.AdjustProductStock(c.UserContext(), c.Params("id"), GetUserID(c), in.Stock)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements GET /api/products/:id/movements
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	page := pageFrom(c)
	out, err := h.stock.History(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListVariants GET /api/products/:id/variants
func (h *ProductHandler) ListVariants(c *fiber.Ctx) error {
	out, err := h.variants.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateVariant POST /api/products/:id/variants
func (h *ProductHandler) CreateVariant(c *fiber.Ctx) error {
	var in dto.VariantInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.variants.Create(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateVariant PUT /api/variants/:id
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	var in dto.VariantInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.variants.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AdjustVariantStock PUT /api/variants/:id/stock
func (h *ProductHandler) AdjustVariantStock(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.AdjustVariantStock(c.UserContext(), c.Params("id"), GetUserID(c), in.Stock)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
