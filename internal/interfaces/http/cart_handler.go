package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/pos"
)

// CartHandler carrito de caja, cobro y cuentas abiertas (protegido).
// :session identifica la sesión de venta de la caja.
type CartHandler struct {
	cart     *pos.CartUseCase
	checkout *pos.CheckoutUseCase
	tabs     *pos.TabUseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(cart *pos.CartUseCase, checkout *pos.CheckoutUseCase, tabs *pos.TabUseCase) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout, tabs: tabs}
}

// Get godoc
// @Summary      Carrito con totales
// @Tags         carts
// @Security     Bearer
// @Produce      json
// @Param        session  path  string  true  "Sesión de caja"
// @Success      200  {object}  dto.CartResponse
// @Router       /api/carts/{session} [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.cart.GetCart(c.UserContext(), c.Params("session"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto o variante al carrito
// @Tags         carts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        session  path  string  true  "Sesión de caja"
// @Param        body  body  dto.AddToCartRequest  true  "Producto, variante y cantidad"
// @Success      200  {object}  dto.CartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/carts/{session}/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddToCartRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id es requerido"})
	}
	out, err := h.cart.AddToCart(c.UserContext(), c.Params("session"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateItem PUT /api/carts/:session/items/:index
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	index, ok := lineIndex(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice de línea inválido"})
	}
	var in dto.UpdateQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.cart.UpdateItemQuantity(c.UserContext(), c.Params("session"), index, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RemoveItem DELETE /api/carts/:session/items/:index
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	index, ok := lineIndex(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice de línea inválido"})
	}
	out, err := h.cart.RemoveItem(c.UserContext(), c.Params("session"), index)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Clear DELETE /api/carts/:session
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.cart.ClearCart(c.UserContext(), c.Params("session")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetCustomer PUT /api/carts/:session/customer
func (h *CartHandler) SetCustomer(c *fiber.Ctx) error {
	var in dto.SetCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.cart.SetCustomer(c.UserContext(), c.Params("session"), in.CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Checkout godoc
// @Summary      Cobrar el carrito
// @Description  Valida todas las líneas contra el stock vivo, registra la venta y descuenta inventario en una transacción.
// @Tags         carts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        session  path  string  true  "Sesión de caja"
// @Param        body  body  dto.CheckoutRequest  true  "Pago"
// @Success      201  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/carts/{session}/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.checkout.ProcessTransaction(c.UserContext(), c.Params("session"), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SaveTab POST /api/carts/:session/tabs
func (h *CartHandler) SaveTab(c *fiber.Ctx) error {
	var in dto.SaveTabRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.tabs.SaveAsTab(c.UserContext(), c.Params("session"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// LoadTab POST /api/carts/:session/tabs/:tabID/load
func (h *CartHandler) LoadTab(c *fiber.Ctx) error {
	out, err := h.tabs.LoadTab(c.UserContext(), c.Params("session"), c.Params("tabID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListTabs GET /api/tabs
func (h *CartHandler) ListTabs(c *fiber.Ctx) error {
	out, err := h.tabs.ListOpen(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetTransaction GET /api/transactions/:id
func (h *CartHandler) GetTransaction(c *fiber.Ctx) error {
	out, err := h.checkout.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt GET /api/transactions/:id/receipt
func (h *CartHandler) Receipt(c *fiber.Ctx) error {
	pdf, err := h.checkout.RenderReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="ticket-`+c.Params("id")+`.pdf"`)
	return c.Send(pdf)
}

func lineIndex(c *fiber.Ctx) (int, bool) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
