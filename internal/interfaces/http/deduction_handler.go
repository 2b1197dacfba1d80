package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/deduction"
	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
)

// DeductionHandler maneja las peticiones HTTP de explosión de ventas (protegido).
type DeductionHandler struct {
	orchestrator *deduction.Orchestrator
	// allowNegativeDefault aplica cuando la venta no trae allow_negative_stock
	// (DEDUCTION_ALLOW_NEGATIVE_STOCK); un valor explícito en el body gana.
	allowNegativeDefault bool
}

// NewDeductionHandler construye el handler.
func NewDeductionHandler(orchestrator *deduction.Orchestrator, allowNegativeDefault bool) *DeductionHandler {
	return &DeductionHandler{orchestrator: orchestrator, allowNegativeDefault: allowNegativeDefault}
}

// ProcessSale godoc
// @Summary      Explotar una venta contra el inventario
// @Description  Descuenta los insumos de cada línea según su receta; las líneas fallidas no abortan las demás.
// @Tags         deductions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessSaleRequest  true  "sale_reference, lines, allow_negative_stock"
// @Success      200   {object}  dto.BatchResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/deductions/sale [post]
func (h *DeductionHandler) ProcessSale(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.ProcessSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SaleReference == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sale_reference y lines son obligatorios"})
	}

	lines := make([]deduction.SaleLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, deduction.SaleLine{ProductID: l.ProductID, QuantitySold: l.Quantity})
	}
	allowNegative := h.allowNegativeDefault
	if in.AllowNegativeStock != nil {
		allowNegative = *in.AllowNegativeStock
	}
	batch := h.orchestrator.ProcessSale(c.UserContext(), deduction.SaleInput{
		SaleReference:      in.SaleReference,
		Lines:              lines,
		AllowNegativeStock: allowNegative,
		ProcessedBy:        userID,
	})
	// El batch siempre responde 200: el colaborador de ventas decide con
	// success/warnings/errors si la venta quedó procesada, parcial o fallida.
	return c.Status(fiber.StatusOK).JSON(dto.FromBatchResult(batch))
}

// Preview godoc
// @Summary      Vista previa de explosión (dry-run)
// @Description  Devuelve las mismas cantidades por insumo que produciría la ejecución real, sin mutar stock.
// @Tags         deductions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PreviewRequest  true  "product_id, quantity"
// @Success      200   {array}   dto.PreviewLineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/deductions/preview [post]
func (h *DeductionHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines, err := h.orchestrator.PreviewDeduction(c.UserContext(), in.ProductID, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecipeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NO_RECIPE", Message: "el producto no tiene receta activa"})
		case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidYield):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusOK).JSON(dto.FromPreview(lines))
}
