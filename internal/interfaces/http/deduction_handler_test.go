package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/application/deduction"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	apphttp "github.com/jhoicas/kardex-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles mínimos para armar el orquestador real detrás del handler y verificar
// el valor por defecto de allow_negative_stock del servidor frente al body.
// ──────────────────────────────────────────────────────────────────────────────

type saleItemRepo struct {
	mu    sync.Mutex
	items map[string]*entity.InventoryItem
}

func (r *saleItemRepo) Get(_ context.Context, itemID string) (*entity.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *saleItemRepo) UpdateStockVersioned(_ context.Context, itemID string, newStock decimal.Decimal, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.Version != expectedVersion {
		return false, nil
	}
	it.CurrentStock = newStock
	it.Version++
	return true, nil
}

func (r *saleItemRepo) ListByBranch(context.Context, string, int, int) ([]*entity.InventoryItem, error) {
	return nil, nil
}

func (r *saleItemRepo) stock(itemID string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[itemID].CurrentStock
}

type saleMovementRepo struct {
	mu        sync.Mutex
	movements []*entity.MovementRecord
}

func (r *saleMovementRepo) Create(_ context.Context, movement *entity.MovementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *movement
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *saleMovementRepo) GetByID(context.Context, string) (*entity.MovementRecord, error) {
	return nil, nil
}

func (r *saleMovementRepo) ListByItem(context.Context, string, *time.Time, *time.Time, int, int) ([]*entity.MovementRecord, error) {
	return nil, nil
}

func (r *saleMovementRepo) SumByItem(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type saleRecipeRepo struct {
	recipes map[string]*entity.Recipe
}

func (r *saleRecipeRepo) GetActiveByProduct(_ context.Context, productID string) (*entity.Recipe, error) {
	return r.recipes[productID], nil
}

type saleAlertRepo struct{}

func (saleAlertRepo) GetActiveByItem(context.Context, string) (*entity.Alert, error) { return nil, nil }
func (saleAlertRepo) Create(context.Context, *entity.Alert) error                    { return nil }
func (saleAlertRepo) UpdateActive(context.Context, *entity.Alert) error              { return nil }
func (saleAlertRepo) ResolveActive(context.Context, string) error                    { return nil }
func (saleAlertRepo) ListActiveByBranch(context.Context, string, int, int) ([]*entity.Alert, error) {
	return nil, nil
}

// buildSaleApp arma una app con el handler real y un insumo de stock 3 cuya
// receta consume 5 por unidad: sin permiso de stock negativo la venta falla.
func buildSaleApp(allowNegativeDefault bool) (*fiber.App, *saleItemRepo) {
	itemRepo := &saleItemRepo{items: map[string]*entity.InventoryItem{
		"ing-pan": {
			ID:           "ing-pan",
			BranchID:     "branch-001",
			Unit:         "unidades",
			CurrentStock: decimal.NewFromInt(3),
			MinimumStock: decimal.NewFromInt(1),
			UnitCost:     decimal.NewFromInt(2),
			Version:      1,
			IsActive:     true,
		},
	}}
	movRepo := &saleMovementRepo{}
	recipeRepo := &saleRecipeRepo{recipes: map[string]*entity.Recipe{
		"prod-torta": {
			ID:            "rec-torta",
			ProductID:     "prod-torta",
			YieldQuantity: decimal.NewFromInt(1),
			IsActive:      true,
			Ingredients: []entity.RecipeIngredient{{
				IngredientID: "ing-pan",
				BaseQuantity: decimal.NewFromInt(5),
				Unit:         "unidades",
			}},
		},
	}}

	ledger := deduction.NewStockLedger(itemRepo, movRepo)
	resolver := deduction.NewRecipeResolver(recipeRepo)
	alertSvc := alerting.NewService(itemRepo, saleAlertRepo{})
	orch := deduction.NewOrchestrator(resolver, ledger, alertSvc, itemRepo, 0)

	app := fiber.New()
	handler := apphttp.NewDeductionHandler(orch, allowNegativeDefault)
	app.Post("/sale", handler.ProcessSale)
	return app, itemRepo
}

func postSale(t *testing.T, app *fiber.App, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sale", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Con DEDUCTION_ALLOW_NEGATIVE_STOCK activo y un body que no trae el campo,
// la venta aplica el valor por defecto del servidor y deja el stock negativo.
func TestProcessSale_DefaultDeServidorPermiteNegativo(t *testing.T) {
	app, items := buildSaleApp(true)

	out := postSale(t, app, `{"sale_reference":"sale-100","lines":[{"product_id":"prod-torta","quantity":1}]}`)

	assert.Equal(t, true, out["success"])
	assert.True(t, items.stock("ing-pan").Equal(decimal.NewFromInt(-2)),
		"stock esperado -2, dio %s", items.stock("ing-pan"))
}

// Un false explícito en el body gana sobre el default del servidor.
func TestProcessSale_BodyExplicitoGanaAlDefault(t *testing.T) {
	app, items := buildSaleApp(true)

	out := postSale(t, app, `{"sale_reference":"sale-101","allow_negative_stock":false,"lines":[{"product_id":"prod-torta","quantity":1}]}`)

	assert.Equal(t, false, out["success"])
	assert.True(t, items.stock("ing-pan").Equal(decimal.NewFromInt(3)), "el stock no se tocó")
}

// Sin default de servidor ni campo en el body, la venta con stock insuficiente falla.
func TestProcessSale_SinDefaultNiCampoRechaza(t *testing.T) {
	app, items := buildSaleApp(false)

	out := postSale(t, app, `{"sale_reference":"sale-102","lines":[{"product_id":"prod-torta","quantity":1}]}`)

	assert.Equal(t, false, out["success"])
	assert.True(t, items.stock("ing-pan").Equal(decimal.NewFromInt(3)))
}

// Un true explícito habilita el override aunque el servidor lo tenga apagado.
func TestProcessSale_BodyTrueSinDefault(t *testing.T) {
	app, items := buildSaleApp(false)

	out := postSale(t, app, `{"sale_reference":"sale-103","allow_negative_stock":true,"lines":[{"product_id":"prod-torta","quantity":1}]}`)

	assert.Equal(t, true, out["success"])
	assert.True(t, items.stock("ing-pan").Equal(decimal.NewFromInt(-2)))
}
