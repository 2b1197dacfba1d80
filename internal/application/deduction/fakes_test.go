package deduction_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Dobles en memoria de los puertos de persistencia. El repo de insumos replica
// la semántica del update condicional de postgres (cero filas afectadas si la
// versión leída ya no es la actual) bajo un mutex, para poder ejercitar las
// carreras CAS del ledger sin base de datos.

var errAppendInjected = errors.New("insert en kardex rechazado (inyectado)")
var errUpdateInjected = errors.New("update de stock rechazado (inyectado)")

// ── insumos ───────────────────────────────────────────────────────────────────

type memItemRepo struct {
	mu          sync.Mutex
	items       map[string]*entity.InventoryItem
	updateCalls int

	// onUpdate se invoca antes de cada CAS con el número de llamada (desde 1);
	// sirve para simular un escritor concurrente que gana la carrera.
	onUpdate func(call int)
	// updateErr permite inyectar un fallo de infraestructura en la llamada n.
	updateErr func(call int) error
}

func newMemItemRepo(items ...*entity.InventoryItem) *memItemRepo {
	r := &memItemRepo{items: make(map[string]*entity.InventoryItem)}
	for _, it := range items {
		cp := *it
		r.items[it.ID] = &cp
	}
	return r
}

func (r *memItemRepo) Get(_ context.Context, itemID string) (*entity.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memItemRepo) UpdateStockVersioned(_ context.Context, itemID string, newStock decimal.Decimal, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	r.updateCalls++
	call := r.updateCalls
	onUpdate := r.onUpdate
	updateErr := r.updateErr
	r.mu.Unlock()

	if onUpdate != nil {
		onUpdate(call)
	}
	if updateErr != nil {
		if err := updateErr(call); err != nil {
			return false, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.Version != expectedVersion {
		return false, nil
	}
	it.CurrentStock = newStock
	it.Version++
	it.UpdatedAt = time.Now()
	return true, nil
}

func (r *memItemRepo) ListByBranch(_ context.Context, branchID string, _, _ int) ([]*entity.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InventoryItem
	for _, it := range r.items {
		if it.BranchID == branchID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

// bumpVersion simula un escritor ajeno que mutó el insumo tras nuestra lectura.
func (r *memItemRepo) bumpVersion(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[itemID]; ok {
		it.Version++
	}
}

// setStock escribe el contador por fuera del ledger (para provocar drift).
func (r *memItemRepo) setStock(itemID string, stock decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[itemID]; ok {
		it.CurrentStock = stock
	}
}

func (r *memItemRepo) stock(itemID string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[itemID].CurrentStock
}

func (r *memItemRepo) version(itemID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[itemID].Version
}

// ── kardex ────────────────────────────────────────────────────────────────────

type memMovementRepo struct {
	mu        sync.Mutex
	movements []*entity.MovementRecord
	// failCreates hace fallar los próximos n inserts.
	failCreates int
}

func newMemMovementRepo() *memMovementRepo { return &memMovementRepo{} }

func (r *memMovementRepo) Create(_ context.Context, movement *entity.MovementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreates > 0 {
		r.failCreates--
		return errAppendInjected
	}
	cp := *movement
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.MovementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByItem(_ context.Context, itemID string, _, _ *time.Time, _, _ int) ([]*entity.MovementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.MovementRecord
	for _, m := range r.movements {
		if m.ItemID == itemID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) SumByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, m := range r.movements {
		if m.ItemID == itemID {
			total = total.Add(m.Quantity)
		}
	}
	return total, nil
}

func (r *memMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

// ── recetas ───────────────────────────────────────────────────────────────────

type memRecipeRepo struct {
	recipes map[string]*entity.Recipe // por product_id
}

func newMemRecipeRepo(recipes ...*entity.Recipe) *memRecipeRepo {
	r := &memRecipeRepo{recipes: make(map[string]*entity.Recipe)}
	for _, rec := range recipes {
		r.recipes[rec.ProductID] = rec
	}
	return r
}

func (r *memRecipeRepo) GetActiveByProduct(_ context.Context, productID string) (*entity.Recipe, error) {
	rec, ok := r.recipes[productID]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// ── alertas ───────────────────────────────────────────────────────────────────

type memAlertRepo struct {
	mu       sync.Mutex
	active   map[string]*entity.Alert // por item_id
	created  int
	updated  int
	resolved int
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{active: make(map[string]*entity.Alert)}
}

func (r *memAlertRepo) GetActiveByItem(_ context.Context, itemID string) (*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.active[itemID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAlertRepo) Create(_ context.Context, alert *entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[alert.ItemID]; ok {
		// la unicidad por (item, active) se tolera igual que en postgres
		return nil
	}
	cp := *alert
	r.active[alert.ItemID] = &cp
	r.created++
	return nil
}

func (r *memAlertRepo) UpdateActive(_ context.Context, alert *entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *alert
	r.active[alert.ItemID] = &cp
	r.updated++
	return nil
}

func (r *memAlertRepo) ResolveActive(_ context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[itemID]; ok {
		delete(r.active, itemID)
		r.resolved++
	}
	return nil
}

func (r *memAlertRepo) ListActiveByBranch(_ context.Context, branchID string, _, _ int) ([]*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Alert
	for _, a := range r.active {
		if a.BranchID == branchID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAlertRepo) activeFor(itemID string) *entity.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.active[itemID]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// ── builders ──────────────────────────────────────────────────────────────────

const testBranchID = "branch-001"

func buildItem(id string, stock, minimum int64) *entity.InventoryItem {
	return &entity.InventoryItem{
		ID:           id,
		BranchID:     testBranchID,
		Name:         "insumo " + id,
		Unit:         "gramos",
		CurrentStock: decimal.NewFromInt(stock),
		InitialStock: decimal.NewFromInt(stock),
		MinimumStock: decimal.NewFromInt(minimum),
		UnitCost:     decimal.NewFromInt(2),
		Version:      1,
		IsActive:     true,
	}
}

func buildRecipe(productID string, yield int64, ingredients ...entity.RecipeIngredient) *entity.Recipe {
	return &entity.Recipe{
		ID:            "rec-" + productID,
		ProductID:     productID,
		BranchID:      testBranchID,
		YieldQuantity: decimal.NewFromInt(yield),
		Ingredients:   ingredients,
		IsActive:      true,
	}
}

func ingredient(id string, base int64, waste float64) entity.RecipeIngredient {
	return entity.RecipeIngredient{
		IngredientID:    id,
		BaseQuantity:    decimal.NewFromInt(base),
		Unit:            "gramos",
		WastePercentage: decimal.NewFromFloat(waste),
	}
}
