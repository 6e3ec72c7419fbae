package service

import (
	"context"
	"testing"

	"dealership/internal/apperror"
	"dealership/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expenseEnv struct {
	store *memStore
	svc   ExpenseService
}

func newExpenseEnv() *expenseEnv {
	store := newMemStore()
	return &expenseEnv{
		store: store,
		svc: NewExpenseService(
			&fakeExpenseRepo{store: store},
			&fakeVehicleRepo{store: store},
			&fakeLookupRepo{store: store},
			&fakeAuditRepo{store: store},
			&fakeTxManager{store: store},
		),
	}
}

func (e *expenseEnv) addVehicle() uuid.UUID {
	id := uuid.New()
	e.store.vehicles[id] = model.Vehicle{
		ID:            id,
		Make:          "VW",
		Model:         "Gol",
		Year:          2017,
		Plate:         "GOL1A23",
		PurchasePrice: dec("25000.00"),
		ListPrice:     dec("31000.00"),
		Status:        model.VehicleAvailable,
	}
	return id
}

func (e *expenseEnv) addExpenseType(active bool) uuid.UUID {
	id := uuid.New()
	e.store.expenseTypes[id] = model.ExpenseType{ID: id, Name: "Bodywork", IsActive: active}
	return id
}

func TestCreateExpense_Success(t *testing.T) {
	env := newExpenseEnv()
	vehicleID := env.addVehicle()
	typeID := env.addExpenseType(true)

	resp, err := env.svc.CreateExpense(context.Background(), uuid.NewString(), vehicleID.String(), CreateExpenseRequest{
		TypeID:      typeID.String(),
		Amount:      "350.00",
		Description: "Rear bumper repaint",
		ExpenseDate: "2026-08-10",
	})
	require.NoError(t, err)

	assert.Equal(t, "350.00", resp.Amount)
	assert.Len(t, env.store.expenses, 1)
	require.Len(t, env.store.audits, 1)
	assert.Equal(t, model.ActionCreateExpense, env.store.audits[0].Action)
}

func TestCreateExpense_UnknownVehicle(t *testing.T) {
	env := newExpenseEnv()
	typeID := env.addExpenseType(true)

	_, err := env.svc.CreateExpense(context.Background(), uuid.NewString(), uuid.NewString(), CreateExpenseRequest{
		TypeID:      typeID.String(),
		Amount:      "350.00",
		Description: "Rear bumper repaint",
		ExpenseDate: "2026-08-10",
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Empty(t, env.store.expenses)
}

func TestCreateExpense_DeactivatedTypeConflicts(t *testing.T) {
	env := newExpenseEnv()
	vehicleID := env.addVehicle()
	typeID := env.addExpenseType(false)

	_, err := env.svc.CreateExpense(context.Background(), uuid.NewString(), vehicleID.String(), CreateExpenseRequest{
		TypeID:      typeID.String(),
		Amount:      "350.00",
		Description: "Rear bumper repaint",
		ExpenseDate: "2026-08-10",
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Empty(t, env.store.expenses)
	assert.Empty(t, env.store.audits)
}

func TestDeleteExpenseType_InUse(t *testing.T) {
	store := newMemStore()
	lookupSvc := NewLookupService(
		&fakeLookupRepo{store: store},
		&fakeExpenseRepo{store: store},
		&fakeSaleRepo{store: store},
	)

	typeID := uuid.New()
	store.expenseTypes[typeID] = model.ExpenseType{ID: typeID, Name: "Mechanical", IsActive: true}
	expenseID := uuid.New()
	store.expenses[expenseID] = model.Expense{ID: expenseID, VehicleID: uuid.New(), TypeID: typeID, Amount: dec("100.00")}

	err := lookupSvc.DeleteExpenseType(context.Background(), typeID.String())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInUse))
	assert.Contains(t, err.Error(), "still in use")

	// Removing the referencing expense unblocks deletion.
	delete(store.expenses, expenseID)
	require.NoError(t, lookupSvc.DeleteExpenseType(context.Background(), typeID.String()))
	assert.Empty(t, store.expenseTypes)
}
