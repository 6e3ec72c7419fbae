package service

import (
	"context"
	"errors"
	"testing"

	"dealership/internal/apperror"
	"dealership/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleEnv struct {
	store        *memStore
	vehicleRepo  *fakeVehicleRepo
	saleRepo     *fakeSaleRepo
	customerRepo *fakeCustomerRepo
	lookupRepo   *fakeLookupRepo
	auditRepo    *fakeAuditRepo
	svc          SaleService
}

func newSaleEnv() *saleEnv {
	store := newMemStore()
	env := &saleEnv{
		store:        store,
		vehicleRepo:  &fakeVehicleRepo{store: store},
		saleRepo:     &fakeSaleRepo{store: store},
		customerRepo: &fakeCustomerRepo{store: store},
		lookupRepo:   &fakeLookupRepo{store: store},
		auditRepo:    &fakeAuditRepo{store: store},
	}
	env.svc = NewSaleService(
		env.saleRepo, env.vehicleRepo, env.customerRepo,
		env.lookupRepo, env.auditRepo, &fakeTxManager{store: store}, nil,
	)
	return env
}

func (e *saleEnv) addVehicle(status string) uuid.UUID {
	id := uuid.New()
	e.store.vehicles[id] = model.Vehicle{
		ID:            id,
		Make:          "Honda",
		Model:         "Civic",
		Year:          2020,
		Plate:         "XYZ9K88",
		PurchasePrice: dec("20000.00"),
		ListPrice:     dec("27000.00"),
		Status:        status,
	}
	return id
}

func (e *saleEnv) addCustomer() uuid.UUID {
	id := uuid.New()
	e.store.customers[id] = model.Customer{ID: id, Name: "Jordan Reyes", Phone: "555-0101"}
	return id
}

func (e *saleEnv) addPaymentMethod(active bool) uuid.UUID {
	id := uuid.New()
	e.store.paymentMethods[id] = model.PaymentMethod{ID: id, Name: "Cash", IsActive: active}
	return id
}

func (e *saleEnv) settleRequest(vehicleID, customerID, methodID uuid.UUID) SettleSaleRequest {
	return SettleSaleRequest{
		VehicleID:       vehicleID.String(),
		CustomerID:      customerID.String(),
		PaymentMethodID: methodID.String(),
		SalePrice:       "30000.00",
		SaleDate:        "2026-08-15",
	}
}

func TestSettleSale_Success(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(true)

	resp, err := env.svc.SettleSale(context.Background(), uuid.NewString(), env.settleRequest(vehicleID, customerID, methodID))
	require.NoError(t, err)

	assert.Equal(t, "30000.00", resp.SalePrice)
	assert.Equal(t, "30000.00", resp.NetAmountDue)
	assert.Equal(t, "XYZ9K88", resp.VehiclePlate)

	assert.Equal(t, model.VehicleSold, env.store.vehicles[vehicleID].Status)
	assert.Len(t, env.store.sales, 1)
	require.Len(t, env.store.audits, 1)
	assert.Equal(t, model.ActionSettleSale, env.store.audits[0].Action)
}

func TestSettleSale_NetAmountDueSubtractsTradeIn(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	tradeInID := env.addVehicle(model.VehicleInMaintenance)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(true)

	req := env.settleRequest(vehicleID, customerID, methodID)
	req.TradeInVehicleID = tradeInID.String()
	req.TradeInValue = "5000.00"

	resp, err := env.svc.SettleSale(context.Background(), uuid.NewString(), req)
	require.NoError(t, err)

	assert.Equal(t, "25000.00", resp.NetAmountDue)
	// The surrendered vehicle enters stock regardless of prior status.
	assert.Equal(t, model.VehicleAvailable, env.store.vehicles[tradeInID].Status)
}

func TestSettleSale_AlreadySoldConflicts(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleSold)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(true)

	_, err := env.svc.SettleSale(context.Background(), uuid.NewString(), env.settleRequest(vehicleID, customerID, methodID))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Empty(t, env.store.sales, "no sale row may survive a rejected settlement")
}

func TestSettleSale_SelfTradeInRejectedBeforeWrites(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(true)

	req := env.settleRequest(vehicleID, customerID, methodID)
	req.TradeInVehicleID = vehicleID.String()
	req.TradeInValue = "5000.00"

	_, err := env.svc.SettleSale(context.Background(), uuid.NewString(), req)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, env.store.sales)
	assert.Equal(t, model.VehicleAvailable, env.store.vehicles[vehicleID].Status)
}

func TestSettleSale_UnknownCustomerNotFound(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	methodID := env.addPaymentMethod(true)

	_, err := env.svc.SettleSale(context.Background(), uuid.NewString(), env.settleRequest(vehicleID, uuid.New(), methodID))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, model.VehicleAvailable, env.store.vehicles[vehicleID].Status)
}

func TestSettleSale_DeactivatedPaymentMethodConflicts(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(false)

	_, err := env.svc.SettleSale(context.Background(), uuid.NewString(), env.settleRequest(vehicleID, customerID, methodID))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestSettleSale_AllOrNothingOnWriteFailure(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(true)

	env.vehicleRepo.failUpdateStatus = errors.New("connection reset")

	_, err := env.svc.SettleSale(context.Background(), uuid.NewString(), env.settleRequest(vehicleID, customerID, methodID))
	require.Error(t, err)

	assert.Empty(t, env.store.sales, "sale insert must roll back with the status flip")
	assert.Empty(t, env.store.audits)
	assert.Equal(t, model.VehicleAvailable, env.store.vehicles[vehicleID].Status)
}

func TestSettleSale_RejectsSubCentPrice(t *testing.T) {
	env := newSaleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	customerID := env.addCustomer()
	methodID := env.addPaymentMethod(true)

	req := env.settleRequest(vehicleID, customerID, methodID)
	req.SalePrice = "30000.123"

	_, err := env.svc.SettleSale(context.Background(), uuid.NewString(), req)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
