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

type vehicleEnv struct {
	store       *memStore
	vehicleRepo *fakeVehicleRepo
	imageRepo   *fakeImageRepo
	svc         VehicleService
}

func newVehicleEnv() *vehicleEnv {
	store := newMemStore()
	vehicleRepo := &fakeVehicleRepo{store: store}
	imageRepo := &fakeImageRepo{store: store}
	expenseRepo := &fakeExpenseRepo{store: store}
	saleRepo := &fakeSaleRepo{store: store}
	finance := NewFinanceService(vehicleRepo, expenseRepo, saleRepo)

	return &vehicleEnv{
		store:       store,
		vehicleRepo: vehicleRepo,
		imageRepo:   imageRepo,
		svc: NewVehicleService(
			vehicleRepo, imageRepo, expenseRepo, saleRepo,
			&fakeAuditRepo{store: store}, &fakeTxManager{store: store}, finance, nil,
		),
	}
}

func (e *vehicleEnv) addVehicle(status string) uuid.UUID {
	id := uuid.New()
	e.store.vehicles[id] = model.Vehicle{
		ID:            id,
		Make:          "Ford",
		Model:         "Fiesta",
		Year:          2018,
		Plate:         "QWE4R56",
		PurchasePrice: dec("15000.00"),
		ListPrice:     dec("19000.00"),
		Status:        status,
	}
	return id
}

func (e *vehicleEnv) addImage(vehicleID uuid.UUID, principal bool) uuid.UUID {
	id := uuid.New()
	e.store.images[id] = model.VehicleImage{
		ID:        id,
		VehicleID: vehicleID,
		URL:       "https://cdn.example.com/" + id.String() + ".jpg",
		Principal: principal,
	}
	return id
}

func (e *vehicleEnv) principalIDs(vehicleID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for id, img := range e.store.images {
		if img.VehicleID == vehicleID && img.Principal {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestCreateVehicle_FirstIntakeImageIsPrincipal(t *testing.T) {
	env := newVehicleEnv()

	resp, err := env.svc.CreateVehicle(context.Background(), uuid.NewString(), CreateVehicleRequest{
		Make:          "Fiat",
		Model:         "Argo",
		Year:          2021,
		Plate:         "BRA2E19",
		PurchasePrice: "42000.00",
		ListPrice:     "52000.00",
		PurchaseDate:  "2026-07-01",
		ImageURLs:     []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.VehicleAvailable, resp.Status)

	vehicleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.Len(t, env.principalIDs(vehicleID), 1)
}

func TestAddImages_FirstBecomesPrincipalOnlyWhenNoneExists(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)

	images, err := env.svc.AddImages(context.Background(), vehicleID.String(), AddImagesRequest{
		Images: []ImagePayload{{URL: "https://cdn.example.com/1.jpg"}, {URL: "https://cdn.example.com/2.jpg"}},
	})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].Principal)
	assert.False(t, images[1].Principal)

	// A principal already exists, later uploads never steal the flag.
	more, err := env.svc.AddImages(context.Background(), vehicleID.String(), AddImagesRequest{
		Images: []ImagePayload{{URL: "https://cdn.example.com/3.jpg"}},
	})
	require.NoError(t, err)
	assert.False(t, more[0].Principal)
	assert.Len(t, env.principalIDs(vehicleID), 1)
}

func TestMarkPrincipalImage_ExactlyOneSurvives(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	first := env.addImage(vehicleID, true)
	second := env.addImage(vehicleID, false)

	require.NoError(t, env.svc.MarkPrincipalImage(context.Background(), vehicleID.String(), second.String()))

	principals := env.principalIDs(vehicleID)
	require.Len(t, principals, 1)
	assert.Equal(t, second, principals[0])
	assert.False(t, env.store.images[first].Principal)
}

func TestMarkPrincipalImage_Idempotent(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	env.addImage(vehicleID, false)
	target := env.addImage(vehicleID, true)

	require.NoError(t, env.svc.MarkPrincipalImage(context.Background(), vehicleID.String(), target.String()))
	require.NoError(t, env.svc.MarkPrincipalImage(context.Background(), vehicleID.String(), target.String()))

	principals := env.principalIDs(vehicleID)
	require.Len(t, principals, 1)
	assert.Equal(t, target, principals[0])
}

func TestMarkPrincipalImage_WrongVehicleRejected(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)
	otherID := env.addVehicle(model.VehicleAvailable)
	image := env.addImage(otherID, true)

	err := env.svc.MarkPrincipalImage(context.Background(), vehicleID.String(), image.String())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestChangeStatus_MaintenanceRoundTrip(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)

	resp, err := env.svc.ChangeStatus(context.Background(), uuid.NewString(), vehicleID.String(), model.VehicleInMaintenance)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleInMaintenance, resp.Status)

	resp, err = env.svc.ChangeStatus(context.Background(), uuid.NewString(), vehicleID.String(), model.VehicleAvailable)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleAvailable, resp.Status)
}

func TestChangeStatus_SoldIsTerminal(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleSold)

	_, err := env.svc.ChangeStatus(context.Background(), uuid.NewString(), vehicleID.String(), model.VehicleAvailable)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, model.VehicleSold, env.store.vehicles[vehicleID].Status)
}

func TestChangeStatus_RejectsSoldAsTarget(t *testing.T) {
	env := newVehicleEnv()
	vehicleID := env.addVehicle(model.VehicleAvailable)

	// SOLD is only entered through sale settlement.
	_, err := env.svc.ChangeStatus(context.Background(), uuid.NewString(), vehicleID.String(), model.VehicleSold)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestCreateVehicle_RejectsNegativePrices(t *testing.T) {
	env := newVehicleEnv()

	_, err := env.svc.CreateVehicle(context.Background(), uuid.NewString(), CreateVehicleRequest{
		Make:          "Fiat",
		Model:         "Argo",
		Year:          2021,
		Plate:         "BRA2E19",
		PurchasePrice: "-1.00",
		ListPrice:     "52000.00",
		PurchaseDate:  "2026-07-01",
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, env.store.vehicles)
}
