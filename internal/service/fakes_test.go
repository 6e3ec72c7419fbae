package service

import (
	"context"
	"strings"
	"time"

	"dealership/internal/model"
	"dealership/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is a shared in-memory backing store for the fake repositories.
// Struct values are stored by value, so snapshots taken by the fake
// transaction manager are cheap map copies.
type memStore struct {
	vehicles       map[uuid.UUID]model.Vehicle
	sales          map[uuid.UUID]model.Sale
	expenses       map[uuid.UUID]model.Expense
	customers      map[uuid.UUID]model.Customer
	expenseTypes   map[uuid.UUID]model.ExpenseType
	paymentMethods map[uuid.UUID]model.PaymentMethod
	images         map[uuid.UUID]model.VehicleImage
	audits         []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		vehicles:       make(map[uuid.UUID]model.Vehicle),
		sales:          make(map[uuid.UUID]model.Sale),
		expenses:       make(map[uuid.UUID]model.Expense),
		customers:      make(map[uuid.UUID]model.Customer),
		expenseTypes:   make(map[uuid.UUID]model.ExpenseType),
		paymentMethods: make(map[uuid.UUID]model.PaymentMethod),
		images:         make(map[uuid.UUID]model.VehicleImage),
	}
}

func (s *memStore) snapshot() *memStore {
	copyVehicles := make(map[uuid.UUID]model.Vehicle, len(s.vehicles))
	for k, v := range s.vehicles {
		copyVehicles[k] = v
	}
	copySales := make(map[uuid.UUID]model.Sale, len(s.sales))
	for k, v := range s.sales {
		copySales[k] = v
	}
	copyExpenses := make(map[uuid.UUID]model.Expense, len(s.expenses))
	for k, v := range s.expenses {
		copyExpenses[k] = v
	}
	copyCustomers := make(map[uuid.UUID]model.Customer, len(s.customers))
	for k, v := range s.customers {
		copyCustomers[k] = v
	}
	copyTypes := make(map[uuid.UUID]model.ExpenseType, len(s.expenseTypes))
	for k, v := range s.expenseTypes {
		copyTypes[k] = v
	}
	copyMethods := make(map[uuid.UUID]model.PaymentMethod, len(s.paymentMethods))
	for k, v := range s.paymentMethods {
		copyMethods[k] = v
	}
	copyImages := make(map[uuid.UUID]model.VehicleImage, len(s.images))
	for k, v := range s.images {
		copyImages[k] = v
	}
	copyAudits := make([]model.AuditLog, len(s.audits))
	copy(copyAudits, s.audits)

	return &memStore{
		vehicles:       copyVehicles,
		sales:          copySales,
		expenses:       copyExpenses,
		customers:      copyCustomers,
		expenseTypes:   copyTypes,
		paymentMethods: copyMethods,
		images:         copyImages,
		audits:         copyAudits,
	}
}

func (s *memStore) restore(snap *memStore) {
	s.vehicles = snap.vehicles
	s.sales = snap.sales
	s.expenses = snap.expenses
	s.customers = snap.customers
	s.expenseTypes = snap.expenseTypes
	s.paymentMethods = snap.paymentMethods
	s.images = snap.images
	s.audits = snap.audits
}

// fakeTxManager runs the callback directly and rolls the store back to a
// snapshot when it errors, mirroring transactional all-or-nothing semantics.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// --- Vehicles ---

type fakeVehicleRepo struct {
	store *memStore
	// when set, UpdateStatus fails with this error
	failUpdateStatus error
}

func (r *fakeVehicleRepo) Create(_ context.Context, vehicle *model.Vehicle) error {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	r.store.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, vehicle *model.Vehicle) error {
	if _, ok := r.store.vehicles[vehicle.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *fakeVehicleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	if r.failUpdateStatus != nil {
		return r.failUpdateStatus
	}
	vehicle, ok := r.store.vehicles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	vehicle.Status = status
	r.store.vehicles[id] = vehicle
	return nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, ok := r.store.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &vehicle, nil
}

func (r *fakeVehicleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeVehicleRepo) List(_ context.Context, status, search string, _, _ int) ([]model.Vehicle, int64, error) {
	var res []model.Vehicle
	for _, v := range r.store.vehicles {
		if status != "" && v.Status != status {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			hay := strings.ToLower(v.Make + " " + v.Model + " " + v.Plate)
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		res = append(res, v)
	}
	return res, int64(len(res)), nil
}

func (r *fakeVehicleRepo) ListRecentByStatus(_ context.Context, status string, limit int) ([]model.Vehicle, error) {
	var res []model.Vehicle
	for _, v := range r.store.vehicles {
		if v.Status == status {
			res = append(res, v)
		}
		if len(res) == limit {
			break
		}
	}
	return res, nil
}

func (r *fakeVehicleRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, v := range r.store.vehicles {
		if v.Status == status {
			n++
		}
	}
	return n, nil
}

// --- Sales ---

type fakeSaleRepo struct {
	store *memStore
	// when set, Create fails with this error
	failCreate error
}

func matchesFilter(sale model.Sale, filter repository.SaleFilter) bool {
	if filter.From != nil && sale.SaleDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && sale.SaleDate.After(*filter.To) {
		return false
	}
	if filter.VehicleID != nil && sale.VehicleID != *filter.VehicleID {
		return false
	}
	if filter.CustomerID != nil && sale.CustomerID != *filter.CustomerID {
		return false
	}
	return true
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *model.Sale) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.store.sales[sale.ID] = *sale
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.store.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sale, nil
}

func (r *fakeSaleRepo) FindByVehicleID(_ context.Context, vehicleID uuid.UUID) (*model.Sale, error) {
	for _, sale := range r.store.sales {
		if sale.VehicleID == vehicleID {
			return &sale, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) List(ctx context.Context, filter repository.SaleFilter, _, _ int) ([]model.Sale, int64, error) {
	sales, err := r.ListByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return sales, int64(len(sales)), nil
}

func (r *fakeSaleRepo) ListByFilter(_ context.Context, filter repository.SaleFilter) ([]model.Sale, error) {
	var res []model.Sale
	for _, sale := range r.store.sales {
		if matchesFilter(sale, filter) {
			res = append(res, sale)
		}
	}
	return res, nil
}

func (r *fakeSaleRepo) ListRecent(ctx context.Context, filter repository.SaleFilter, limit int) ([]model.Sale, error) {
	sales, err := r.ListByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (r *fakeSaleRepo) SumSalePrices(ctx context.Context, filter repository.SaleFilter) (decimal.Decimal, error) {
	sales, _ := r.ListByFilter(ctx, filter)
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.SalePrice)
	}
	return total, nil
}

func (r *fakeSaleRepo) SumTradeInValues(ctx context.Context, filter repository.SaleFilter) (decimal.Decimal, error) {
	sales, _ := r.ListByFilter(ctx, filter)
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TradeInValue)
	}
	return total, nil
}

func (r *fakeSaleRepo) CountByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	var n int64
	for _, sale := range r.store.sales {
		if sale.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSaleRepo) CountByPaymentMethod(_ context.Context, paymentMethodID uuid.UUID) (int64, error) {
	var n int64
	for _, sale := range r.store.sales {
		if sale.PaymentMethodID == paymentMethodID {
			n++
		}
	}
	return n, nil
}

// --- Expenses ---

type fakeExpenseRepo struct {
	store *memStore
}

func (r *fakeExpenseRepo) Create(_ context.Context, expense *model.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	r.store.expenses[expense.ID] = *expense
	return nil
}

func (r *fakeExpenseRepo) Update(_ context.Context, expense *model.Expense) error {
	if _, ok := r.store.expenses[expense.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.expenses[expense.ID] = *expense
	return nil
}

func (r *fakeExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.expenses, id)
	return nil
}

func (r *fakeExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	expense, ok := r.store.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &expense, nil
}

func (r *fakeExpenseRepo) ListByVehicle(_ context.Context, vehicleID uuid.UUID) ([]model.Expense, error) {
	var res []model.Expense
	for _, e := range r.store.expenses {
		if e.VehicleID == vehicleID {
			res = append(res, e)
		}
	}
	return res, nil
}

func (r *fakeExpenseRepo) SumByVehicle(_ context.Context, vehicleID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.store.expenses {
		if e.VehicleID == vehicleID {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (r *fakeExpenseRepo) SumByDateRange(_ context.Context, from, to *time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.store.expenses {
		if from != nil && e.ExpenseDate.Before(*from) {
			continue
		}
		if to != nil && e.ExpenseDate.After(*to) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (r *fakeExpenseRepo) CountByType(_ context.Context, typeID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.store.expenses {
		if e.TypeID == typeID {
			n++
		}
	}
	return n, nil
}

// --- Customers ---

type fakeCustomerRepo struct {
	store *memStore
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *model.Customer) error {
	if _, ok := r.store.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.customers, id)
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &customer, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, search string, _, _ int) ([]model.Customer, int64, error) {
	var res []model.Customer
	for _, c := range r.store.customers {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		res = append(res, c)
	}
	return res, int64(len(res)), nil
}

// --- Lookups ---

type fakeLookupRepo struct {
	store *memStore
}

func (r *fakeLookupRepo) CreateExpenseType(_ context.Context, t *model.ExpenseType) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.store.expenseTypes[t.ID] = *t
	return nil
}

func (r *fakeLookupRepo) UpdateExpenseType(_ context.Context, t *model.ExpenseType) error {
	if _, ok := r.store.expenseTypes[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.expenseTypes[t.ID] = *t
	return nil
}

func (r *fakeLookupRepo) DeleteExpenseType(_ context.Context, id uuid.UUID) error {
	delete(r.store.expenseTypes, id)
	return nil
}

func (r *fakeLookupRepo) FindExpenseTypeByID(_ context.Context, id uuid.UUID) (*model.ExpenseType, error) {
	t, ok := r.store.expenseTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *fakeLookupRepo) ListExpenseTypes(_ context.Context, activeOnly bool) ([]model.ExpenseType, error) {
	var res []model.ExpenseType
	for _, t := range r.store.expenseTypes {
		if activeOnly && !t.IsActive {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

func (r *fakeLookupRepo) CreatePaymentMethod(_ context.Context, m *model.PaymentMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.store.paymentMethods[m.ID] = *m
	return nil
}

func (r *fakeLookupRepo) UpdatePaymentMethod(_ context.Context, m *model.PaymentMethod) error {
	if _, ok := r.store.paymentMethods[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.paymentMethods[m.ID] = *m
	return nil
}

func (r *fakeLookupRepo) DeletePaymentMethod(_ context.Context, id uuid.UUID) error {
	delete(r.store.paymentMethods, id)
	return nil
}

func (r *fakeLookupRepo) FindPaymentMethodByID(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, ok := r.store.paymentMethods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *fakeLookupRepo) ListPaymentMethods(_ context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var res []model.PaymentMethod
	for _, m := range r.store.paymentMethods {
		if activeOnly && !m.IsActive {
			continue
		}
		res = append(res, m)
	}
	return res, nil
}

// --- Images ---

type fakeImageRepo struct {
	store *memStore
}

func (r *fakeImageRepo) CreateBatch(_ context.Context, images []model.VehicleImage) error {
	for i := range images {
		if images[i].ID == uuid.Nil {
			images[i].ID = uuid.New()
		}
		r.store.images[images[i].ID] = images[i]
	}
	return nil
}

func (r *fakeImageRepo) FindByID(_ context.Context, id uuid.UUID) (*model.VehicleImage, error) {
	image, ok := r.store.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &image, nil
}

func (r *fakeImageRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.images, id)
	return nil
}

func (r *fakeImageRepo) CountByVehicle(_ context.Context, vehicleID uuid.UUID) (int64, error) {
	var n int64
	for _, img := range r.store.images {
		if img.VehicleID == vehicleID {
			n++
		}
	}
	return n, nil
}

func (r *fakeImageRepo) HasPrincipal(_ context.Context, vehicleID uuid.UUID) (bool, error) {
	for _, img := range r.store.images {
		if img.VehicleID == vehicleID && img.Principal {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeImageRepo) ClearPrincipal(_ context.Context, vehicleID uuid.UUID) error {
	for id, img := range r.store.images {
		if img.VehicleID == vehicleID && img.Principal {
			img.Principal = false
			r.store.images[id] = img
		}
	}
	return nil
}

func (r *fakeImageRepo) SetPrincipal(_ context.Context, id uuid.UUID) error {
	img, ok := r.store.images[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	img.Principal = true
	r.store.images[id] = img
	return nil
}

// --- Audit ---

type fakeAuditRepo struct {
	store *memStore
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.store.audits, int64(len(r.store.audits)), nil
}
