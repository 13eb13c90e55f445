package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"wholesale-service/models"
	"wholesale-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Mock Order Repository ---

type mockOrderRepo struct {
	mu         sync.Mutex
	orders     map[primitive.ObjectID]*models.Order
	writes     int
	createErrs []error
	applyErr   error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (m *mockOrderRepo) add(o *models.Order) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	m.orders[o.ID] = cloneOrder(o)
	return o
}

func (m *mockOrderRepo) get(id primitive.ObjectID) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneOrder(m.orders[id])
}

func (m *mockOrderRepo) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.orders[o.ID] = cloneOrder(o)
	m.writes++
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *mockOrderRepo) FindByNumber(_ context.Context, number string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockOrderRepo) FindAll(_ context.Context, filter models.OrderFilter, _, _ int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Phone != "" && o.Retailer.Phone != filter.Phone {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) ApplyReview(_ context.Context, id primitive.ObjectID, version int64, change models.ReviewChange) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if o.Version != version {
		return nil, repository.ErrVersionConflict
	}

	reviewedAt := change.ReviewedAt
	o.Status = change.Status
	o.Notes = change.Notes
	o.Items = append([]models.LineItem(nil), change.Items...)
	o.Summary = change.Summary
	o.SizeQuantities = cloneSizeQuantities(change.SizeQuantities)
	o.ReviewHistory = append(o.ReviewHistory, change.Entry)
	o.ReviewedAt = &reviewedAt
	o.UpdatedAt = reviewedAt
	o.Version++
	m.writes++
	return cloneOrder(o), nil
}

func (m *mockOrderRepo) EnsureIndexes(context.Context) error { return nil }

// --- Mock Purchase Order Repository ---

type mockPORepo struct {
	mu        sync.Mutex
	orders    *mockOrderRepo
	pos       map[primitive.ObjectID]*models.PurchaseOrder
	createErr error
}

func newMockPORepo(orders *mockOrderRepo) *mockPORepo {
	return &mockPORepo{orders: orders, pos: make(map[primitive.ObjectID]*models.PurchaseOrder)}
}

func (m *mockPORepo) CreateForOrder(_ context.Context, po *models.PurchaseOrder, orderVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.pos {
		if existing.OrderID == po.OrderID {
			return repository.ErrDuplicate
		}
	}

	m.orders.mu.Lock()
	defer m.orders.mu.Unlock()
	o, ok := m.orders.orders[po.OrderID]
	if !ok || o.Status != models.OrderStatusApproved || o.Version != orderVersion {
		return repository.ErrVersionConflict
	}
	o.Status = models.OrderStatusPOGenerated
	o.Version++

	if po.ID.IsZero() {
		po.ID = primitive.NewObjectID()
	}
	cp := *po
	m.pos[po.ID] = &cp
	return nil
}

func (m *mockPORepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.pos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *po
	return &cp, nil
}

func (m *mockPORepo) FindByOrderID(_ context.Context, orderID primitive.ObjectID) (*models.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, po := range m.pos {
		if po.OrderID == orderID {
			cp := *po
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockPORepo) FindAll(_ context.Context, status models.PurchaseOrderStatus, _, _ int) ([]models.PurchaseOrder, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PurchaseOrder
	for _, po := range m.pos {
		if status == "" || po.Status == status {
			out = append(out, *po)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockPORepo) AdvanceStatus(_ context.Context, id primitive.ObjectID, from, to models.PurchaseOrderStatus, at time.Time) (*models.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.pos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if po.Status != from {
		return nil, repository.ErrVersionConflict
	}
	po.Status = to
	switch to {
	case models.POStatusSent:
		po.SentAt = &at
	case models.POStatusAcknowledged:
		po.AcknowledgedAt = &at
	}
	cp := *po
	return &cp, nil
}

func (m *mockPORepo) DeleteAndRevertOrder(_ context.Context, id primitive.ObjectID) (*models.PurchaseOrder, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.pos[id]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	delete(m.pos, id)

	m.orders.mu.Lock()
	defer m.orders.mu.Unlock()
	o, ok := m.orders.orders[po.OrderID]
	if !ok || o.Status != models.OrderStatusPOGenerated {
		return po, false, nil
	}
	o.Status = models.OrderStatusApproved
	o.Version++
	return po, true, nil
}

func (m *mockPORepo) EnsureIndexes(context.Context) error { return nil }

// --- Mock Catalog Repository ---

type mockCatalogRepo struct {
	mu         sync.Mutex
	catalogs   map[primitive.ObjectID]*models.Catalog
	retailers  map[string]*models.Retailer
	priorities map[string]*models.Priority
	products   map[primitive.ObjectID]*models.Product
	codeLoads  int
	err        error
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		catalogs:   make(map[primitive.ObjectID]*models.Catalog),
		retailers:  make(map[string]*models.Retailer),
		priorities: make(map[string]*models.Priority),
		products:   make(map[primitive.ObjectID]*models.Product),
	}
}

func (m *mockCatalogRepo) FindCatalog(_ context.Context, id primitive.ObjectID) (*models.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.catalogs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockCatalogRepo) FindRetailerByPhone(_ context.Context, phone string) (*models.Retailer, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.retailers[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (m *mockCatalogRepo) FindPriority(_ context.Context, name string) (*models.Priority, error) {
	p, ok := m.priorities[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalogRepo) FindProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) FindProductsByItemCodes(_ context.Context, codes []string) ([]models.Product, error) {
	m.mu.Lock()
	m.codeLoads++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []models.Product
	for _, p := range m.products {
		if want[p.ItemCode] {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- Mock SNS Publisher ---

type mockSNSPublisher struct {
	mu         sync.Mutex
	eventTypes []string
	messages   [][]byte
}

func (m *mockSNSPublisher) Publish(_ context.Context, _ string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockSNSPublisher) PublishWithType(_ context.Context, _ string, eventType string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventTypes = append(m.eventTypes, eventType)
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockSNSPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.eventTypes...)
}

// --- Mock Document Store ---

type mockDocumentStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{objects: make(map[string][]byte)}
}

func (m *mockDocumentStore) Put(_ context.Context, key, _ string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = body
	return nil
}

func (m *mockDocumentStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://docs.example.com/" + key + "?signature=test", nil
}

func (m *mockDocumentStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *mockDocumentStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// --- Helpers ---

const testTopic = "arn:aws:sns:us-east-1:000000000000:wholesale-events"

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func cloneOrder(o *models.Order) *models.Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = make([]models.LineItem, len(o.Items))
	for i, item := range o.Items {
		item.SizeQuantities = item.SizeQuantities.Clone()
		cp.Items[i] = item
	}
	cp.SizeQuantities = cloneSizeQuantities(o.SizeQuantities)
	cp.ReviewHistory = make([]models.ReviewHistoryEntry, len(o.ReviewHistory))
	for i, e := range o.ReviewHistory {
		e.SizeQuantities = cloneSizeQuantities(e.SizeQuantities)
		cp.ReviewHistory[i] = e
	}
	return &cp
}

func cloneSizeQuantities(sq models.SizeQuantities) models.SizeQuantities {
	if sq == nil {
		return nil
	}
	out := make(models.SizeQuantities, len(sq))
	for k, v := range sq {
		out[k] = v.Clone()
	}
	return out
}

func breakdown(s, m, l, xl, xxl int) models.SizeBreakdown {
	return models.SizeBreakdown{"S": s, "M": m, "L": l, "XL": xl, "XXL": xxl}
}

func lineItem(productID, code, name string, sets int, pricePerSet float64) models.LineItem {
	return models.LineItem{
		ProductID:      models.RawProductRef(productID),
		ItemCode:       code,
		ItemName:       name,
		PricePerSet:    pricePerSet,
		PricePerPiece:  pricePerSet / models.PiecesPerSet,
		Quantity:       sets,
		TotalSets:      sets,
		TotalPcs:       sets * models.PiecesPerSet,
		TotalAmount:    float64(sets) * pricePerSet,
		SizeQuantities: breakdown(sets, sets, sets, sets, sets),
	}
}

func submittedOrder(items ...models.LineItem) *models.Order {
	now := time.Now().UTC()
	var amount float64
	var sets, pcs int
	for _, it := range items {
		amount += it.TotalAmount
		sets += it.TotalSets
		pcs += it.TotalPcs
	}
	return &models.Order{
		OrderNumber: "EBA-260101-" + primitive.NewObjectID().Hex()[20:],
		Status:      models.OrderStatusSubmitted,
		Retailer: models.RetailerSnapshot{
			BusinessName: "Sharma Textiles",
			Phone:        "9876543210",
		},
		Items: items,
		Summary: models.OrderSummary{
			TotalPcs:        pcs,
			TotalSets:       sets,
			TotalStyles:     len(items),
			AmountBeforeTax: amount,
			AmountAfterTax:  amount,
		},
		ReviewHistory: []models.ReviewHistoryEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
}
