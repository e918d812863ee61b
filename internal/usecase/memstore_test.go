package usecase

import (
	"context"
	"sort"
	"sync"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"
)

// =====================
// テスト用のインメモリDB
// =====================

// memStore は注文確定のテストで使うDBの代わり。
// fail* に値を入れるとその操作だけ失敗させられる。
type memStore struct {
	mu sync.Mutex

	nextOrderID   int64
	nextItemID    int64
	nextProductID int64

	orders     []model.Order
	items      []model.OrderItem
	products   []model.Product
	categories []model.Category

	failOrderCreate   error
	failItemsBulk     error
	failProductFind   map[string]error
	failProductCreate map[string]error
	// 作成直前に別リクエストが同じ参照を作った状態にする
	racingRefs map[string]bool

	productCreates int
}

func newMemStore() *memStore {
	return &memStore{
		failProductFind:   map[string]error{},
		failProductCreate: map[string]error{},
		racingRefs:        map[string]bool{},
	}
}

func (s *memStore) Orders() repo.OrderRepository         { return memOrders{s} }
func (s *memStore) OrderItems() repo.OrderItemRepository { return memOrderItems{s} }
func (s *memStore) Products() repo.ProductRepository     { return memProducts{s} }
func (s *memStore) Categories() repo.CategoryRepository  { return memCategories{s} }

func (s *memStore) addCategory(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, model.Category{ID: id, Name: name})
}

func (s *memStore) addProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	p.ID = s.nextProductID
	s.products = append(s.products, p)
	return p
}

func (s *memStore) snapshot() (orders []model.Order, items []model.OrderItem, products []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders = append([]model.Order{}, s.orders...)
	items = append([]model.OrderItem{}, s.items...)
	products = append([]model.Product{}, s.products...)
	return
}

func (s *memStore) productByRef(ref string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ExternalRef != nil && *p.ExternalRef == ref {
			return p, true
		}
	}
	return model.Product{}, false
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o model.Order) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOrderCreate != nil {
		return 0, r.s.failOrderCreate
	}
	r.s.nextOrderID++
	o.ID = r.s.nextOrderID
	r.s.orders = append(r.s.orders, o)
	return o.ID, nil
}

func (r memOrders) FindByID(_ context.Context, orderID int64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r memOrders) ListByUserID(_ context.Context, userID string, page int, limit int) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return []model.Order{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

type memOrderItems struct{ s *memStore }

func (r memOrderItems) CreateBulk(_ context.Context, orderID int64, items []model.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failItemsBulk != nil {
		return r.s.failItemsBulk
	}
	for _, it := range items {
		r.s.nextItemID++
		it.ID = r.s.nextItemID
		it.OrderID = orderID
		r.s.items = append(r.s.items, it)
	}
	return nil
}

func (r memOrderItems) ListByOrderID(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.OrderItem{}
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

type memProducts struct{ s *memStore }

func (r memProducts) FindByExternalRef(_ context.Context, ref string) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failProductFind[ref]; err != nil {
		return model.Product{}, err
	}
	for _, p := range r.s.products {
		if p.ExternalRef != nil && *p.ExternalRef == ref {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r memProducts) CreateIfAbsent(_ context.Context, p model.Product) (model.Product, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ref := *p.ExternalRef
	if err := r.s.failProductCreate[ref]; err != nil {
		return model.Product{}, false, err
	}
	if r.s.racingRefs[ref] {
		// 別リクエストが先に作った
		delete(r.s.racingRefs, ref)
		r.s.nextProductID++
		winner := p
		winner.ID = r.s.nextProductID
		r.s.products = append(r.s.products, winner)
		return model.Product{}, false, nil
	}
	for _, existing := range r.s.products {
		if existing.ExternalRef != nil && *existing.ExternalRef == ref {
			return model.Product{}, false, nil
		}
	}
	r.s.productCreates++
	r.s.nextProductID++
	p.ID = r.s.nextProductID
	r.s.products = append(r.s.products, p)
	return p, true, nil
}

type memCategories struct{ s *memStore }

func (r memCategories) FindByName(_ context.Context, name string) (model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}

func (r memCategories) FindFirst(_ context.Context) (model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.categories) == 0 {
		return model.Category{}, repo.ErrNotFound
	}
	first := r.s.categories[0]
	for _, c := range r.s.categories[1:] {
		if c.ID < first.ID {
			first = c
		}
	}
	return first, nil
}

// 自動commit（書いた行は失敗しても残る）
type memAutoCommit struct{ s *memStore }

func (m memAutoCommit) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.s)
}

// 失敗したら全部巻き戻す
type memAtomic struct{ s *memStore }

func (m memAtomic) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	m.s.mu.Lock()
	orders := append([]model.Order{}, m.s.orders...)
	items := append([]model.OrderItem{}, m.s.items...)
	products := append([]model.Product{}, m.s.products...)
	m.s.mu.Unlock()

	if err := fn(m.s); err != nil {
		m.s.mu.Lock()
		m.s.orders, m.s.items, m.s.products = orders, items, products
		m.s.mu.Unlock()
		return err
	}
	return nil
}

// =====================
// cart_items / 通知 / カートの代わり
// =====================

type memCartRows struct {
	mu        sync.Mutex
	rows      map[string][]model.CartItem
	deleteErr error
	deletes   int
}

func newMemCartRows() *memCartRows {
	return &memCartRows{rows: map[string][]model.CartItem{}}
}

func (m *memCartRows) ListByUserID(_ context.Context, userID string) ([]model.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CartItem{}, m.rows[userID]...), nil
}

func (m *memCartRows) ReplaceForUser(_ context.Context, userID string, items []model.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = append([]model.CartItem{}, items...)
	return nil
}

func (m *memCartRows) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, userID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	orders []model.Order
	items  [][]model.OrderItem
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order model.Order, items []model.OrderItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, order)
	p.items = append(p.items, items)
	return nil
}

// Clearだけ失敗するカート
type stuckCart struct {
	lines []model.CartLine
	err   error
}

func (c *stuckCart) Lines(_ context.Context) ([]model.CartLine, error) {
	return append([]model.CartLine{}, c.lines...), nil
}

func (c *stuckCart) Clear(_ context.Context) error {
	return c.err
}
