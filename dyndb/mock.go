package dyndb

import "context"

// MockStore implementa Operations com campos de função (`GetFn`, `CreateFn`,
// etc.) para simular o comportamento do DynamoDB em testes das camadas
// superiores. Funções não definidas retornam valores neutros; GetFn e
// UpdateFn ausentes retornam ErrNotFound.
type MockStore struct {
	GetFn    func(ctx context.Context, r Request) (Item, error)
	CreateFn func(ctx context.Context, r Request) (Item, error)
	UpdateFn func(ctx context.Context, r Request) (Item, error)
	DeleteFn func(ctx context.Context, r Request) error
	QueryFn  func(ctx context.Context, r Request) (Page, error)
	ScanFn   func(ctx context.Context, r Request) (Page, error)
}

var _ Operations = (*MockStore)(nil)

func (m *MockStore) Get(ctx context.Context, r Request) (Item, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, r)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Create(ctx context.Context, r Request) (Item, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return r.Item.Map(), nil
}

func (m *MockStore) Update(ctx context.Context, r Request) (Item, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, r)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Delete(ctx context.Context, r Request) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, r)
	}
	return nil
}

func (m *MockStore) Query(ctx context.Context, r Request) (Page, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, r)
	}
	return Page{Items: []Item{}}, nil
}

func (m *MockStore) Scan(ctx context.Context, r Request) (Page, error) {
	if m.ScanFn != nil {
		return m.ScanFn(ctx, r)
	}
	return Page{Items: []Item{}}, nil
}
