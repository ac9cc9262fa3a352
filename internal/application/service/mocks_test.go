package service

import (
	"context"
	"sync"

	"github.com/garyjia/leave-approval/internal/domain/entity"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockEmployeeRepo struct {
	createFunc     func(ctx context.Context, emp *entity.Employee) error
	getByIDFunc    func(ctx context.Context, id int64) (*entity.Employee, error)
	getManagerFunc func(ctx context.Context) (*entity.Employee, error)
}

func (m *mockEmployeeRepo) Create(ctx context.Context, emp *entity.Employee) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, emp)
	}
	emp.ID = 1
	return nil
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) GetManager(ctx context.Context) (*entity.Employee, error) {
	if m.getManagerFunc != nil {
		return m.getManagerFunc(ctx)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) AdjustBalance(ctx context.Context, id int64, delta int) (bool, error) {
	return true, nil
}

func (m *mockEmployeeRepo) List(ctx context.Context) ([]*entity.Employee, error) {
	return nil, nil
}

type mockHeadRepo struct {
	heads     map[string]*entity.DepartmentHead
	upsertErr error
}

func newMockHeadRepo() *mockHeadRepo {
	return &mockHeadRepo{heads: map[string]*entity.DepartmentHead{}}
}

func (m *mockHeadRepo) Upsert(ctx context.Context, head *entity.DepartmentHead) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	head.ID = int64(len(m.heads) + 1)
	m.heads[head.Department] = head
	return nil
}

func (m *mockHeadRepo) GetByDepartment(ctx context.Context, department string) (*entity.DepartmentHead, error) {
	return m.heads[department], nil
}

func (m *mockHeadRepo) Delete(ctx context.Context, department string) (bool, error) {
	_, ok := m.heads[department]
	delete(m.heads, department)
	return ok, nil
}

func (m *mockHeadRepo) List(ctx context.Context) ([]*entity.DepartmentHead, error) {
	out := make([]*entity.DepartmentHead, 0, len(m.heads))
	for _, h := range m.heads {
		out = append(out, h)
	}
	return out, nil
}

type mockMessageSender struct {
	sendMessageFunc func(ctx context.Context, address string, content string) error
	sent            []string
}

func (m *mockMessageSender) SendMessage(ctx context.Context, address string, content string) error {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, address, content)
	}
	m.sent = append(m.sent, address+"|"+content)
	return nil
}
