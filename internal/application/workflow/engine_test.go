package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/garyjia/leave-approval/internal/application/conflict"
	"github.com/garyjia/leave-approval/internal/application/ledger"
	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/application/service"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/notification"
	domainwf "github.com/garyjia/leave-approval/internal/domain/workflow"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/repository"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/leave-approval/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	engine    ApprovalWorkflow
	employees port.EmployeeRepository
	directory service.DirectoryService

	employee *entity.Employee
	head     *entity.Employee
	manager  *entity.Employee
}

type harnessOption func(*harnessDeps)

type harnessDeps struct {
	history port.HistoryRepository
}

// failingHistory fails writes for one trigger, used to prove the transaction rolls back
type failingHistory struct {
	port.HistoryRepository
	failOn domainwf.Trigger
}

func (f failingHistory) Create(ctx context.Context, h *entity.RequestHistory) error {
	if h.Action == f.failOn {
		return errors.New("disk full")
	}
	return f.HistoryRepository.Create(ctx, h)
}

func withHistory(wrap func(port.HistoryRepository) port.HistoryRepository) harnessOption {
	return func(d *harnessDeps) { d.history = wrap(d.history) }
}

func newHarness(t *testing.T, balance int, opts ...harnessOption) *harness {
	t.Helper()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "leave.db"), MaxOpenConns: 8}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations())

	logger := zap.NewNop()
	txm := sqlite.NewDB(db.DB, logger)
	employees := repository.NewEmployeeRepository(db.DB, logger)
	requests := repository.NewRequestRepository(db.DB, logger)
	heads := repository.NewDepartmentHeadRepository(db.DB, logger)

	deps := &harnessDeps{history: repository.NewHistoryRepository(db.DB, logger)}
	for _, opt := range opts {
		opt(deps)
	}

	directory := service.NewDirectoryService(employees, heads, txm, nopLogger{})
	h := &harness{
		engine: NewEngine(
			requests,
			deps.history,
			txm,
			ledger.NewBalanceLedger(employees),
			conflict.NewDetector(requests),
			directory,
		),
		employees: employees,
		directory: directory,
	}

	ctx := context.Background()
	h.employee = &entity.Employee{Name: "alice", Department: "IT", Balance: balance, NotificationAddress: "ou_alice"}
	h.head = &entity.Employee{Name: "hana", Department: "IT", Balance: 30, NotificationAddress: "ou_hana"}
	h.manager = &entity.Employee{Name: "boss", Department: "Board", JobGrade: entity.JobGradeManager, Balance: 30, NotificationAddress: "ou_boss"}
	for _, emp := range []*entity.Employee{h.employee, h.head, h.manager} {
		require.NoError(t, directory.RegisterEmployee(ctx, emp))
	}
	_, err = directory.AssignHead(ctx, "IT", h.head.ID)
	require.NoError(t, err)

	return h
}

func (h *harness) balance(t *testing.T) int {
	t.Helper()
	emp, err := h.employees.GetByID(context.Background(), h.employee.ID)
	require.NoError(t, err)
	return emp.Balance
}

func (h *harness) status(t *testing.T, id int64) domainwf.State {
	t.Helper()
	req, err := h.engine.GetRequest(context.Background(), id)
	require.NoError(t, err)
	return req.Status
}

func (h *harness) submitAnnual(t *testing.T, start, end string) *Result {
	t.Helper()
	res, err := h.engine.Submit(context.Background(), SubmitInput{
		EmployeeID: h.employee.ID,
		Category:   entity.CategoryAnnual,
		Period:     mustPeriod(t, start, end),
	})
	require.NoError(t, err)
	return res
}

// pendingManager submits and passes head approval
func (h *harness) pendingManager(t *testing.T, start, end string) int64 {
	t.Helper()
	res := h.submitAnnual(t, start, end)
	_, err := h.engine.ApproveByHead(context.Background(), res.Request.ID, "hana")
	require.NoError(t, err)
	return res.Request.ID
}

func mustPeriod(t *testing.T, start, end string) entity.DateRange {
	t.Helper()
	p, err := entity.ParseDateRange(start, end)
	require.NoError(t, err)
	return p
}

func TestFullApprovalDebitsBalance(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	submitted := h.submitAnnual(t, "2025-03-10", "2025-03-14")
	assert.Equal(t, domainwf.StatePendingHeadApproval, submitted.Request.Status)
	assert.Equal(t, 5, submitted.Request.Duration)
	assert.Equal(t, notification.TypeHeadApprovalPending, submitted.Intent.Type)
	assert.Equal(t, "ou_hana", submitted.Intent.Recipient)

	headApproved, err := h.engine.ApproveByHead(ctx, submitted.Request.ID, "hana")
	require.NoError(t, err)
	assert.Equal(t, domainwf.StatePendingManagerApproval, headApproved.Request.Status)
	assert.Equal(t, notification.TypeManagerApprovalPending, headApproved.Intent.Type)
	assert.Equal(t, "ou_boss", headApproved.Intent.Recipient)
	assert.Equal(t, 10, h.balance(t), "head approval must not touch the balance")

	approved, err := h.engine.ApproveByManager(ctx, submitted.Request.ID, "boss")
	require.NoError(t, err)
	assert.Equal(t, domainwf.StateApproved, approved.Request.Status)
	assert.Equal(t, "boss", approved.Request.ApprovedBy)
	assert.Equal(t, notification.TypeApproved, approved.Intent.Type)
	assert.Equal(t, "ou_alice", approved.Intent.Recipient)
	assert.Equal(t, int64(5), approved.Intent.GetInt(notification.KeyDuration))

	assert.Equal(t, 5, h.balance(t))

	history, err := h.engine.History(ctx, submitted.Request.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domainwf.TriggerSubmit, history[0].Action)
	assert.Equal(t, domainwf.TriggerHeadApprove, history[1].Action)
	assert.Equal(t, "hana", history[1].Actor)
	assert.Equal(t, domainwf.StateApproved, history[2].ToStatus)
}

func TestManagerApprovalWithInsufficientBalance(t *testing.T) {
	h := newHarness(t, 3)
	id := h.pendingManager(t, "2025-03-10", "2025-03-14")

	_, err := h.engine.ApproveByManager(context.Background(), id, "boss")
	assert.ErrorIs(t, err, entity.ErrInsufficientBalance)

	assert.Equal(t, 3, h.balance(t))
	assert.Equal(t, domainwf.StatePendingManagerApproval, h.status(t, id))

	history, err := h.engine.History(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, history, 2, "failed approval must leave no history entry")
}

func TestOverlappingSubmissionConflicts(t *testing.T) {
	h := newHarness(t, 30)
	h.submitAnnual(t, "2024-06-01", "2024-06-05")

	_, err := h.engine.Submit(context.Background(), SubmitInput{
		EmployeeID: h.employee.ID,
		Category:   entity.CategoryAnnual,
		Period:     mustPeriod(t, "2024-06-03", "2024-06-10"),
	})
	assert.ErrorIs(t, err, entity.ErrConflict)

	all, err := h.engine.ListByEmployee(context.Background(), h.employee.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReleasedRequestsDoNotBlockDates(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		release func(h *harness, id int64) error
	}{
		{"rejected by head", func(h *harness, id int64) error {
			_, err := h.engine.RejectByHead(ctx, id, "hana", "team offsite")
			return err
		}},
		{"rejected by manager", func(h *harness, id int64) error {
			if _, err := h.engine.ApproveByHead(ctx, id, "hana"); err != nil {
				return err
			}
			_, err := h.engine.RejectByManager(ctx, id, "boss", "")
			return err
		}},
		{"cancelled", func(h *harness, id int64) error {
			if _, err := h.engine.ApproveByHead(ctx, id, "hana"); err != nil {
				return err
			}
			if _, err := h.engine.ApproveByManager(ctx, id, "boss"); err != nil {
				return err
			}
			_, err := h.engine.Cancel(ctx, id, "alice", "plans changed")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 30)
			first := h.submitAnnual(t, "2024-06-01", "2024-06-05")
			require.NoError(t, tt.release(h, first.Request.ID))

			h.submitAnnual(t, "2024-06-03", "2024-06-10")
		})
	}
}

func TestCancelCreditsBalanceOnce(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	id := h.pendingManager(t, "2025-04-01", "2025-04-04")
	_, err := h.engine.ApproveByManager(ctx, id, "boss")
	require.NoError(t, err)
	require.Equal(t, 6, h.balance(t))

	res, err := h.engine.Cancel(ctx, id, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, domainwf.StateCancelled, res.Request.Status)
	assert.Equal(t, notification.TypeCancelled, res.Intent.Type)
	assert.Equal(t, 10, h.balance(t))

	_, err = h.engine.Cancel(ctx, id, "alice", "")
	assert.ErrorIs(t, err, entity.ErrInvalidState)
	assert.Equal(t, 10, h.balance(t))
}

func TestConcurrentManagerApprovals(t *testing.T) {
	h := newHarness(t, 30)
	id := h.pendingManager(t, "2025-05-05", "2025-05-09")

	const workers = 2
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.engine.ApproveByManager(context.Background(), id, "boss")
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, entity.ErrInvalidState):
			invalid++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, invalid)
	assert.Equal(t, domainwf.StateApproved, h.status(t, id))
	assert.Equal(t, 25, h.balance(t), "days must be debited exactly once")
}

func TestConcurrentApprovalsNeverOverdraw(t *testing.T) {
	h := newHarness(t, 6)
	first := h.pendingManager(t, "2025-06-02", "2025-06-06")
	second := h.pendingManager(t, "2025-07-01", "2025-07-05")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{first, second} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = h.engine.ApproveByManager(context.Background(), id, "boss")
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, entity.ErrInsufficientBalance)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, h.balance(t))
}

func TestIllegalTransitions(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()
	id := h.submitAnnual(t, "2025-08-04", "2025-08-05").Request.ID

	tests := []struct {
		name string
		call func() (*Result, error)
	}{
		{"manager approve before head", func() (*Result, error) { return h.engine.ApproveByManager(ctx, id, "boss") }},
		{"manager reject before head", func() (*Result, error) { return h.engine.RejectByManager(ctx, id, "boss", "") }},
		{"cancel while pending", func() (*Result, error) { return h.engine.Cancel(ctx, id, "alice", "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.call()
			assert.ErrorIs(t, err, entity.ErrInvalidState)
			assert.Nil(t, res)
			assert.Equal(t, domainwf.StatePendingHeadApproval, h.status(t, id))
		})
	}

	t.Run("terminal rejection", func(t *testing.T) {
		_, err := h.engine.RejectByHead(ctx, id, "hana", "understaffed")
		require.NoError(t, err)

		_, err = h.engine.ApproveByHead(ctx, id, "hana")
		assert.ErrorIs(t, err, entity.ErrInvalidState)

		req, err := h.engine.GetRequest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domainwf.StateRejectedByHead, req.Status)
		assert.Equal(t, "understaffed", req.RejectionReason)
	})
}

func TestRejectionIntentsCarryReason(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()

	id := h.pendingManager(t, "2025-09-01", "2025-09-02")
	res, err := h.engine.RejectByManager(ctx, id, "boss", "  quarter close  ")
	require.NoError(t, err)

	assert.Equal(t, notification.TypeRejectedByManager, res.Intent.Type)
	assert.Equal(t, "ou_alice", res.Intent.Recipient)
	assert.Equal(t, "quarter close", res.Intent.GetString(notification.KeyReason))
	assert.Equal(t, 30, h.balance(t))
}

func TestNotFoundAndValidation(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()

	_, err := h.engine.ApproveByHead(ctx, 404, "hana")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = h.engine.GetRequest(ctx, 404)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = h.engine.History(ctx, 404)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = h.engine.ListByEmployee(ctx, 404)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	id := h.submitAnnual(t, "2025-10-01", "2025-10-01").Request.ID
	_, err = h.engine.ApproveByHead(ctx, id, "  ")
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = h.engine.ListPending(ctx, Role("clerk"), "")
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestSubmitValidation(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      SubmitInput
		wantErr error
	}{
		{"unknown category", SubmitInput{Category: "vacation", Period: entity.NewDateRange(day, day)}, entity.ErrValidation},
		{"inverted range", SubmitInput{Category: entity.CategoryAnnual, Period: entity.NewDateRange(day, day.AddDate(0, 0, -1))}, entity.ErrValidation},
		{"missing start", SubmitInput{Category: entity.CategorySick}, entity.ErrValidation},
		{"annual without end", SubmitInput{Category: entity.CategoryAnnual, Period: entity.DateRange{Start: day}}, entity.ErrValidation},
		{"bereavement without relation", SubmitInput{Category: entity.CategoryBereavement, Subcategory: entity.SubcategoryFirstDegree, Period: entity.DateRange{Start: day}}, entity.ErrValidation},
		{"unknown employee", SubmitInput{EmployeeID: 404, Category: entity.CategorySick, Period: entity.DateRange{Start: day}}, entity.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			if in.EmployeeID == 0 {
				in.EmployeeID = h.employee.ID
			}
			_, err := h.engine.Submit(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFixedCategoriesDeriveEndDate(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	res, err := h.engine.Submit(ctx, SubmitInput{
		EmployeeID: h.employee.ID,
		Category:   entity.CategoryMarriage,
		Period:     entity.DateRange{Start: start},
		Note:       "wedding",
	})
	require.NoError(t, err)
	assert.Equal(t, 14, res.Request.Duration)
	assert.Equal(t, "2025-02-14", res.Request.Period.EndString())

	_, err = h.engine.ApproveByHead(ctx, res.Request.ID, "hana")
	require.NoError(t, err)
	_, err = h.engine.ApproveByManager(ctx, res.Request.ID, "boss")
	require.NoError(t, err, "non-annual leave does not need balance")
	assert.Equal(t, 2, h.balance(t))

	_, err = h.engine.Cancel(ctx, res.Request.ID, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, 2, h.balance(t), "nothing was debited so nothing is credited")
}

func TestFixedCategoryEndMustCoverEntitlement(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()

	_, err := h.engine.Submit(ctx, SubmitInput{
		EmployeeID: h.employee.ID,
		Category:   entity.CategoryPilgrimage,
		Period:     mustPeriod(t, "2024-06-01", "2024-06-01"),
	})
	require.ErrorIs(t, err, entity.ErrValidation, "a 20 day leave cannot block a single day")

	res, err := h.engine.Submit(ctx, SubmitInput{
		EmployeeID: h.employee.ID,
		Category:   entity.CategoryPilgrimage,
		Period:     mustPeriod(t, "2024-06-01", "2024-06-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Request.Duration)
	assert.Equal(t, "2024-06-20", res.Request.Period.EndString())

	_, err = h.engine.Submit(ctx, SubmitInput{
		EmployeeID: h.employee.ID,
		Category:   entity.CategoryAnnual,
		Period:     mustPeriod(t, "2024-06-02", "2024-06-10"),
	})
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestSickLeaveDays(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	res, err := h.engine.Submit(ctx, SubmitInput{EmployeeID: h.employee.ID, Category: entity.CategorySick, Period: entity.DateRange{Start: day}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Request.Duration)
	assert.Equal(t, "2025-01-06", res.Request.Period.EndString())

	res, err = h.engine.Submit(ctx, SubmitInput{EmployeeID: h.employee.ID, Category: entity.CategorySick, Period: entity.DateRange{Start: day.AddDate(0, 0, 7)}, Days: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Request.Duration)
	assert.Equal(t, "2025-01-15", res.Request.Period.EndString())
}

func TestListPending(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()

	other := &entity.Employee{Name: "omar", Department: "HR", Balance: 30}
	require.NoError(t, h.directory.RegisterEmployee(ctx, other))

	a := h.submitAnnual(t, "2025-03-03", "2025-03-04").Request.ID
	b, err := h.engine.Submit(ctx, SubmitInput{EmployeeID: other.ID, Category: entity.CategoryAnnual, Period: mustPeriod(t, "2025-03-03", "2025-03-04")})
	require.NoError(t, err)
	c := h.pendingManager(t, "2025-04-07", "2025-04-08")

	heads, err := h.engine.ListPending(ctx, RoleHead, "")
	require.NoError(t, err)
	require.Len(t, heads, 2)
	assert.Equal(t, a, heads[0].ID, "oldest first")
	assert.Equal(t, b.Request.ID, heads[1].ID)

	itOnly, err := h.engine.ListPending(ctx, RoleHead, "IT")
	require.NoError(t, err)
	require.Len(t, itOnly, 1)
	assert.Equal(t, "alice", itOnly[0].EmployeeName)

	managers, err := h.engine.ListPending(ctx, RoleManager, "")
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, c, managers[0].ID)

	hr, err := h.engine.ListPending(ctx, RoleManager, "HR")
	require.NoError(t, err)
	assert.Empty(t, hr)
}

func TestIntentWithoutHead(t *testing.T) {
	h := newHarness(t, 30)
	ctx := context.Background()
	require.NoError(t, h.directory.RemoveHead(ctx, "IT"))

	res := h.submitAnnual(t, "2025-12-01", "2025-12-02")
	require.NotNil(t, res.Intent)
	assert.False(t, res.Intent.HasRecipient())
	assert.Equal(t, notification.TypeHeadApprovalPending, res.Intent.Type)
}

func TestFailedHistoryWriteRollsBack(t *testing.T) {
	h := newHarness(t, 10, withHistory(func(r port.HistoryRepository) port.HistoryRepository {
		return failingHistory{HistoryRepository: r, failOn: domainwf.TriggerManagerApprove}
	}))
	id := h.pendingManager(t, "2025-03-10", "2025-03-14")

	res, err := h.engine.ApproveByManager(context.Background(), id, "boss")
	require.Error(t, err)
	assert.Nil(t, res)

	assert.Equal(t, 10, h.balance(t), "debit must roll back with the history write")
	assert.Equal(t, domainwf.StatePendingManagerApproval, h.status(t, id))
}
