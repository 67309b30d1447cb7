package invoice_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/invoice/dto"
	"anoa.com/hostelhub/internal/modules/invoice/repository"
	invoice "anoa.com/hostelhub/internal/modules/invoice/service"
	notifRepo "anoa.com/hostelhub/internal/modules/notification/repository"
	notification "anoa.com/hostelhub/internal/modules/notification/service"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/testutil"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      invoice.InvoiceService
	notifier notification.NotificationService
	metrics  *observability.Metrics
	student  policy.Identity
	blockB   policy.Identity
	wardenA  policy.Identity
	admin    policy.Identity
}

func setup(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	return &fixture{
		svc:      invoice.NewInvoiceService(repository.NewInvoiceRepository(db), studentRepo.NewStudentRepository(db), notifier, metrics),
		notifier: notifier,
		metrics:  metrics,
		student:  policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "A-1", "A")),
		blockB:   policy.NewIdentity(testutil.CreateStudent(t, db, "b@hostel.test", "B-1", "B")),
		wardenA:  policy.NewIdentity(testutil.CreateWarden(t, db, "wa@hostel.test", "A")),
		admin:    policy.NewIdentity(testutil.CreateAdmin(t, db, "admin@hostel.test")),
	}
}

func nextMonth() string {
	return time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
}

func issue(t *testing.T, f *fixture, studentID uuid.UUID, due string) *entity.Invoice {
	t.Helper()
	inv, err := f.svc.Create(context.Background(), f.admin, dto.CreateInvoiceRequest{
		StudentID: studentID,
		DueDate:   due,
		Items: []dto.InvoiceItemRequest{
			{Description: "Room rent", Amount: 4000},
			{Description: "Mess charges", Amount: 1500.5},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	first := issue(t, f, *f.student.StudentID, nextMonth())
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), first.InvoiceNumber)
	assert.Equal(t, 5500.5, first.Amount)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, entity.InvoicePending, first.Status)

	second := issue(t, f, *f.blockB.StudentID, nextMonth())
	assert.Equal(t, fmt.Sprintf("INV-%d-0002", year), second.InvoiceNumber)
	assert.Equal(t, 2.0, promtest.ToFloat64(f.metrics.InvoicesIssued))

	count, err := f.notifier.UnreadCount(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	t.Run("amount must match items", func(t *testing.T) {
		amount := 100.0
		_, err := f.svc.Create(ctx, f.admin, dto.CreateInvoiceRequest{
			StudentID: *f.student.StudentID,
			DueDate:   nextMonth(),
			Amount:    &amount,
			Items:     []dto.InvoiceItemRequest{{Description: "Rent", Amount: 90}},
		})
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

		_, err = f.svc.Create(ctx, f.admin, dto.CreateInvoiceRequest{StudentID: *f.student.StudentID, DueDate: nextMonth()})
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	})

	t.Run("admin only", func(t *testing.T) {
		amount := 100.0
		_, err := f.svc.Create(ctx, f.wardenA, dto.CreateInvoiceRequest{StudentID: *f.student.StudentID, DueDate: nextMonth(), Amount: &amount})
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("unknown student", func(t *testing.T) {
		amount := 100.0
		_, err := f.svc.Create(ctx, f.admin, dto.CreateInvoiceRequest{StudentID: uuid.New(), DueDate: nextMonth(), Amount: &amount})
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}

func TestPayInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	inv := issue(t, f, *f.student.StudentID, nextMonth())

	_, err := f.svc.Pay(ctx, f.blockB, inv.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	paid, err := f.svc.Pay(ctx, f.student, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, invoice.PaymentMethodOnline, *paid.PaymentMethod)
	require.NotNil(t, paid.TransactionID)
	require.NotNil(t, paid.PaidDate)

	_, err = f.svc.Pay(ctx, f.student, inv.ID)
	assert.True(t, errors.Is(err, apperror.ErrAlreadyPaid))

	again, err := f.svc.GetByID(ctx, f.student, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, *paid.TransactionID, *again.TransactionID)
	assert.True(t, paid.PaidDate.Equal(*again.PaidDate))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.InvoicesPaid))
}

func TestUpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	inv := issue(t, f, *f.student.StudentID, nextMonth())

	_, err := f.svc.UpdateStatus(ctx, f.wardenA, inv.ID, dto.UpdateStatusRequest{Status: entity.InvoicePaid})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	method := "Cash"
	day := "2026-01-10"
	updated, err := f.svc.UpdateStatus(ctx, f.admin, inv.ID, dto.UpdateStatusRequest{Status: entity.InvoicePaid, PaymentDate: &day, PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePaid, updated.Status)
	assert.Equal(t, "Cash", *updated.PaymentMethod)

	_, err = f.svc.UpdateStatus(ctx, f.admin, inv.ID, dto.UpdateStatusRequest{Status: entity.InvoicePending})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.Pay(ctx, f.student, inv.ID)
	assert.True(t, errors.Is(err, apperror.ErrAlreadyPaid))
}

// payOnRead pays the invoice right after the service has read it, as a
// student paying between the admin's read and write would.
type payOnRead struct {
	repository.InvoiceRepository
	pay bool
}

func (r *payOnRead) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := r.InvoiceRepository.FindByID(ctx, id)
	if err != nil || !r.pay {
		return inv, err
	}
	r.pay = false
	if err := r.InvoiceRepository.MarkPaid(ctx, id, time.Now().UTC(), invoice.PaymentMethodOnline, "tx-student"); err != nil {
		return nil, err
	}
	return inv, nil
}

func TestUpdateStatusAfterConcurrentPayment(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := &payOnRead{InvoiceRepository: repository.NewInvoiceRepository(db)}
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	svc := invoice.NewInvoiceService(repo, studentRepo.NewStudentRepository(db), notifier, nil)

	student := policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "A-1", "A"))
	admin := policy.NewIdentity(testutil.CreateAdmin(t, db, "admin@hostel.test"))

	create := func() *entity.Invoice {
		inv, err := svc.Create(ctx, admin, dto.CreateInvoiceRequest{
			StudentID: *student.StudentID,
			DueDate:   nextMonth(),
			Items:     []dto.InvoiceItemRequest{{Description: "Room rent", Amount: 4000}},
		})
		require.NoError(t, err)
		return inv
	}

	t.Run("marking paid keeps the student's payment", func(t *testing.T) {
		inv := create()
		method := "Cash"
		repo.pay = true

		_, err := svc.UpdateStatus(ctx, admin, inv.ID, dto.UpdateStatusRequest{Status: entity.InvoicePaid, PaymentMethod: &method})
		assert.True(t, errors.Is(err, apperror.ErrAlreadyPaid))

		stored, err := svc.GetByID(ctx, student, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.InvoicePaid, stored.Status)
		require.NotNil(t, stored.PaymentMethod)
		assert.Equal(t, invoice.PaymentMethodOnline, *stored.PaymentMethod)
		require.NotNil(t, stored.TransactionID)
		assert.Equal(t, "tx-student", *stored.TransactionID)
	})

	t.Run("reopening fails", func(t *testing.T) {
		inv := create()
		repo.pay = true

		_, err := svc.UpdateStatus(ctx, admin, inv.ID, dto.UpdateStatusRequest{Status: entity.InvoicePending})
		assert.True(t, errors.Is(err, apperror.ErrConflict))

		stored, err := svc.GetByID(ctx, student, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.InvoicePaid, stored.Status)
	})
}

func TestInvoiceVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	overdue := issue(t, f, *f.student.StudentID, "2020-01-01")
	issue(t, f, *f.student.StudentID, nextMonth())
	other := issue(t, f, *f.blockB.StudentID, nextMonth())

	assert.Equal(t, entity.InvoiceOverdue, overdue.Status)

	all, err := f.svc.GetAll(ctx, f.admin, dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	block, err := f.svc.GetAll(ctx, f.wardenA, dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, block, 2)

	late, err := f.svc.GetAll(ctx, f.admin, dto.InvoiceFilter{Status: entity.InvoiceOverdue})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, overdue.ID, late[0].ID)

	pending, err := f.svc.GetAll(ctx, f.admin, dto.InvoiceFilter{Status: entity.InvoicePending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.svc.GetAll(ctx, f.student, dto.InvoiceFilter{})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	mine, err := f.svc.GetMine(ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.svc.GetByID(ctx, f.wardenA, other.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.GetByStudent(ctx, f.student, *f.blockB.StudentID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	byStudent, err := f.svc.GetByStudent(ctx, f.wardenA, *f.student.StudentID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	// overdue invoices can still be paid
	paid, err := f.svc.Pay(ctx, f.student, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePaid, paid.Status)
}
