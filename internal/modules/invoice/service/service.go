package invoice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/invoice/dto"
	"anoa.com/hostelhub/internal/modules/invoice/repository"
	notification "anoa.com/hostelhub/internal/modules/notification/service"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	commonDto "anoa.com/hostelhub/pkg/dto"
	"anoa.com/hostelhub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// PaymentMethodOnline is recorded for payments made by the student.
	PaymentMethodOnline = "Online"

	numberAttempts = 3
)

type InvoiceService interface {
	GetAll(ctx context.Context, id policy.Identity, filter dto.InvoiceFilter) ([]entity.Invoice, error)
	GetByStudent(ctx context.Context, id policy.Identity, studentID uuid.UUID) ([]entity.Invoice, error)
	GetMine(ctx context.Context, id policy.Identity) ([]entity.Invoice, error)
	GetByID(ctx context.Context, id policy.Identity, invoiceID uuid.UUID) (*entity.Invoice, error)
	Create(ctx context.Context, id policy.Identity, req dto.CreateInvoiceRequest) (*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id policy.Identity, invoiceID uuid.UUID, req dto.UpdateStatusRequest) (*entity.Invoice, error)
	Pay(ctx context.Context, id policy.Identity, invoiceID uuid.UUID) (*entity.Invoice, error)
}

type invoiceService struct {
	repo     repository.InvoiceRepository
	students studentRepo.StudentRepository
	notifier notification.Notifier
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	students studentRepo.StudentRepository,
	notifier notification.Notifier,
	metrics *observability.Metrics,
) InvoiceService {
	return &invoiceService{
		repo:     repo,
		students: students,
		notifier: notifier,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *invoiceService) GetAll(ctx context.Context, id policy.Identity, filter dto.InvoiceFilter) ([]entity.Invoice, error) {
	if !id.IsStaff() {
		return nil, fmt.Errorf("students list their own invoices: %w", apperror.ErrForbidden)
	}
	scope, err := policy.Scope(id, policy.KindInvoice)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoices, err := s.repo.FindAll(ctx, scope, filter.Status, now)
	if err != nil {
		return nil, err
	}
	return s.present(invoices), nil
}

func (s *invoiceService) GetByStudent(ctx context.Context, id policy.Identity, studentID uuid.UUID) ([]entity.Invoice, error) {
	scope, err := policy.Scope(id, policy.KindInvoice)
	if err != nil {
		return nil, err
	}

	profile, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := scope.Check(profile.ID, profile.HostelBlock); err != nil {
		return nil, err
	}

	invoices, err := s.repo.FindByStudent(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return s.present(invoices), nil
}

func (s *invoiceService) GetMine(ctx context.Context, id policy.Identity) ([]entity.Invoice, error) {
	if id.StudentID == nil {
		return nil, fmt.Errorf("student profile not found: %w", apperror.ErrForbidden)
	}

	invoices, err := s.repo.FindByStudent(ctx, *id.StudentID)
	if err != nil {
		return nil, err
	}
	return s.present(invoices), nil
}

func (s *invoiceService) GetByID(ctx context.Context, id policy.Identity, invoiceID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.load(ctx, id, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.presentOne(invoice), nil
}

func (s *invoiceService) Create(ctx context.Context, id policy.Identity, req dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	if !id.IsAdmin() {
		return nil, fmt.Errorf("only admins issue invoices: %w", apperror.ErrForbidden)
	}

	profile, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	due, err := commonDto.ParseDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("due_date must be YYYY-MM-DD: %w", apperror.ErrInvalidInput)
	}

	items := make([]entity.InvoiceItem, 0, len(req.Items))
	var total float64
	for _, item := range req.Items {
		description := sanitize.Text(item.Description)
		if description == "" {
			return nil, fmt.Errorf("item description must contain text: %w", apperror.ErrInvalidInput)
		}
		items = append(items, entity.InvoiceItem{Description: description, Amount: item.Amount})
		total += item.Amount
	}

	amount, err := invoiceAmount(req.Amount, total, len(items) > 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoice := &entity.Invoice{
		StudentID: profile.ID,
		Amount:    amount,
		Items:     items,
		IssueDate: now,
		// due at the end of the given day
		DueDate: due.Add(24*time.Hour - time.Second),
		Status:  entity.InvoicePending,
	}

	if err := s.insert(ctx, invoice, now.Year()); err != nil {
		return nil, err
	}
	s.metrics.InvoiceIssued()

	s.notifier.Notify(ctx, &entity.Notification{
		UserID:     profile.UserID,
		ActorID:    id.UserID,
		EntityID:   invoice.ID,
		EntityType: "invoice",
		Type:       entity.NotificationInvoiceIssued,
		Message:    fmt.Sprintf("Invoice %s of %.2f is due on %s", invoice.InvoiceNumber, invoice.Amount, req.DueDate),
	})

	logrus.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"student_id":     invoice.StudentID,
	}).Info("invoice issued")

	created, err := s.repo.FindByID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	return s.presentOne(created), nil
}

// invoiceAmount settles the amount from the request and the item total.
func invoiceAmount(requested *float64, itemTotal float64, hasItems bool) (float64, error) {
	switch {
	case requested == nil && !hasItems:
		return 0, fmt.Errorf("amount or items are required: %w", apperror.ErrInvalidInput)
	case requested == nil:
		return itemTotal, nil
	case hasItems && math.Abs(*requested-itemTotal) > 0.005:
		return 0, fmt.Errorf("amount %.2f does not match the item total %.2f: %w", *requested, itemTotal, apperror.ErrInvalidInput)
	}
	return *requested, nil
}

// insert numbers the invoice INV-<year>-<seq>. Two admins issuing at the same
// moment collide on the unique number, so the sequence is retried.
func (s *invoiceService) insert(ctx context.Context, invoice *entity.Invoice, year int) error {
	for attempt := 0; ; attempt++ {
		issued, err := s.repo.CountIssuedIn(ctx, year)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%d-%04d", year, issued+1+int64(attempt))

		err = s.repo.Create(ctx, invoice)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt+1 >= numberAttempts {
			return err
		}
		invoice.ID = uuid.Nil
	}
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id policy.Identity, invoiceID uuid.UUID, req dto.UpdateStatusRequest) (*entity.Invoice, error) {
	if !id.IsAdmin() {
		return nil, fmt.Errorf("only admins change invoice status: %w", apperror.ErrForbidden)
	}

	invoice, err := s.load(ctx, id, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == entity.InvoicePaid {
		if req.Status == entity.InvoicePaid {
			return nil, apperror.ErrAlreadyPaid
		}
		return nil, fmt.Errorf("paid invoices cannot be reopened: %w", apperror.ErrConflict)
	}

	invoice.Status = req.Status
	if req.Status == entity.InvoicePaid {
		paidAt := s.now()
		if req.PaymentDate != nil {
			paidAt, err = commonDto.ParseDate(*req.PaymentDate)
			if err != nil {
				return nil, fmt.Errorf("payment_date must be YYYY-MM-DD: %w", apperror.ErrInvalidInput)
			}
		}
		invoice.PaidDate = &paidAt
		invoice.PaymentMethod = sanitize.Optional(req.PaymentMethod)
	}

	if err := s.repo.UpdateStatus(ctx, invoice); err != nil {
		return nil, err
	}
	if invoice.Status == entity.InvoicePaid {
		s.metrics.InvoicePaid()
	}

	return s.presentOne(invoice), nil
}

func (s *invoiceService) Pay(ctx context.Context, id policy.Identity, invoiceID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.load(ctx, id, invoiceID)
	if err != nil {
		return nil, err
	}
	if id.StudentID == nil || *id.StudentID != invoice.StudentID {
		return nil, fmt.Errorf("not authorized to pay this invoice: %w", apperror.ErrForbidden)
	}
	if invoice.Status == entity.InvoicePaid {
		return nil, apperror.ErrAlreadyPaid
	}

	transactionID := uuid.NewString()
	if err := s.repo.MarkPaid(ctx, invoice.ID, s.now(), PaymentMethodOnline, transactionID); err != nil {
		return nil, err
	}
	s.metrics.InvoicePaid()

	logrus.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"transaction_id": transactionID,
	}).Info("invoice paid")

	paid, err := s.repo.FindByID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	return s.presentOne(paid), nil
}

// load fetches an invoice and checks it against the caller's scope.
func (s *invoiceService) load(ctx context.Context, id policy.Identity, invoiceID uuid.UUID) (*entity.Invoice, error) {
	scope, err := policy.Scope(id, policy.KindInvoice)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	block := ""
	if invoice.Student != nil {
		block = invoice.Student.HostelBlock
	}
	if err := scope.Check(invoice.StudentID, block); err != nil {
		return nil, err
	}
	return invoice, nil
}

// present replaces the stored status with the effective one. The result must
// not be written back.
func (s *invoiceService) present(invoices []entity.Invoice) []entity.Invoice {
	now := s.now()
	for i := range invoices {
		invoices[i].Status = invoices[i].EffectiveStatus(now)
	}
	return invoices
}

func (s *invoiceService) presentOne(invoice *entity.Invoice) *entity.Invoice {
	invoice.Status = invoice.EffectiveStatus(s.now())
	return invoice
}
