package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CountIssuedIn(ctx context.Context, year int) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	FindAll(ctx context.Context, scope policy.Predicate, status string, now time.Time) ([]entity.Invoice, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Invoice, error)
	CountPending(ctx context.Context, scope policy.Predicate) (int64, error)
	Recent(ctx context.Context, scope policy.Predicate, limit int) ([]entity.Invoice, error)
	// UpdateStatus writes status and payment fields of an unpaid invoice. When
	// the invoice is Paid by then nothing changes: ErrAlreadyPaid for a Paid
	// target, ErrConflict for a reopen.
	UpdateStatus(ctx context.Context, invoice *entity.Invoice) error
	// MarkPaid flips an unpaid invoice to Paid. It fails with ErrAlreadyPaid
	// and changes nothing when the invoice was paid already.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, method, transactionID string) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) scoped(ctx context.Context, scope policy.Predicate) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Scopes(scope.Owned("student_id"))
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return database.Translate(r.db.WithContext(ctx).Omit("Student").Create(invoice).Error, "invoice")
}

func (r *invoiceRepository) CountIssuedIn(ctx context.Context, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Where("invoice_number LIKE ?", fmt.Sprintf("INV-%d-%%", year)).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Student.User").
		Preload("Items").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, database.Translate(err, "invoice")
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindAll(ctx context.Context, scope policy.Predicate, status string, now time.Time) ([]entity.Invoice, error) {
	query := r.scoped(ctx, scope).Preload("Student.User").Preload("Items")

	switch status {
	case entity.InvoicePaid:
		query = query.Where("status = ?", entity.InvoicePaid)
	case entity.InvoicePending:
		query = query.Where("status = ? AND due_date >= ?", entity.InvoicePending, now)
	case entity.InvoiceOverdue:
		query = query.Where("status <> ? AND due_date < ?", entity.InvoicePaid, now)
	}

	var invoices []entity.Invoice
	if err := query.Order("created_at desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) CountPending(ctx context.Context, scope policy.Predicate) (int64, error) {
	var count int64
	err := r.scoped(ctx, scope).
		Where("status <> ?", entity.InvoicePaid).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) Recent(ctx context.Context, scope policy.Predicate, limit int) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := r.scoped(ctx, scope).
		Order("created_at desc").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, invoice *entity.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Where("id = ? AND status <> ?", invoice.ID, entity.InvoicePaid).
		Updates(map[string]interface{}{
			"status":         invoice.Status,
			"paid_date":      invoice.PaidDate,
			"payment_method": invoice.PaymentMethod,
		})
	if result.Error != nil {
		return database.Translate(result.Error, "invoice")
	}
	if result.RowsAffected == 0 {
		if invoice.Status == entity.InvoicePaid {
			return apperror.ErrAlreadyPaid
		}
		return fmt.Errorf("paid invoices cannot be reopened: %w", apperror.ErrConflict)
	}
	return nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, method, transactionID string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Where("id = ? AND status <> ?", id, entity.InvoicePaid).
		Updates(map[string]interface{}{
			"status":         entity.InvoicePaid,
			"paid_date":      paidAt,
			"payment_method": method,
			"transaction_id": transactionID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrAlreadyPaid
	}
	return nil
}
