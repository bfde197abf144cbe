package payment_store

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/tool"
	"github.com/fatflowers/travelpay/pkg/types"
)

var (
	ErrNotFound       = errors.New("payment not found")
	ErrDuplicateTxRef = errors.New("payment tx_ref already exists")
	ErrInvalidQuery   = errors.New("invalid payment query")
)

// Signal is one reconciliation input for a payment.
type Signal struct {
	Outcome Outcome
	// ExternalID is stored when the payment has none yet or the signal is applied.
	ExternalID string
	// Metadata is merged key-wise, also for signals that do not change status.
	Metadata map[string]any
	// Reason is recorded as failed_reason when the payment moves to FAILED.
	Reason string
}

type ApplyResult struct {
	Payment  *models.Payment
	Previous types.PaymentStatus
	// Applied is true only for the call that moved the payment out of PENDING.
	Applied bool
}

// Store is the single source of truth for payment state.
type Store interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByTxRef(ctx context.Context, txRef string) (*models.Payment, error)
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	// Apply serializes per tx_ref: read-current-status and conditional write are one atomic step.
	Apply(ctx context.Context, txRef string, sig Signal) (*ApplyResult, error)
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
}

type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func newStore(db *gorm.DB) Store { return NewGormStore(db) }

func (s *GormStore) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = tool.GenerateUUIDV7()
	}
	if p.Status == "" {
		p.Status = types.PaymentStatusPending
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateTxRef, p.TxRef)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *GormStore) GetByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	return s.first(s.db.WithContext(ctx), "tx_ref = ?", txRef)
}

func (s *GormStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return s.first(s.db.WithContext(ctx), "id = ?", id)
}

func (s *GormStore) first(tx *gorm.DB, query string, arg any) (*models.Payment, error) {
	var p models.Payment
	if err := tx.Where(query, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &p, nil
}

func (s *GormStore) Apply(ctx context.Context, txRef string, sig Signal) (*ApplyResult, error) {
	var result *ApplyResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock keeps the metadata merge consistent; the status predicate on the
		// update below is the compare-and-set that decides who wins.
		current, err := s.first(tx.Clauses(clause.Locking{Strength: "UPDATE"}), "tx_ref = ?", txRef)
		if err != nil {
			return err
		}

		next, apply := Decide(current.Status, sig.Outcome)
		extra := lo.Assign(map[string]any{}, sig.Metadata)
		if apply && next == types.PaymentStatusFailed && sig.Reason != "" {
			extra[models.MetadataKeyFailedReason] = sig.Reason
		}
		metadata := models.MergeMetadata(current.Metadata, extra)

		updates := map[string]any{"metadata": metadata}
		if sig.ExternalID != "" && (apply || current.ExternalTxID == nil) {
			updates["external_tx_id"] = sig.ExternalID
		}

		q := tx.Model(&models.Payment{}).Where("id = ?", current.ID)
		if apply {
			updates["status"] = next
			q = q.Where("status = ?", types.PaymentStatusPending)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update payment: %w", res.Error)
		}

		applied := apply && res.RowsAffected == 1
		updated, err := s.first(tx, "id = ?", current.ID)
		if err != nil {
			return err
		}
		result = &ApplyResult{Payment: updated, Previous: current.Status, Applied: applied}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// filtersAnd is a helper to combine multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Scan implements paginated admin listing with filters
func (s *GormStore) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidQuery)
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if !f.Valid(types.PaymentFilterFields) {
			return nil, fmt.Errorf("%w: filter on field %q", ErrInvalidQuery, lo.FromPtr(f).Field)
		}
	}
	if req.SortBy != "" && !lo.Contains(types.PaymentFilterFields, req.SortBy) {
		return nil, fmt.Errorf("%w: sort field %q", ErrInvalidQuery, req.SortBy)
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment

	q := tx.Limit(req.Size)

	if req.From > 0 {
		q = q.Offset(req.From)
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanResponse{Items: rows, Total: total}, nil
}

// Module exposes the payment store via Fx.
var Module = fx.Options(
	fx.Provide(newStore),
)
