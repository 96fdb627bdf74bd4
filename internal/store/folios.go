package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zamora/internal/models"
)

// ErrFolioNotOpen is returned when a charge targets a closed or paid folio.
var ErrFolioNotOpen = errors.New("folio is not open")

// Charge is a line to post on a folio.
type Charge struct {
	Description string
	Quantity    int
	UnitPrice   models.Money
}

// GetFolio retrieves a folio by ID
func (s *Store) GetFolio(ctx context.Context, id string) (*models.Folio, error) {
	var f models.Folio
	err := s.db.GetContext(ctx, &f, "SELECT * FROM folios WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "folio", id)
	}
	return &f, nil
}

// GetFolioItems retrieves every charge on a folio in posting order
func (s *Store) GetFolioItems(ctx context.Context, folioID string) ([]models.FolioItem, error) {
	items := []models.FolioItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM folio_items WHERE folio_id = $1 ORDER BY created_at", folioID)
	return items, err
}

// AddCharge posts a charge on an open folio and rewrites the folio total from the
// sum of all its items. The folio row is locked for the whole transaction, so
// concurrent charges serialize and none is lost from the total.
func (s *Store) AddCharge(ctx context.Context, folioID string, c Charge) (*models.Folio, *models.FolioItem, error) {
	var folio models.Folio
	var item *models.FolioItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &folio, "SELECT * FROM folios WHERE id = $1 FOR UPDATE", folioID); err != nil {
			return notFound(err, "folio", folioID)
		}
		var err error
		item, err = postCharge(ctx, tx, &folio, c)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &folio, item, nil
}

// AddChargeToBooking posts a charge on the booking's open folio, creating the
// folio first when the booking has none.
func (s *Store) AddChargeToBooking(ctx context.Context, bookingID string, c Charge) (*models.Folio, *models.FolioItem, error) {
	var folio models.Folio
	var item *models.FolioItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var propertyID string
		if err := tx.GetContext(ctx, &propertyID,
			"SELECT property_id FROM bookings WHERE id = $1 FOR UPDATE", bookingID); err != nil {
			return notFound(err, "booking", bookingID)
		}

		err := tx.GetContext(ctx, &folio,
			"SELECT * FROM folios WHERE booking_id = $1 AND status = 'open' FOR UPDATE", bookingID)
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.GetContext(ctx, &folio, `
				INSERT INTO folios (id, booking_id, property_id, status, total_amount)
				VALUES ($1, $2, $3, 'open', 0)
				RETURNING *`,
				uuid.NewString(), bookingID, propertyID)
		}
		if err != nil {
			return fmt.Errorf("open folio: %w", err)
		}

		item, err = postCharge(ctx, tx, &folio, c)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &folio, item, nil
}

func postCharge(ctx context.Context, tx *sqlx.Tx, folio *models.Folio, c Charge) (*models.FolioItem, error) {
	if folio.Status != models.FolioStatusOpen {
		return nil, fmt.Errorf("folio %s is %s: %w", folio.ID, folio.Status, ErrFolioNotOpen)
	}

	item := &models.FolioItem{
		ID:          uuid.NewString(),
		FolioID:     folio.ID,
		Description: c.Description,
		Quantity:    c.Quantity,
		UnitPrice:   c.UnitPrice,
		TotalPrice:  c.UnitPrice * models.Money(c.Quantity),
		TaxCategory: models.TaxCategoryStandard,
	}
	err := tx.GetContext(ctx, &item.CreatedAt, `
		INSERT INTO folio_items (id, folio_id, description, quantity, unit_price, total_price, tax_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		item.ID, item.FolioID, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice, item.TaxCategory)
	if err != nil {
		return nil, fmt.Errorf("insert folio item: %w", err)
	}

	var total models.Money
	if err := tx.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_price), 0)::bigint FROM folio_items WHERE folio_id = $1", folio.ID); err != nil {
		return nil, fmt.Errorf("sum folio items: %w", err)
	}

	if err := tx.GetContext(ctx, folio,
		"UPDATE folios SET total_amount = $1, updated_at = NOW() WHERE id = $2 RETURNING *", total, folio.ID); err != nil {
		return nil, fmt.Errorf("update folio total: %w", err)
	}
	return item, nil
}

// TransitionFolio moves a folio to status when the folio state machine allows it.
func (s *Store) TransitionFolio(ctx context.Context, folioID, status string) (*models.Folio, error) {
	var folio models.Folio
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &folio, "SELECT * FROM folios WHERE id = $1 FOR UPDATE", folioID); err != nil {
			return notFound(err, "folio", folioID)
		}
		if !models.FolioTransitions.Allowed(folio.Status, status) {
			return &TransitionError{Entity: "folio", From: folio.Status, To: status}
		}
		err := tx.GetContext(ctx, &folio,
			"UPDATE folios SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *", status, folioID)
		if uniqueViolation(err) {
			return fmt.Errorf("booking %s already has an open folio: %w", folio.BookingID, ErrDuplicate)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &folio, nil
}
