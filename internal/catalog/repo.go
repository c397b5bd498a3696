package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wirasakti/partmap/pkg/db/models"
	"gorm.io/gorm"
)

// ReferenceKind names one of the categorical lookup tables.
type ReferenceKind string

const (
	KindCustomerPart ReferenceKind = "customer_parts"
	KindCompanyPart  ReferenceKind = "company_parts"
	KindUnit         ReferenceKind = "units"
	KindSupplier     ReferenceKind = "suppliers"
	KindMaterial     ReferenceKind = "materials"
	KindImportSource ReferenceKind = "import_sources"
	KindLocalSource  ReferenceKind = "local_sources"
	KindMaker        ReferenceKind = "makers"
)

// ReferenceKinds lists every lookup table in a stable order.
var ReferenceKinds = []ReferenceKind{
	KindCustomerPart,
	KindCompanyPart,
	KindUnit,
	KindSupplier,
	KindMaterial,
	KindImportSource,
	KindLocalSource,
	KindMaker,
}

// ParseReferenceKind validates a kind arriving from a URL segment.
func ParseReferenceKind(raw string) (ReferenceKind, error) {
	kind := ReferenceKind(raw)
	for _, known := range ReferenceKinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown reference kind %q", raw)
}

// ReferenceRow is the id/name shape shared by all lookup tables.
type ReferenceRow struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Repository handles catalog persistence: the master part table and the
// reference lookup tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListParts returns every master part row.
func (r *Repository) ListParts(ctx context.Context) ([]models.Part, error) {
	var parts []models.Part
	if err := r.db.WithContext(ctx).Order("part_name").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// FindPart loads a master part by id.
func (r *Repository) FindPart(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	var part models.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// CreatePart inserts a master part row.
func (r *Repository) CreatePart(ctx context.Context, part *models.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// UpdatePart saves the provided part.
func (r *Repository) UpdatePart(ctx context.Context, part *models.Part) error {
	if part == nil {
		return fmt.Errorf("part is required")
	}
	return r.db.WithContext(ctx).Save(part).Error
}

// DeletePart removes a master part row.
func (r *Repository) DeletePart(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Part{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListReference returns every row of the named lookup table ordered by name.
func (r *Repository) ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceRow, error) {
	rows := []ReferenceRow{}
	err := r.db.WithContext(ctx).
		Table(string(kind)).
		Select("id", "name").
		Order("name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateReference inserts a row into the named lookup table.
func (r *Repository) CreateReference(ctx context.Context, kind ReferenceKind, name string) (*ReferenceRow, error) {
	row := ReferenceRow{ID: uuid.New(), Name: name}
	if err := r.db.WithContext(ctx).Table(string(kind)).Create(map[string]any{
		"id":   row.ID,
		"name": row.Name,
	}).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateReference renames a row of the named lookup table.
func (r *Repository) UpdateReference(ctx context.Context, kind ReferenceKind, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Table(string(kind)).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteReference removes a row of the named lookup table.
func (r *Repository) DeleteReference(ctx context.Context, kind ReferenceKind, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Table(string(kind)).
		Where("id = ?", id).
		Delete(&ReferenceRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
