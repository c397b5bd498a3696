package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wirasakti/partmap/pkg/db/models"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultTagColor is the marker color assigned to every catalog item.
const DefaultTagColor = "#3B82F6"

// missingName stands in for any unresolved reference.
const missingName = "-"

// Service assembles the denormalized catalog and manages the reference
// tables behind it.
type Service interface {
	Items(ctx context.Context) ([]Item, error)

	ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceRow, error)
	CreateReference(ctx context.Context, kind ReferenceKind, req ReferenceRequest) (*ReferenceRow, error)
	UpdateReference(ctx context.Context, kind ReferenceKind, id uuid.UUID, req ReferenceRequest) error
	DeleteReference(ctx context.Context, kind ReferenceKind, id uuid.UUID) error

	CreatePart(ctx context.Context, req PartRequest) (*Item, error)
	UpdatePart(ctx context.Context, id uuid.UUID, req PartRequest) error
	DeletePart(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	ListParts(ctx context.Context) ([]models.Part, error)
	FindPart(ctx context.Context, id uuid.UUID) (*models.Part, error)
	CreatePart(ctx context.Context, part *models.Part) error
	UpdatePart(ctx context.Context, part *models.Part) error
	DeletePart(ctx context.Context, id uuid.UUID) error
	ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceRow, error)
	CreateReference(ctx context.Context, kind ReferenceKind, name string) (*ReferenceRow, error)
	UpdateReference(ctx context.Context, kind ReferenceKind, id uuid.UUID, name string) error
	DeleteReference(ctx context.Context, kind ReferenceKind, id uuid.UUID) error
}

type service struct {
	repo repository
}

// NewService constructs a catalog service over the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

// Items loads the master parts and every lookup table in parallel, then
// joins them into display-ready records. Any lookup failure aborts the
// whole load; callers degrade to an empty catalog.
func (s *service) Items(ctx context.Context) ([]Item, error) {
	var parts []models.Part
	lookups := make(map[ReferenceKind]map[uuid.UUID]string, len(ReferenceKinds))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parts, err = s.repo.ListParts(gctx)
		return err
	})

	results := make([]map[uuid.UUID]string, len(ReferenceKinds))
	for i, kind := range ReferenceKinds {
		i, kind := i, kind
		g.Go(func() error {
			rows, err := s.repo.ListReference(gctx, kind)
			if err != nil {
				return err
			}
			byID := make(map[uuid.UUID]string, len(rows))
			for _, row := range rows {
				byID[row.ID] = row.Name
			}
			results[i] = byID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	for i, kind := range ReferenceKinds {
		lookups[kind] = results[i]
	}

	items := make([]Item, 0, len(parts))
	for _, part := range parts {
		items = append(items, itemFromPart(part, lookups))
	}
	return items, nil
}

func itemFromPart(part models.Part, lookups map[ReferenceKind]map[uuid.UUID]string) Item {
	resolve := func(kind ReferenceKind, id *uuid.UUID) string {
		if id == nil {
			return missingName
		}
		if name, ok := lookups[kind][*id]; ok && name != "" {
			return name
		}
		return missingName
	}

	name := part.PartName
	if strings.TrimSpace(name) == "" {
		name = "Unknown Part"
	}
	no := part.PartNo
	if strings.TrimSpace(no) == "" {
		no = "No Part Number"
	}

	return Item{
		ID:           part.ID.String(),
		PartName:     name,
		PartNo:       no,
		Quantity:     part.Quantity,
		CustomerName: resolve(KindCustomerPart, part.CustomerPartID),
		CompanyName:  resolve(KindCompanyPart, part.CompanyPartID),
		UnitName:     resolve(KindUnit, part.UnitID),
		SupplierName: resolve(KindSupplier, part.SupplierID),
		MaterialName: resolve(KindMaterial, part.MaterialID),
		ImportName:   resolve(KindImportSource, part.ImportSourceID),
		LocalName:    resolve(KindLocalSource, part.LocalSourceID),
		MakerName:    resolve(KindMaker, part.MakerID),
		Color:        DefaultTagColor,
	}
}

func (s *service) ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceRow, error) {
	rows, err := s.repo.ListReference(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reference")
	}
	return rows, nil
}

func (s *service) CreateReference(ctx context.Context, kind ReferenceKind, req ReferenceRequest) (*ReferenceRow, error) {
	row, err := s.repo.CreateReference(ctx, kind, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reference")
	}
	return row, nil
}

func (s *service) UpdateReference(ctx context.Context, kind ReferenceKind, id uuid.UUID, req ReferenceRequest) error {
	if err := s.repo.UpdateReference(ctx, kind, id, strings.TrimSpace(req.Name)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reference not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reference")
	}
	return nil
}

func (s *service) DeleteReference(ctx context.Context, kind ReferenceKind, id uuid.UUID) error {
	if err := s.repo.DeleteReference(ctx, kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reference not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete reference")
	}
	return nil
}

func (s *service) CreatePart(ctx context.Context, req PartRequest) (*Item, error) {
	part := req.toModel()
	if err := s.repo.CreatePart(ctx, part); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create part")
	}

	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == part.ID.String() {
			return &items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "created part missing from catalog")
}

func (s *service) UpdatePart(ctx context.Context, id uuid.UUID, req PartRequest) error {
	part, err := s.repo.FindPart(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find part")
	}

	req.apply(part)
	if err := s.repo.UpdatePart(ctx, part); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update part")
	}
	return nil
}

func (s *service) DeletePart(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePart(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete part")
	}
	return nil
}
