package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/wirasakti/partmap/pkg/db/models"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	parts      []models.Part
	references map[ReferenceKind][]ReferenceRow
	listErr    error
}

func (s *stubRepo) ListParts(context.Context) ([]models.Part, error) {
	return s.parts, nil
}

func (s *stubRepo) FindPart(_ context.Context, id uuid.UUID) (*models.Part, error) {
	for i := range s.parts {
		if s.parts[i].ID == id {
			return &s.parts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) CreatePart(_ context.Context, part *models.Part) error {
	if part.ID == uuid.Nil {
		part.ID = uuid.New()
	}
	s.parts = append(s.parts, *part)
	return nil
}

func (s *stubRepo) UpdatePart(context.Context, *models.Part) error { return nil }

func (s *stubRepo) DeletePart(context.Context, uuid.UUID) error { return nil }

func (s *stubRepo) ListReference(_ context.Context, kind ReferenceKind) ([]ReferenceRow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.references[kind], nil
}

func (s *stubRepo) CreateReference(_ context.Context, kind ReferenceKind, name string) (*ReferenceRow, error) {
	row := ReferenceRow{ID: uuid.New(), Name: name}
	if s.references == nil {
		s.references = map[ReferenceKind][]ReferenceRow{}
	}
	s.references[kind] = append(s.references[kind], row)
	return &row, nil
}

func (s *stubRepo) UpdateReference(context.Context, ReferenceKind, uuid.UUID, string) error {
	return nil
}

func (s *stubRepo) DeleteReference(context.Context, ReferenceKind, uuid.UUID) error {
	return nil
}

func TestItemsResolvesReferenceNames(t *testing.T) {
	materialID := uuid.New()
	supplierID := uuid.New()
	part := models.Part{
		ID:         uuid.New(),
		PartName:   "Bracket",
		PartNo:     "BD010",
		MaterialID: &materialID,
		SupplierID: &supplierID,
	}

	repo := &stubRepo{
		parts: []models.Part{part},
		references: map[ReferenceKind][]ReferenceRow{
			KindMaterial: {{ID: materialID, Name: "Steel"}},
			KindSupplier: {{ID: supplierID, Name: "Acme"}},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	items, err := svc.Items(context.Background())
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	got := items[0]
	if got.MaterialName != "Steel" || got.SupplierName != "Acme" {
		t.Fatalf("expected resolved names, got %q/%q", got.MaterialName, got.SupplierName)
	}
	if got.UnitName != "-" || got.MakerName != "-" {
		t.Fatalf("expected dash fallback for unset references, got %q/%q", got.UnitName, got.MakerName)
	}
	if got.Color != DefaultTagColor {
		t.Fatalf("expected default color, got %q", got.Color)
	}
}

func TestItemsDanglingReferenceFallsBack(t *testing.T) {
	orphan := uuid.New()
	repo := &stubRepo{
		parts: []models.Part{{
			ID:         uuid.New(),
			PartName:   "Washer",
			PartNo:     "W-1",
			MaterialID: &orphan,
		}},
	}
	svc, _ := NewService(repo)

	items, err := svc.Items(context.Background())
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if items[0].MaterialName != "-" {
		t.Fatalf("expected dash for dangling reference, got %q", items[0].MaterialName)
	}
}

func TestItemsLookupFailureIsDependencyError(t *testing.T) {
	repo := &stubRepo{listErr: errors.New("connection refused")}
	svc, _ := NewService(repo)

	_, err := svc.Items(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestItemsBlankNamesGetPlaceholders(t *testing.T) {
	repo := &stubRepo{parts: []models.Part{{ID: uuid.New()}}}
	svc, _ := NewService(repo)

	items, err := svc.Items(context.Background())
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if items[0].PartName != "Unknown Part" {
		t.Fatalf("expected placeholder name, got %q", items[0].PartName)
	}
	if items[0].PartNo != "No Part Number" {
		t.Fatalf("expected placeholder number, got %q", items[0].PartNo)
	}
}

func TestParseReferenceKind(t *testing.T) {
	if _, err := ParseReferenceKind("materials"); err != nil {
		t.Fatalf("expected materials to parse: %v", err)
	}
	if _, err := ParseReferenceKind("orders"); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}
