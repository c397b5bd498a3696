package catalog

import (
	"github.com/google/uuid"
	"github.com/wirasakti/partmap/pkg/db/models"
)

// ReferenceRequest names or renames a lookup row.
type ReferenceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// PartRequest creates or replaces a master part record.
type PartRequest struct {
	PartName string `json:"part_name" validate:"required,min=1,max=200"`
	PartNo   string `json:"part_no" validate:"required,min=1,max=100"`
	Quantity int    `json:"quantity" validate:"min=0"`

	CustomerPartID *uuid.UUID `json:"customer_part_id,omitempty"`
	CompanyPartID  *uuid.UUID `json:"company_part_id,omitempty"`
	UnitID         *uuid.UUID `json:"unit_id,omitempty"`
	SupplierID     *uuid.UUID `json:"supplier_id,omitempty"`
	MaterialID     *uuid.UUID `json:"material_id,omitempty"`
	ImportSourceID *uuid.UUID `json:"import_source_id,omitempty"`
	LocalSourceID  *uuid.UUID `json:"local_source_id,omitempty"`
	MakerID        *uuid.UUID `json:"maker_id,omitempty"`
}

func (r PartRequest) toModel() *models.Part {
	part := &models.Part{}
	r.apply(part)
	return part
}

func (r PartRequest) apply(part *models.Part) {
	part.PartName = r.PartName
	part.PartNo = r.PartNo
	part.Quantity = r.Quantity
	part.CustomerPartID = r.CustomerPartID
	part.CompanyPartID = r.CompanyPartID
	part.UnitID = r.UnitID
	part.SupplierID = r.SupplierID
	part.MaterialID = r.MaterialID
	part.ImportSourceID = r.ImportSourceID
	part.LocalSourceID = r.LocalSourceID
	part.MakerID = r.MakerID
}
