package catalog

// Item is the denormalized catalog record consumed by the tagging engine.
// Every categorical attribute arrives resolved to a display string; a
// missing reference resolves to "-". Items are read-only once fetched.
type Item struct {
	ID       string `json:"id"`
	PartName string `json:"part_name"`
	PartNo   string `json:"part_no"`
	Quantity int    `json:"quantity"`

	CustomerName string `json:"customer_name"`
	CompanyName  string `json:"company_name"`
	UnitName     string `json:"unit_name"`
	SupplierName string `json:"supplier_name"`
	MaterialName string `json:"material_name"`
	ImportName   string `json:"import_name"`
	LocalName    string `json:"local_name"`
	MakerName    string `json:"maker_name"`

	Color string `json:"color"`
}

// DisplayFields returns every string shown for the item, in the order the
// dropdown lists them. Search matches against all of them.
func (i Item) DisplayFields() []string {
	return []string{
		i.PartName,
		i.PartNo,
		i.CustomerName,
		i.CompanyName,
		i.UnitName,
		i.SupplierName,
		i.MaterialName,
		i.ImportName,
		i.LocalName,
		i.MakerName,
	}
}
