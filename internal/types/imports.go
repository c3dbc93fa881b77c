package types

import (
	"time"

	"github.com/google/uuid"
)

// CanonicalField is one of the fixed target attributes an arbitrary import
// spreadsheet's headers must be mapped onto.
type CanonicalField string

// Canonical import fields
const (
	FieldName        CanonicalField = "name"
	FieldLocation    CanonicalField = "location"
	FieldPhone       CanonicalField = "phone"
	FieldCropType    CanonicalField = "cropType"
	FieldFarmSize    CanonicalField = "farmSize"
	FieldHarvestTime CanonicalField = "harvestTime"
	FieldEmail       CanonicalField = "email"
	FieldFarmName    CanonicalField = "farmName"
)

// CanonicalFields lists the import targets in presentation order.
// FieldPhone is the only required target.
func CanonicalFields() []CanonicalField {
	return []CanonicalField{
		FieldName, FieldLocation, FieldPhone, FieldCropType,
		FieldFarmSize, FieldHarvestTime, FieldEmail, FieldFarmName,
	}
}

// RawTable holds an uploaded delimited file after parsing: the header row as
// it appeared in the source plus the data rows. Immutable once parsed.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnMap associates canonical fields with raw header strings. A field
// absent from the map (or mapped to "") is not imported.
type ColumnMap map[CanonicalField]string

// ImportedFarmerRecord is the result of applying a confirmed ColumnMap to one
// raw row. It has the shape of a newly registered farmer; unmapped optional
// fields carry defaults.
type ImportedFarmerRecord struct {
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	FarmName    string     `json:"farm_name,omitempty"`
	FarmSize    *float64   `json:"farm_size,omitempty"`
	FarmSizeRaw string     `json:"farm_size_raw,omitempty"` // kept when the cell did not parse as a number
	CropType    string     `json:"crop_type,omitempty"`
	HarvestTime *time.Time `json:"harvest_time,omitempty"`
}

// ImportHistoryEntry records one completed (or failed) import session.
type ImportHistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	Kind        string    `json:"kind"` // "csv" or "ocr"
	Status      string    `json:"status"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExtractionFields lists the OCR record keys in canonical order. CSV export
// emits these as the leading columns, in this order.
func ExtractionFields() []string {
	return []string{"name", "phone", "email", "location", "dateOfBirth", "nationalId", "farmName"}
}

// ExtractedRecord is one entity pulled out of a scanned document by the
// OCR collaborator. All fields are optional; Extra keeps any keys the model
// returned beyond the fixed schema so CSV export can carry them through.
type ExtractedRecord struct {
	Name        string            `json:"name,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Email       string            `json:"email,omitempty"`
	Location    string            `json:"location,omitempty"`
	DateOfBirth string            `json:"dateOfBirth,omitempty"`
	NationalID  string            `json:"nationalId,omitempty"`
	FarmName    string            `json:"farmName,omitempty"`
	Extra       map[string]string `json:"-"`
}
