package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/kwame/agrimarket/internal/types"
)

// defaultCell is the placeholder used for unmapped or empty name/location cells.
const defaultCell = "TBD"

// harvestLayouts are the date layouts tried, in order, for harvest time cells.
var harvestLayouts = []string{
	"2006-01-02",
	"2006-01",
	"02/01/2006",
	"January 2006",
	time.RFC3339,
}

// ParseRecords applies a confirmed column map to every data row and returns
// the surviving records as one batch.
//
// Rows whose phone cell is empty or unresolved are skipped silently: that is
// a data-quality gate, not a failure. A missing phone target in the map
// itself aborts before any row is processed. Zero surviving rows is an error
// the operator must see.
func ParseRecords(table *types.RawTable, cmap types.ColumnMap) ([]types.ImportedFarmerRecord, error) {
	indexes := resolveIndexes(table.Headers, cmap)

	if _, ok := indexes[types.FieldPhone]; !ok {
		return nil, &MissingRequiredFieldError{Field: string(types.FieldPhone)}
	}

	records := make([]types.ImportedFarmerRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		cell := func(field types.CanonicalField) string {
			idx, ok := indexes[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		phone := cell(types.FieldPhone)
		if phone == "" {
			continue
		}

		record := types.ImportedFarmerRecord{
			Phone:    phone,
			Name:     orDefault(cell(types.FieldName)),
			Location: orDefault(cell(types.FieldLocation)),
			Email:    cell(types.FieldEmail),
			FarmName: cell(types.FieldFarmName),
			CropType: cell(types.FieldCropType),
		}

		if raw := cell(types.FieldFarmSize); raw != "" {
			if size, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64); err == nil {
				record.FarmSize = &size
			} else {
				// Field-level problem only: keep the raw text and carry on
				// with the rest of the row and the batch.
				record.FarmSizeRaw = raw
			}
		}

		if raw := cell(types.FieldHarvestTime); raw != "" {
			if t, ok := parseHarvestTime(raw); ok {
				record.HarvestTime = &t
			}
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, &NoValidRecordsError{RowCount: len(table.Rows)}
	}
	return records, nil
}

// resolveIndexes maps each canonical field in cmap to its column index in the
// header row. Fields mapped to headers that do not exist stay unresolved.
func resolveIndexes(headers []string, cmap types.ColumnMap) map[types.CanonicalField]int {
	indexes := make(map[types.CanonicalField]int)
	for field, header := range cmap {
		if header == "" {
			continue
		}
		for i, h := range headers {
			if h == header {
				indexes[field] = i
				break
			}
		}
	}
	return indexes
}

// orDefault substitutes the TBD placeholder for blank cells.
func orDefault(value string) string {
	if value == "" {
		return defaultCell
	}
	return value
}

// parseHarvestTime tries the known layouts against a raw harvest cell.
func parseHarvestTime(raw string) (time.Time, bool) {
	for _, layout := range harvestLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BuildFarmer converts an imported record into a new farmer profile. When the
// record names a crop type, exactly one produce listing is synthesized with
// defaulted variety, unit, quantity, photos and category; its status is
// upcoming when the harvest time is in the future, ready otherwise.
func BuildFarmer(record types.ImportedFarmerRecord, now time.Time) types.Farmer {
	farmer := types.Farmer{
		Name:                record.Name,
		Location:            record.Location,
		Phone:               record.Phone,
		Email:               record.Email,
		FarmName:            record.FarmName,
		FarmSize:            record.FarmSize,
		ProfileCompleteness: completenessOf(record),
		RegisteredAt:        now,
		UpdatedAt:           now,
	}

	if record.CropType != "" {
		status := types.StatusReadyForSale
		if record.HarvestTime != nil && record.HarvestTime.After(now) {
			status = types.StatusUpcomingHarvest
		}
		farmer.Produces = []types.Produce{{
			Name:        record.CropType,
			Unit:        "unit",
			HarvestTime: record.HarvestTime,
			Status:      status,
			CreatedAt:   now,
		}}
	}

	return farmer
}

// completenessOf measures how much of an imported profile is filled in,
// as the fraction of the six optional profile facets present.
func completenessOf(record types.ImportedFarmerRecord) float64 {
	filled := 0
	if record.Name != "" && record.Name != defaultCell {
		filled++
	}
	if record.Location != "" && record.Location != defaultCell {
		filled++
	}
	if record.Phone != "" {
		filled++
	}
	if record.Email != "" {
		filled++
	}
	if record.FarmName != "" {
		filled++
	}
	if record.FarmSize != nil {
		filled++
	}
	return float64(filled) / 6
}
