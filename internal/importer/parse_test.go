package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwame/agrimarket/internal/types"
)

var parseNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func fullMap() types.ColumnMap {
	return types.ColumnMap{
		types.FieldName:     "Full Name",
		types.FieldLocation: "Region",
		types.FieldPhone:    "Phone",
		types.FieldCropType: "Crop",
	}
}

func TestParseRecords_SingleRow(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Full Name", "Region", "Phone", "Crop"},
		Rows:    [][]string{{"Ama", "Ashanti", "+233200000000", "Maize"}},
	}

	records, err := ParseRecords(table, fullMap())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ama", records[0].Name)
	assert.Equal(t, "Ashanti", records[0].Location)
	assert.Equal(t, "+233200000000", records[0].Phone)
	assert.Equal(t, "Maize", records[0].CropType)
}

func TestParseRecords_EmptyPhoneRowIsSkippedSilently(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Full Name", "Region", "Phone", "Crop"},
		Rows: [][]string{
			{"Ama", "Ashanti", "+233200000000", "Maize"},
			{"Kofi", "Volta", "", "Yam"},
			{"Esi", "Central", "+233270000000", "Cassava"},
		},
	}

	records, err := ParseRecords(table, fullMap())

	require.NoError(t, err)
	// Batch shrinks by exactly one, no error for the skipped row
	assert.Len(t, records, 2)
	assert.Equal(t, "Ama", records[0].Name)
	assert.Equal(t, "Esi", records[1].Name)
}

func TestParseRecords_AllRowsMissingPhone(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Full Name", "Phone"},
		Rows:    [][]string{{"Ama", ""}, {"Kofi", ""}},
	}

	records, err := ParseRecords(table, types.ColumnMap{
		types.FieldName:  "Full Name",
		types.FieldPhone: "Phone",
	})

	var noRecords *NoValidRecordsError
	require.ErrorAs(t, err, &noRecords)
	assert.Equal(t, 2, noRecords.RowCount)
	assert.Nil(t, records)
}

func TestParseRecords_MissingPhoneTargetAborts(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Full Name"},
		Rows:    [][]string{{"Ama"}},
	}

	_, err := ParseRecords(table, types.ColumnMap{types.FieldName: "Full Name"})

	var missing *MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "phone", missing.Field)
}

func TestParseRecords_PhoneMappedToUnknownHeaderAborts(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Full Name"},
		Rows:    [][]string{{"Ama"}},
	}

	_, err := ParseRecords(table, types.ColumnMap{types.FieldPhone: "Telephone"})

	var missing *MissingRequiredFieldError
	assert.ErrorAs(t, err, &missing)
}

func TestParseRecords_NameAndLocationDefaultToTBD(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Phone"},
		Rows:    [][]string{{"+233200000000"}},
	}

	records, err := ParseRecords(table, types.ColumnMap{types.FieldPhone: "Phone"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TBD", records[0].Name)
	assert.Equal(t, "TBD", records[0].Location)
}

func TestParseRecords_FarmSizeParsing(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Phone", "Farm Size"},
		Rows: [][]string{
			{"+233200000000", "2.5"},
			{"+233240000000", "two acres"},
		},
	}

	records, err := ParseRecords(table, types.ColumnMap{
		types.FieldPhone:    "Phone",
		types.FieldFarmSize: "Farm Size",
	})

	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].FarmSize)
	assert.Equal(t, 2.5, *records[0].FarmSize)
	assert.Empty(t, records[0].FarmSizeRaw)

	// Unparseable size is a field-level problem only: the row survives
	assert.Nil(t, records[1].FarmSize)
	assert.Equal(t, "two acres", records[1].FarmSizeRaw)
}

func TestParseRecords_ShortRowsResolveToEmptyCells(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Full Name", "Phone", "Crop"},
		Rows:    [][]string{{"Ama", "+233200000000"}},
	}

	records, err := ParseRecords(table, types.ColumnMap{
		types.FieldName:     "Full Name",
		types.FieldPhone:    "Phone",
		types.FieldCropType: "Crop",
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].CropType)
}

func TestBuildFarmer_SynthesizesOneProduce(t *testing.T) {
	record := types.ImportedFarmerRecord{
		Name:     "Ama",
		Location: "Ashanti",
		Phone:    "+233200000000",
		CropType: "Maize",
	}

	farmer := BuildFarmer(record, parseNow)

	require.Len(t, farmer.Produces, 1)
	assert.Equal(t, "Maize", farmer.Produces[0].Name)
	assert.Equal(t, types.StatusReadyForSale, farmer.Produces[0].Status)
}

func TestBuildFarmer_FutureHarvestIsUpcoming(t *testing.T) {
	harvest := parseNow.AddDate(0, 2, 0)
	record := types.ImportedFarmerRecord{
		Phone:       "+233200000000",
		CropType:    "Cocoa",
		HarvestTime: &harvest,
	}

	farmer := BuildFarmer(record, parseNow)

	require.Len(t, farmer.Produces, 1)
	assert.Equal(t, types.StatusUpcomingHarvest, farmer.Produces[0].Status)
}

func TestBuildFarmer_PastHarvestIsReady(t *testing.T) {
	harvest := parseNow.AddDate(0, -1, 0)
	record := types.ImportedFarmerRecord{
		Phone:       "+233200000000",
		CropType:    "Cocoa",
		HarvestTime: &harvest,
	}

	farmer := BuildFarmer(record, parseNow)

	require.Len(t, farmer.Produces, 1)
	assert.Equal(t, types.StatusReadyForSale, farmer.Produces[0].Status)
}

func TestBuildFarmer_NoCropNoProduce(t *testing.T) {
	farmer := BuildFarmer(types.ImportedFarmerRecord{Phone: "+233200000000"}, parseNow)

	assert.Empty(t, farmer.Produces)
}

func TestParseHarvestTime_Layouts(t *testing.T) {
	for _, raw := range []string{"2026-06-15", "2026-06", "15/06/2026", "June 2026"} {
		parsed, ok := parseHarvestTime(raw)
		assert.True(t, ok, "layout for %q", raw)
		assert.Equal(t, 2026, parsed.Year())
	}

	_, ok := parseHarvestTime("after the rains")
	assert.False(t, ok)
}
