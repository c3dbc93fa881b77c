package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwame/agrimarket/internal/types"
)

const sessionCSV = "Full Name,Region,Phone,Crop\nAma,Ashanti,+233200000000,Maize\n"

// stubMapper returns a fixed suggestion or error.
type stubMapper struct {
	suggestion types.ColumnMap
	err        error
}

func (m *stubMapper) SuggestColumnMap(_ context.Context, _ []string) (types.ColumnMap, error) {
	return m.suggestion, m.err
}

// memoryCreator collects committed farmers in memory.
type memoryCreator struct {
	created []types.Farmer
	err     error
}

func (c *memoryCreator) CreateFarmers(_ context.Context, farmers []types.Farmer) ([]types.Farmer, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, farmers...)
	return farmers, nil
}

// memoryHistory collects history entries in memory.
type memoryHistory struct {
	entries []types.ImportHistoryEntry
}

func (h *memoryHistory) LogImport(_ context.Context, entry types.ImportHistoryEntry) error {
	h.entries = append(h.entries, entry)
	return nil
}

func advanceToReview(t *testing.T, mapper Mapper) *Session {
	t.Helper()
	session := NewSession()
	require.NoError(t, session.Begin("farmers.csv", int64(len(sessionCSV)), sessionCSV))
	_, _ = session.RequestMapping(context.Background(), mapper)
	require.Equal(t, StateReview, session.State())
	return session
}

func TestSession_HappyPath(t *testing.T) {
	mapper := &stubMapper{suggestion: fullMap()}
	session := NewSession()

	assert.Equal(t, StateSelect, session.State())

	require.NoError(t, session.Begin("farmers.csv", int64(len(sessionCSV)), sessionCSV))
	assert.Equal(t, StateMapping, session.State())

	suggested, err := session.RequestMapping(context.Background(), mapper)
	require.NoError(t, err)
	assert.Equal(t, "Phone", suggested[types.FieldPhone])
	assert.Equal(t, StateReview, session.State())

	records, err := session.ConfirmMapping(suggested)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatePreview, session.State())

	creator := &memoryCreator{}
	history := &memoryHistory{}
	created, err := session.Commit(context.Background(), creator, history)
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, StateSuccess, session.State())

	require.Len(t, history.entries, 1)
	assert.Equal(t, "farmers.csv", history.entries[0].FileName)
	assert.Equal(t, "success", history.entries[0].Status)
	assert.Equal(t, 1, history.entries[0].RecordCount)
}

func TestSession_FileGateFailuresStayInSelect(t *testing.T) {
	session := NewSession()

	err := session.Begin("farmers.pdf", 10, sessionCSV)
	var typeErr *InvalidFileTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, StateSelect, session.State())

	err = session.Begin("farmers.csv", MaxFileSize+1, sessionCSV)
	var sizeErr *FileSizeExceededError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, StateSelect, session.State())
}

func TestSession_MapperFailureDegradesToEmptyMap(t *testing.T) {
	mapper := &stubMapper{err: errors.New("model returned prose instead of JSON")}
	session := NewSession()
	require.NoError(t, session.Begin("farmers.csv", int64(len(sessionCSV)), sessionCSV))

	suggested, err := session.RequestMapping(context.Background(), mapper)

	// The failure is reported for logging but the session still reaches
	// review with an empty map: the operator is the safety net.
	assert.Error(t, err)
	assert.Empty(t, suggested)
	assert.Equal(t, StateReview, session.State())
}

func TestSession_CancelledMappingLeavesStateUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mapper := &stubMapper{suggestion: fullMap()}
	session := NewSession()
	require.NoError(t, session.Begin("farmers.csv", int64(len(sessionCSV)), sessionCSV))

	_, err := session.RequestMapping(ctx, mapper)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateMapping, session.State())
	assert.Nil(t, session.ColumnMap())
}

func TestSession_ConfirmWithoutPhoneStaysInReview(t *testing.T) {
	session := advanceToReview(t, &stubMapper{suggestion: types.ColumnMap{}})

	_, err := session.ConfirmMapping(types.ColumnMap{types.FieldName: "Full Name"})

	var missing *MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, StateReview, session.State())
}

func TestSession_NoValidRecordsMovesToError(t *testing.T) {
	csvText := "Full Name,Phone\nAma,\nKofi,\n"
	session := NewSession()
	require.NoError(t, session.Begin("farmers.csv", int64(len(csvText)), csvText))
	_, _ = session.RequestMapping(context.Background(), &stubMapper{suggestion: types.ColumnMap{}})

	_, err := session.ConfirmMapping(types.ColumnMap{types.FieldPhone: "Phone"})

	var noRecords *NoValidRecordsError
	require.ErrorAs(t, err, &noRecords)
	assert.Equal(t, StateFailed, session.State())
	assert.ErrorAs(t, session.Err(), &noRecords)
}

func TestSession_CommitFailureLogsFailedEntry(t *testing.T) {
	session := advanceToReview(t, &stubMapper{suggestion: fullMap()})
	_, err := session.ConfirmMapping(fullMap())
	require.NoError(t, err)

	creator := &memoryCreator{err: errors.New("store unavailable")}
	history := &memoryHistory{}
	_, err = session.Commit(context.Background(), creator, history)

	assert.Error(t, err)
	assert.Equal(t, StateFailed, session.State())
	require.Len(t, history.entries, 1)
	assert.Equal(t, "failed", history.entries[0].Status)
	assert.Equal(t, 0, history.entries[0].RecordCount)
}

func TestSession_ResetFromAnyState(t *testing.T) {
	session := advanceToReview(t, &stubMapper{suggestion: fullMap()})

	session.Reset()

	assert.Equal(t, StateSelect, session.State())
	assert.Nil(t, session.Table())
	assert.Nil(t, session.ColumnMap())
	assert.Empty(t, session.Records())
	assert.NoError(t, session.Err())
}

func TestSession_OperationsOutOfOrderAreRejected(t *testing.T) {
	session := NewSession()

	_, err := session.ConfirmMapping(fullMap())
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)

	_, err = session.Commit(context.Background(), &memoryCreator{}, &memoryHistory{})
	assert.ErrorAs(t, err, &stateErr)
}
