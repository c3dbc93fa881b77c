package importer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kwame/agrimarket/internal/types"
)

// State is a phase of an import session.
type State string

// Import session states. Error is reachable from any state on failure and
// Reset returns to Select from anywhere.
const (
	StateSelect  State = "select"
	StateMapping State = "mapping_in_progress"
	StateReview  State = "review_mapping"
	StatePreview State = "preview"
	StateSuccess State = "success"
	StateFailed  State = "error"
)

// Mapper suggests a column map for a header row. Implemented by the AI
// collaborator in internal/llm; the suggestion is advisory and always passes
// through human review.
type Mapper interface {
	SuggestColumnMap(ctx context.Context, headers []string) (types.ColumnMap, error)
}

// FarmerCreator appends a batch of new farmer profiles to the store.
type FarmerCreator interface {
	CreateFarmers(ctx context.Context, farmers []types.Farmer) ([]types.Farmer, error)
}

// HistoryLogger records completed import attempts.
type HistoryLogger interface {
	LogImport(ctx context.Context, entry types.ImportHistoryEntry) error
}

// Session drives one bulk import from file selection through commit. Exactly
// one session is active per operator; sessions own their working state and
// discard it on reset. Methods are safe for the single-request-at-a-time
// access pattern the HTTP layer provides.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	fileName string
	state    State
	table    *types.RawTable
	colMap   types.ColumnMap
	records  []types.ImportedFarmerRecord
	lastErr  error

	mappingInFlight bool
	now             func() time.Time
}

// NewSession creates an import session in the selection state.
func NewSession() *Session {
	return &Session{
		id:    uuid.New(),
		state: StateSelect,
		now:   time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that moved the session into the error state, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Table returns the parsed raw table, or nil before Begin.
func (s *Session) Table() *types.RawTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// ColumnMap returns the current (suggested or confirmed) column map.
func (s *Session) ColumnMap() types.ColumnMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colMap
}

// Begin validates and parses the selected file, moving the session to the
// mapping state. File gate failures leave the session in selection.
func (s *Session) Begin(fileName string, size int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelect {
		return &StateError{State: s.state, Op: "begin"}
	}
	if err := CheckFile(fileName, size); err != nil {
		return err
	}

	table, err := ParseTable(text)
	if err != nil {
		if empty, ok := err.(*EmptyTableError); ok {
			empty.FileName = fileName
		}
		return err
	}

	s.fileName = fileName
	s.table = table
	s.state = StateMapping
	return nil
}

// RequestMapping asks the AI collaborator for a header mapping and moves the
// session to review. The collaborator is untrusted: any failure degrades to
// an empty map for manual completion and is returned for logging only;
// the session still reaches review.
//
// If ctx is cancelled (the operator abandoned the session mid-request) the
// eventual response is discarded and the session state is left untouched.
func (s *Session) RequestMapping(ctx context.Context, mapper Mapper) (types.ColumnMap, error) {
	s.mu.Lock()
	if s.state != StateMapping {
		s.mu.Unlock()
		return nil, &StateError{State: s.state, Op: "request mapping"}
	}
	if s.mappingInFlight {
		s.mu.Unlock()
		return nil, &StateError{State: s.state, Op: "request mapping (already in flight)"}
	}
	s.mappingInFlight = true
	headers := s.table.Headers
	s.mu.Unlock()

	suggested, mapErr := mapper.SuggestColumnMap(ctx, headers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappingInFlight = false

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if mapErr != nil || suggested == nil {
		suggested = types.ColumnMap{}
	}
	s.colMap = suggested
	s.state = StateReview
	return suggested, mapErr
}

// ConfirmMapping freezes the operator-reviewed column map and parses the
// batch, moving the session to preview. A map without a valid phone target
// is rejected inline; zero surviving records moves the session to error.
func (s *Session) ConfirmMapping(confirmed types.ColumnMap) ([]types.ImportedFarmerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReview {
		return nil, &StateError{State: s.state, Op: "confirm mapping"}
	}

	records, err := ParseRecords(s.table, confirmed)
	if err != nil {
		switch err.(type) {
		case *MissingRequiredFieldError:
			// Blocks progression past review; the operator fixes the map.
			return nil, err
		default:
			s.state = StateFailed
			s.lastErr = err
			return nil, err
		}
	}

	s.colMap = confirmed
	s.records = records
	s.state = StatePreview
	return records, nil
}

// Records returns the parsed batch awaiting confirmation.
func (s *Session) Records() []types.ImportedFarmerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Commit hands the previewed batch to the farmer store and logs the session
// to import history. Only an explicit commit persists anything.
func (s *Session) Commit(ctx context.Context, creator FarmerCreator, history HistoryLogger) ([]types.Farmer, error) {
	s.mu.Lock()
	if s.state != StatePreview {
		s.mu.Unlock()
		return nil, &StateError{State: s.state, Op: "commit"}
	}
	records := s.records
	fileName := s.fileName
	now := s.now()
	s.mu.Unlock()

	farmers := make([]types.Farmer, len(records))
	for i, record := range records {
		farmers[i] = BuildFarmer(record, now)
	}

	created, err := creator.CreateFarmers(ctx, farmers)

	entry := types.ImportHistoryEntry{
		FileName:    fileName,
		Kind:        "csv",
		Status:      "success",
		RecordCount: len(created),
		CreatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		entry.Status = "failed"
		entry.RecordCount = 0
		if history != nil {
			_ = history.LogImport(ctx, entry)
		}
		s.state = StateFailed
		s.lastErr = err
		return nil, err
	}

	if history != nil {
		_ = history.LogImport(ctx, entry)
	}
	s.state = StateSuccess
	return created, nil
}

// Reset discards all working state and returns to selection. Valid from any
// state, including error.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fileName = ""
	s.table = nil
	s.colMap = nil
	s.records = nil
	s.lastErr = nil
	s.mappingInFlight = false
	s.state = StateSelect
}
