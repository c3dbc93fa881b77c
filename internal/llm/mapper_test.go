package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwame/agrimarket/internal/types"
)

// fakeClient returns canned responses without touching the network.
type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) GenerateJSON(_ context.Context, _ string, _ ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeClient) GenerateJSONFromDocument(_ context.Context, _, _ string, _ []byte, _ ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

var mappingHeaders = []string{"Full Name", "Region", "Phone", "Crop"}

func TestSuggestColumnMap_WellFormedResponse(t *testing.T) {
	client := &fakeClient{
		response: `{"name":"Full Name","location":"Region","phone":"Phone","cropType":"Crop","farmSize":null,"harvestTime":null,"email":null,"farmName":null}`,
	}
	mapper := NewColumnMapper(client)

	suggestion, err := mapper.SuggestColumnMap(context.Background(), mappingHeaders)

	require.NoError(t, err)
	assert.Equal(t, types.ColumnMap{
		types.FieldName:     "Full Name",
		types.FieldLocation: "Region",
		types.FieldPhone:    "Phone",
		types.FieldCropType: "Crop",
	}, suggestion)
}

func TestSuggestColumnMap_FenceWrappedResponse(t *testing.T) {
	client := &fakeClient{
		response: "```json\n{\"phone\":\"Phone\"}\n```",
	}
	mapper := NewColumnMapper(client)

	suggestion, err := mapper.SuggestColumnMap(context.Background(), mappingHeaders)

	require.NoError(t, err)
	assert.Equal(t, "Phone", suggestion[types.FieldPhone])
}

func TestSuggestColumnMap_HallucinatedHeadersDropped(t *testing.T) {
	client := &fakeClient{
		response: `{"phone":"Phone","email":"Email Address"}`,
	}
	mapper := NewColumnMapper(client)

	suggestion, err := mapper.SuggestColumnMap(context.Background(), mappingHeaders)

	require.NoError(t, err)
	assert.Equal(t, "Phone", suggestion[types.FieldPhone])
	// "Email Address" is not a real header in this table
	assert.NotContains(t, suggestion, types.FieldEmail)
}

func TestSuggestColumnMap_ProseResponseDegradesToEmptyMap(t *testing.T) {
	client := &fakeClient{
		response: "I could not determine a mapping for these headers.",
	}
	mapper := NewColumnMapper(client)

	suggestion, err := mapper.SuggestColumnMap(context.Background(), mappingHeaders)

	var failure *MappingSuggestionFailure
	require.ErrorAs(t, err, &failure)
	assert.NotNil(t, suggestion)
	assert.Empty(t, suggestion)
}

func TestSuggestColumnMap_CallFailureRetriesOnce(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	mapper := NewColumnMapper(client)

	suggestion, err := mapper.SuggestColumnMap(context.Background(), mappingHeaders)

	var failure *MappingSuggestionFailure
	require.ErrorAs(t, err, &failure)
	assert.Empty(t, suggestion)
	assert.Equal(t, 2, client.calls)
}

func TestSuggestColumnMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mapper := NewColumnMapper(&fakeClient{response: `{}`})
	_, err := mapper.SuggestColumnMap(ctx, mappingHeaders)

	assert.ErrorIs(t, err, context.Canceled)
}
