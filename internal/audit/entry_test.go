package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChangesRoundTripStageTransition(t *testing.T) {
	from := uuid.New()
	to := uuid.New()

	data, err := json.Marshal(StageTransition(from, to))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "stageTransition", decoded["kind"])
	require.Equal(t, from.String(), decoded["from"])
	require.Equal(t, to.String(), decoded["to"])
	require.NotContains(t, decoded, "payload")

	var restored Changes
	require.NoError(t, json.Unmarshal(data, &restored))
	require.Equal(t, ChangeKindStageTransition, restored.Kind)
	require.Equal(t, from, restored.From)
	require.Equal(t, to, restored.To)
}

func TestChangesRoundTripRawPayload(t *testing.T) {
	changes, err := Raw(map[string]any{"name": "Acme expansion", "amount": "1200.50"})
	require.NoError(t, err)

	data, err := json.Marshal(changes)
	require.NoError(t, err)

	var restored Changes
	require.NoError(t, json.Unmarshal(data, &restored))
	require.Equal(t, ChangeKindRaw, restored.Kind)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(restored.Payload, &payload))
	require.Equal(t, "Acme expansion", payload["name"])
}

func TestScanEntriesDecodesExplicitJSONNull(t *testing.T) {
	rows := &fakeRows{rows: [][]any{
		{uuid.New(), "Opportunity", uuid.New(), ActionDelete, (*uuid.UUID)(nil), (*uuid.UUID)(nil), []byte("null"), time.Now()},
	}}

	entries, err := scanEntries(rows)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].Changes)
	require.Equal(t, ActionDelete, entries[0].Action)
}

// fakeRows feeds pre-baked rows into scanEntries without a database.
type fakeRows struct {
	rows [][]any
	pos  int
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]
	// Column order mirrors the repository queries.
	*dest[0].(*uuid.UUID) = row[0].(uuid.UUID)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*uuid.UUID) = row[2].(uuid.UUID)
	*dest[3].(*Action) = row[3].(Action)
	*dest[4].(**uuid.UUID) = row[4].(*uuid.UUID)
	*dest[5].(**uuid.UUID) = row[5].(*uuid.UUID)
	*dest[6].(*[]byte) = row[6].([]byte)
	*dest[7].(*time.Time) = row[7].(time.Time)
	return nil
}

func (f *fakeRows) Err() error { return nil }
