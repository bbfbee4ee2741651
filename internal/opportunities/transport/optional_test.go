package transport

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUpdateRequestAbsentVsNullVsValue(t *testing.T) {
	stageID := uuid.New()
	payload := `{
		"name": "Renewal Q3",
		"stageId": "` + stageID.String() + `",
		"contactId": null,
		"amount": "1250.50"
	}`

	var req UpdateOpportunityRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	// Present with value.
	require.True(t, req.Name.Set)
	require.Equal(t, "Renewal Q3", *req.Name.Value)
	require.True(t, req.StageID.Set)
	require.Equal(t, stageID, *req.StageID.Value)
	require.True(t, req.Amount.Set)
	require.Equal(t, "1250.5", req.Amount.Value.String())

	// Present as explicit null: set, cleared.
	require.True(t, req.ContactID.Set)
	require.Nil(t, req.ContactID.Value)

	// Absent: untouched.
	require.False(t, req.OwnerID.Set)
	require.False(t, req.Status.Set)
	require.False(t, req.Description.Set)
}

func TestOptionalUUIDAcceptsEmptyStringAsClear(t *testing.T) {
	var o OptionalUUID
	require.NoError(t, json.Unmarshal([]byte(`""`), &o))
	require.True(t, o.Set)
	require.Nil(t, o.Value)
}

func TestOptionalDecimalAcceptsNumberAndString(t *testing.T) {
	var fromNumber OptionalDecimal
	require.NoError(t, json.Unmarshal([]byte(`99.95`), &fromNumber))
	require.Equal(t, "99.95", fromNumber.Value.String())

	var fromString OptionalDecimal
	require.NoError(t, json.Unmarshal([]byte(`"99.95"`), &fromString))
	require.Equal(t, "99.95", fromString.Value.String())
}

func TestUpdateRequestMarshalOmitsAbsentFields(t *testing.T) {
	name := "Renewal Q3"
	req := UpdateOpportunityRequest{
		Name:       OptionalString{Value: &name, Set: true},
		LostReason: OptionalString{Value: nil, Set: true},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Renewal Q3","lostReason":null}`, string(data))
}
