package koop

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
)

func TestSnapshotField(t *testing.T) {
	var req RenderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"state":"{\"root\":{}}"}`), &req))
	assert.Equal(t, `{"root":{}}`, string(req.State))

	require.NoError(t, json.Unmarshal([]byte(`{"state": {"root": {}} }`), &req))
	assert.Equal(t, `{"root": {}}`, string(req.State))

	var nullReq RenderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"state":null}`), &nullReq))
	assert.Empty(t, nullReq.State)
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()
	require.NotNil(t, v)

	assert.NoError(t, v.Validate(&MemberRequest{FullName: "Ayşe Nur Kaya", Phone: "+90 (532) 000-00-00", Email: "ayse@example.org"}))
	assert.NoError(t, v.Validate(&MemberRequest{}))

	err := v.Validate(&MemberRequest{FullName: "R2-D2", Email: "ayse"})
	var de apierrors.DefinedError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 5001, de.Code)
	assert.Contains(t, de.Err, "full_name")
	assert.Contains(t, de.Err, "email")

	err = v.Validate(&NewsRequest{Title: "x", Tags: make([]string, 21)})
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Err, "tags")
}

func TestRequestBind(t *testing.T) {
	id := "3f1b5c1e-5d2a-4c6b-9a39-1b0f6c7d8e9f"
	in, err := (&ProjectRequest{Title: "p", FeaturedImageId: &id}).Bind()
	require.NoError(t, err)
	assert.True(t, in.FeaturedImageId.Valid)
	assert.Equal(t, id, in.FeaturedImageId.UUID.String())

	empty := " "
	in, err = (&ProjectRequest{Title: "p", FeaturedImageId: &empty}).Bind()
	require.NoError(t, err)
	assert.False(t, in.FeaturedImageId.Valid)

	_, err = (&BoardMemberRequest{PhotoId: ptr("x")}).Bind()
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest.WithFormattedMessage("photo_id"))
}
