package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"members/internal/members/models"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		kind    models.OperationKind
		wantKey string
	}{
		{models.OperationCreated, "add_member"},
		{models.OperationUpdated, "edit_member"},
		{models.OperationDeleted, "delete_member"},
	}
	for _, tt := range tests {
		t.Run(tt.wantKey, func(t *testing.T) {
			key, value, err := Encode(models.ChangeEvent{EntityID: 42, CorrelationID: "corr-1", Kind: tt.kind})
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, string(key))
			assert.JSONEq(t, `{"entityId":42,"correlationId":"corr-1"}`, string(value))
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"entityId":7,"correlationId":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, Message{EntityID: 7, CorrelationID: "abc"}, m)

	_, err = DecodeMessage([]byte(`not json`))
	assert.Error(t, err)
}
