package tasks

import (
	"testing"

	"lifedrop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTaskCarriesPayload(t *testing.T) {
	in := models.PushPayload{
		Kind:      models.PushRequestAlert,
		DonorID:   "D1",
		RequestID: "R1",
		Token:     "tok",
		Title:     "Urgent: B+ Needed",
		Body:      "Patient Asha at City Hospital needs blood.",
	}
	task, opts, err := NewPushTask(in)
	require.NoError(t, err)
	assert.Equal(t, TypePushSend, task.Type())
	assert.NotEmpty(t, opts)

	out, err := DecodePushPayload(task)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
