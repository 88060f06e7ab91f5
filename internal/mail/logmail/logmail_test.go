package logmail

import (
	"bytes"
	"context"
	"testing"

	"eventRegistry/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := New(slogdiscard.NewDiscardLogger(), &buf)

	err := sender.Send(context.Background(), "ann@example.com", "Password Reset", "http://localhost/reset/abc")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "To: ann@example.com")
	assert.Contains(t, buf.String(), "Subject: Password Reset")
	assert.Contains(t, buf.String(), "http://localhost/reset/abc")
}
