package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	m := NewMockModel()
	m.AddResponse("thôi việc", "Điều 46 quy định trợ cấp thôi việc.")

	out, err := Complete(context.Background(), m, "Trợ cấp thôi việc là gì?")
	require.NoError(t, err)
	assert.Equal(t, "Điều 46 quy định trợ cấp thôi việc.", out)
}

func TestComplete_Error(t *testing.T) {
	m := NewMockModel()
	m.FailWith(errors.New("over capacity"))

	_, err := Complete(context.Background(), m, "bất kỳ")
	assert.Error(t, err)
}

func TestMockModel_StreamingEmitsPartials(t *testing.T) {
	m := NewMockModel()
	m.AddResponse("chào", "Chào bạn")

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "xin chào", Stream: true})

	var partials strings.Builder
	var final string
	for resp := range respCh {
		if resp.Partial {
			partials.WriteString(resp.Text)
		} else {
			final = resp.Text
		}
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, "Chào bạn", partials.String())
	assert.Equal(t, "Chào bạn", final)
}

func TestMockModel_EmptyCannedResponse(t *testing.T) {
	m := NewMockModel()
	m.AddResponse("trống", "")

	out, err := Complete(context.Background(), m, "phản hồi trống")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
