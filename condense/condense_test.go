package condense

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/model"
)

func TestCondenser_EmptyHistoryPassesThrough(t *testing.T) {
	m := model.NewMockModel()
	m.FailWith(errors.New("should not be called"))
	c := NewCondenser(m)

	out, err := c.Condense(context.Background(), "", "Trợ cấp thôi việc là gì?")
	require.NoError(t, err)
	assert.Equal(t, "Trợ cấp thôi việc là gì?", out)
}

func TestCondenser_RewritesFollowUp(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Còn khi sáp nhập", "  Trợ cấp mất việc làm khi công ty sáp nhập được tính như thế nào?\n")
	c := NewCondenser(m)

	out, err := c.Condense(context.Background(), "Người dùng: trợ cấp thôi việc?", "Còn khi sáp nhập thì sao?")
	require.NoError(t, err)
	assert.Equal(t, "Trợ cấp mất việc làm khi công ty sáp nhập được tính như thế nào?", out)
}

func TestCondenser_EmptyRewriteFallsBack(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Còn nghỉ thai sản", "   \n")
	c := NewCondenser(m)

	out, err := c.Condense(context.Background(), "Người dùng: lương tối thiểu?", "Còn nghỉ thai sản?")
	require.NoError(t, err)
	assert.Equal(t, "Còn nghỉ thai sản?", out)
}

func TestCondenser_ModelFailure(t *testing.T) {
	m := model.NewMockModel()
	m.FailWith(errors.New("timeout"))
	c := NewCondenser(m)

	_, err := c.Condense(context.Background(), "Người dùng: xin chào", "còn gì nữa?")
	require.Error(t, err)
	stage, ok := core.StageOf(err)
	assert.True(t, ok)
	assert.Equal(t, core.StageCondense, stage)
}
