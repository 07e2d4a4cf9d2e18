package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/model"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want core.RouterDecision
	}{
		{
			name: "well formed law",
			raw:  "INTENT: LAW\nCONFIDENCE: 0.9\nREASONING: Hỏi về trợ cấp thôi việc",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.9, Reasoning: "Hỏi về trợ cấp thôi việc"},
		},
		{
			name: "well formed chat",
			raw:  "INTENT: CHAT\nCONFIDENCE: 0.95\nREASONING: Chào hỏi",
			want: core.RouterDecision{Intent: core.IntentChat, Confidence: 0.95, Reasoning: "Chào hỏi"},
		},
		{
			name: "bracketed template echo",
			raw:  "INTENT: [LAW]\nCONFIDENCE: [0.8]\nREASONING: [Câu hỏi pháp lý]",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.8, Reasoning: "Câu hỏi pháp lý"},
		},
		{
			name: "lowercase intent",
			raw:  "INTENT: chat\nCONFIDENCE: 0.7\nREASONING: ok",
			want: core.RouterDecision{Intent: core.IntentChat, Confidence: 0.7, Reasoning: "ok"},
		},
		{
			name: "missing confidence line falls back",
			raw:  "INTENT: CHAT\nREASONING: ok",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.5, Reasoning: "Parse error"},
		},
		{
			name: "malformed confidence falls back",
			raw:  "INTENT: CHAT\nCONFIDENCE: high\nREASONING: ok",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.5, Reasoning: "Parse error"},
		},
		{
			name: "out of range confidence falls back",
			raw:  "INTENT: LAW\nCONFIDENCE: 1.7",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.5, Reasoning: "Parse error"},
		},
		{
			name: "unknown intent label falls back",
			raw:  "INTENT: LEGAL\nCONFIDENCE: 0.9\nREASONING: whatever",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.5, Reasoning: "Parse error"},
		},
		{
			name: "missing reasoning is fine",
			raw:  "INTENT: CHAT\nCONFIDENCE: 0.8",
			want: core.RouterDecision{Intent: core.IntentChat, Confidence: 0.8},
		},
		{
			name: "free text without structure falls back",
			raw:  "Đây là câu hỏi về luật lao động.",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.5, Reasoning: "Parse error"},
		},
		{
			name: "empty reply falls back",
			raw:  "",
			want: core.RouterDecision{Intent: core.IntentLaw, Confidence: 0.5, Reasoning: "Parse error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecision(tt.raw))
		})
	}
}

func TestSemanticRouter_Classify(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("trợ cấp", "INTENT: LAW\nCONFIDENCE: 0.92\nREASONING: Trợ cấp thôi việc")
	r := NewSemanticRouter(m)

	d, err := r.Classify(context.Background(), "", "Trợ cấp thôi việc tính thế nào?")
	require.NoError(t, err)
	assert.Equal(t, core.IntentLaw, d.Intent)
	assert.InDelta(t, 0.92, d.Confidence, 1e-9)
}

func TestSemanticRouter_ClassifyModelFailure(t *testing.T) {
	m := model.NewMockModel()
	m.FailWith(errors.New("rate limited"))
	r := NewSemanticRouter(m)

	_, err := r.Classify(context.Background(), "", "xin chào")
	require.Error(t, err)
	stage, ok := core.StageOf(err)
	assert.True(t, ok)
	assert.Equal(t, core.StageRoute, stage)
}
