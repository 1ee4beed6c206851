package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/querydoc/pkg/llm"
)

type fakeChat struct {
	response string
	err      error
	calls    int
}

func (f *fakeChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeChat) Generate(_ context.Context, _ string, _ string) (*llm.GenerateResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Content: f.response}, nil
}

func (f *fakeChat) Name() string { return "fake" }

func TestSynthesize_EmptyContextShortCircuits(t *testing.T) {
	chat := &fakeChat{response: "should not be called"}
	s := NewSynthesizer(chat)

	answer, grounded, err := s.Synthesize(context.Background(), "what is this?", "   ")
	require.NoError(t, err)
	assert.Equal(t, NotMentionedAnswer, answer)
	assert.False(t, grounded)
	assert.Zero(t, chat.calls, "model must not be called for empty context")
}

func TestSynthesize_GroundedAnswer(t *testing.T) {
	chat := &fakeChat{response: "The policy covers 30 days."}
	s := NewSynthesizer(chat)

	answer, grounded, err := s.Synthesize(context.Background(), "coverage?", "some context")
	require.NoError(t, err)
	assert.Equal(t, "The policy covers 30 days.", answer)
	assert.True(t, grounded)
}

func TestSynthesize_NotMentionedIsUngrounded(t *testing.T) {
	chat := &fakeChat{response: "  not mentioned in the document  "}
	s := NewSynthesizer(chat)

	answer, grounded, err := s.Synthesize(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.False(t, grounded)
	assert.NotEmpty(t, answer)
}

func TestSynthesize_EmptyCompletion(t *testing.T) {
	chat := &fakeChat{response: "   "}
	s := NewSynthesizer(chat)

	answer, grounded, err := s.Synthesize(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "No answer generated.", answer)
	assert.True(t, grounded, "placeholder is not the sentinel")
}

func TestSynthesize_StripsThinkBlocks(t *testing.T) {
	chat := &fakeChat{response: "<think>reasoning here\nmore lines</think>The answer is 42."}
	s := NewSynthesizer(chat)

	answer, grounded, err := s.Synthesize(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", answer)
	assert.True(t, grounded)
}

func TestSynthesize_ModelError(t *testing.T) {
	chat := &fakeChat{err: errors.New("backend down")}
	s := NewSynthesizer(chat)

	_, _, err := s.Synthesize(context.Background(), "q", "ctx")
	require.Error(t, err)
}

func TestIsNotMentioned(t *testing.T) {
	tests := []struct {
		answer   string
		expected bool
	}{
		{"Not mentioned in the document.", true},
		{"not mentioned in the document", true},
		{"NOT MENTIONED IN THE DOCUMENT!", true},
		{"  Not mentioned in the document.  ", true},
		{"Not mentioned in the document, but here is a guess.", false},
		{"The grace period is 30 days.", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsNotMentioned(tt.answer), "answer: %q", tt.answer)
	}
}
