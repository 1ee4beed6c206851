package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanner_DisabledReturnsOriginal(t *testing.T) {
	chat := &fakeChat{response: "rewritten"}
	p := NewPlanner(chat, false)

	assert.Equal(t, "original question", p.Plan(context.Background(), "original question"))
	assert.Zero(t, chat.calls)
}

func TestPlanner_NilChatReturnsOriginal(t *testing.T) {
	p := NewPlanner(nil, true)
	assert.Equal(t, "q", p.Plan(context.Background(), "q"))
}

func TestPlanner_Rewrites(t *testing.T) {
	chat := &fakeChat{response: "  grace period waiting time  "}
	p := NewPlanner(chat, true)

	assert.Equal(t, "grace period waiting time", p.Plan(context.Background(), "what is the grace period?"))
	assert.Equal(t, 1, chat.calls)
}

func TestPlanner_FallsBackOnError(t *testing.T) {
	chat := &fakeChat{err: errors.New("backend down")}
	p := NewPlanner(chat, true)

	assert.Equal(t, "q", p.Plan(context.Background(), "q"))
}

func TestPlanner_FallsBackOnEmptyRewrite(t *testing.T) {
	chat := &fakeChat{response: "   "}
	p := NewPlanner(chat, true)

	assert.Equal(t, "q", p.Plan(context.Background(), "q"))
}
