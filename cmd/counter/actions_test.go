package main

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/we"
)

func TestParseActions(t *testing.T) {
	actions, err := parseActions([]string{"set-diff", "2", "increase", "inc", "todos/ADD", "dec"})
	if assert.Nil(t, err) {
		assert.Equal(t, []we.Action{
			counter.SetDiff(2),
			counter.Increase(),
			counter.Increase(),
			we.RemoteAction{Type: "todos/ADD"},
			counter.Decrease(),
		}, actions)
	}

	_, err = parseActions([]string{"set-diff"})
	assert.NotNil(t, err)

	_, err = parseActions([]string{"set-diff", "two"})
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Contains(t, err.Error(), `invalid diff "two"`)

	_, err = parseActions([]string{"reset"})
	assert.NotNil(t, err)
}
