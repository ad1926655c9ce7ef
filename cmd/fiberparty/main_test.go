package main

import (
	"bytes"
	"testing"

	"github.com/delaneyj/fiberparty/reconciler"
	"github.com/delaneyj/fiberparty/scenario"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, logiface.LevelDebug, lvl)

	lvl, err = parseLevel("disabled")
	require.NoError(t, err)
	assert.Equal(t, logiface.LevelDisabled, lvl)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

// reversing three keyed items moves the two that came before the last one
func TestBenchRigReverse(t *testing.T) {
	rig := newBenchRig(nil)
	label := func(item int) string { return string(rune('a' + item)) }

	n, err := rig.render(benchList([]int{0, 1, 2}, label), reconciler.SyncLane)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = rig.render(benchList([]int{2, 1, 0}, label), reconciler.SyncLane)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "<ul><li>c</li><li>b</li><li>a</li></ul>", rig.host.Markup())
}

func TestRenderStepsPlain(t *testing.T) {
	var buf bytes.Buffer
	renderSteps(&buf, "demo", []scenario.Result{
		{Step: 0, Lane: "sync", Mutations: []string{"append ul6 -> #root1"}, Commits: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "append ul6 -> #root1")
	assert.NotContains(t, out, "\x1b[")
}
