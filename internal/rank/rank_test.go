package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_FirstStrategyWinsDisplay(t *testing.T) {
	t.Parallel()

	transitions := []Suggestion{
		{Command: "git commit", Confidence: 0.4, Type: TypeTransition, Description: "Follows git add"},
	}
	sequence := []Suggestion{
		{Command: "git commit", Confidence: 0.6, Type: TypeSequence, Description: "Statistical prediction"},
	}

	merged := Merge(transitions, sequence)
	assert.Len(t, merged, 1)
	assert.Equal(t, TypeTransition, merged[0].Type)
	assert.Equal(t, "Follows git add", merged[0].Description)
	assert.Equal(t, 0.6, merged[0].Confidence)
}

func TestMerge_DropsEmptyCommands(t *testing.T) {
	t.Parallel()

	merged := Merge([]Suggestion{{Command: "", Confidence: 0.9}})
	assert.Empty(t, merged)
}

func TestTop_SortsAndTruncates(t *testing.T) {
	t.Parallel()

	in := []Suggestion{
		{Command: "a", Confidence: 0.2},
		{Command: "b", Confidence: 0.9},
		{Command: "c", Confidence: 0.5},
	}

	out := Top(in, 2)
	assert.Equal(t, []string{"b", "c"}, []string{out[0].Command, out[1].Command})
}

func TestTop_StableOnTies(t *testing.T) {
	t.Parallel()

	in := []Suggestion{
		{Command: "first", Confidence: 0.5, Type: TypeTransition},
		{Command: "second", Confidence: 0.5, Type: TypeSequence},
	}

	out := Top(in, 0)
	assert.Equal(t, "first", out[0].Command)
	assert.Equal(t, "second", out[1].Command)
}
