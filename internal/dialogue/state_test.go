package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateNames(t *testing.T) {
	states := []State{
		Start{},
		AwaitingName{},
		MenuSelection{Name: "Ann"},
		AwaitingSoccerChoice{Name: "Ann"},
		AwaitingMovieChoice{Name: "Ann"},
		AwaitingCryptoChoice{Name: "Ann"},
		AwaitingPromptChoice{Context: "chat"},
	}

	seen := make(map[string]bool)
	for _, st := range states {
		name := st.StateName()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate state name %q", name)
		seen[name] = true
	}

	// The user's name travels with the menu states.
	assert.Equal(t, "menu_selection", MenuSelection{Name: "Ann"}.StateName())
	assert.Equal(t, "Ann", AwaitingMovieChoice{Name: "Ann"}.Name)
}

func TestIsStart(t *testing.T) {
	assert.True(t, IsStart(nil))
	assert.True(t, IsStart(Start{}))
	assert.False(t, IsStart(AwaitingName{}))
}
