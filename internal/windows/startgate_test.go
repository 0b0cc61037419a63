package windows

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartGate_AbandonBeforeEnter(t *testing.T) {
	t.Parallel()

	var g startGate

	assert.Equal(t, gatePending, g.abandon())
	assert.False(t, g.enter(), "a thread must not install after its starter gave up")
	assert.False(t, g.publish())
}

func TestStartGate_AbandonDuringInstall(t *testing.T) {
	t.Parallel()

	var g startGate

	assert.True(t, g.enter())
	assert.Equal(t, gateInstalling, g.abandon())
	assert.False(t, g.publish(), "an installed thread must unwind when nobody is waiting")
}

func TestStartGate_PublishedResultWins(t *testing.T) {
	t.Parallel()

	var g startGate

	assert.True(t, g.enter())
	assert.True(t, g.publish())
	assert.Equal(t, gatePublished, g.abandon(), "a late timeout must still collect the result")
	assert.Equal(t, gatePublished, g.abandon())
}

func TestStartGate_ExactlyOneSideWins(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		var g startGate
		var published bool
		var found gateState

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			published = g.enter() && g.publish()
		}()

		go func() {
			defer wg.Done()
			found = g.abandon()
		}()

		wg.Wait()

		// the starter reads the result exactly when the thread kept it
		assert.Equal(t, published, found == gatePublished)
	}
}
