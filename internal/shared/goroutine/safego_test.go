package goroutine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"paybridge/internal/shared/logger"
)

func TestSafeGo(t *testing.T) {
	t.Run("runs the task", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		ran := false
		SafeGo(logger.NewLogger(), "unit-task", func() {
			defer wg.Done()
			ran = true
		})

		wg.Wait()
		assert.True(t, ran)
	})

	t.Run("absorbs a panic", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		SafeGo(nil, "panicking-task", func() {
			defer wg.Done()
			panic("subscriber fault")
		})

		// Reaching here without the process dying is the assertion.
		wg.Wait()
	})
}
