// Package goroutine spawns background work with panic containment.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"paybridge/internal/shared/logger"
)

// SafeGo runs fn on its own goroutine and absorbs any panic. Commit
// subscribers and other off-path work run through here so a fault in a side
// effect can never take down the callback listener. The name tags the log
// entry for the panicking task.
func SafeGo(log logger.Interface, name string, fn func()) {
	if log == nil {
		log = logger.NewLogger()
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("background task panicked",
					"task", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
