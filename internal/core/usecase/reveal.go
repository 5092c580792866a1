package usecase

import (
	"context"
	"math/rand/v2"
	"time"
)

// RevealPacer returns the delay before the next chunk of a progressive reveal.
type RevealPacer func() time.Duration

// TypingPacer waits 30ms +/- 10ms per rune, never less than 20ms.
func TypingPacer() RevealPacer {
	return func() time.Duration {
		delay := 30*time.Millisecond + time.Duration(rand.Int64N(int64(20*time.Millisecond))) - 10*time.Millisecond
		if delay < 20*time.Millisecond {
			delay = 20 * time.Millisecond
		}
		return delay
	}
}

// Reveal emits text one rune at a time, pausing between runes. The channel is closed
// after the last rune or as soon as ctx is done.
func Reveal(ctx context.Context, text string, pace RevealPacer) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		first := true
		for _, r := range text {
			if !first && pace != nil {
				timer := time.NewTimer(pace())
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			first = false

			select {
			case <-ctx.Done():
				return
			case out <- string(r):
			}
		}
	}()
	return out
}
