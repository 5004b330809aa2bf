package stream

import (
	"context"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Replay sends the initial state and then every snapshot of a finished run,
// paced at fps frames per second. A non-positive fps sends without pausing.
func Replay(ctx context.Context, h *Hub, initial dynamo.Snapshot, traj dynamo.Trajectory, fps int) error {
	var tick <-chan time.Time
	if fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	frames := make(dynamo.Trajectory, 0, len(traj)+1)
	frames = append(frames, initial)
	frames = append(frames, traj...)

	for _, s := range frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		h.Send(NewFrame(s))
	}
	return nil
}
