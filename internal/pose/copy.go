package pose

import (
	"context"
	"errors"
	"fmt"
)

// CopyStats summarizes a Copy run.
type CopyStats struct {
	Actions int
	Frames  int
	Missing []string
}

// Copy moves every listed action from src into dst. Actions missing from src
// are recorded and skipped. onAction, when set, is called after each action
// with the number of frames copied.
func Copy(ctx context.Context, src Store, dst Writer, actions []string, onAction func(action string, frames int)) (CopyStats, error) {
	var stats CopyStats

	for _, action := range actions {
		frames, err := src.LoadFrames(ctx, action)
		if errors.Is(err, ErrActionNotFound) {
			stats.Missing = append(stats.Missing, action)
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("load %s: %w", action, err)
		}

		if err := dst.PutFrames(ctx, action, frames); err != nil {
			return stats, fmt.Errorf("store %s: %w", action, err)
		}

		stats.Actions++
		stats.Frames += len(frames)
		if onAction != nil {
			onAction(action, len(frames))
		}
	}
	return stats, nil
}
