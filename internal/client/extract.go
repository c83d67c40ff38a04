package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zhe.chen/pose-action-reasoner/internal/pose"
)

// Estimator produces one detection per image
type Estimator interface {
	Estimate(ctx context.Context, imagePath string) (pose.Detection, error)
}

// ExtractStats summarizes an extraction run
type ExtractStats struct {
	Actions  int
	Frames   int
	NoPerson int
}

var frameExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// FrameDirs lists <framesDir>/<action> folders, keyed by action name with
// any "new_" prefix removed.
func FrameDirs(framesDir string) (map[string]string, error) {
	entries, err := os.ReadDir(framesDir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}

	dirs := make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		action := strings.TrimPrefix(e.Name(), "new_")
		dirs[action] = filepath.Join(framesDir, e.Name())
	}
	return dirs, nil
}

// FrameFiles lists the visible image files of dir in name order
func FrameFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if frameExts[strings.ToLower(filepath.Ext(name))] {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ExtractPoses estimates a pose for every frame under framesDir and writes
// the detections to dst, one action at a time. onFrame is called after each
// frame when set.
func ExtractPoses(ctx context.Context, est Estimator, framesDir string, dst pose.Writer, onFrame func(action string)) (ExtractStats, error) {
	var stats ExtractStats

	dirs, err := FrameDirs(framesDir)
	if err != nil {
		return stats, err
	}
	actions := make([]string, 0, len(dirs))
	for a := range dirs {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	for _, action := range actions {
		files, err := FrameFiles(dirs[action])
		if err != nil {
			return stats, fmt.Errorf("list frames of %s: %w", action, err)
		}

		frames := make([]pose.Frame, 0, len(files))
		for i, file := range files {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			det, err := est.Estimate(ctx, file)
			if err != nil {
				return stats, err
			}
			if det == nil {
				stats.NoPerson++
			}
			frames = append(frames, pose.Frame{Index: i, Detection: det})
			if onFrame != nil {
				onFrame(action)
			}
		}

		if err := dst.PutFrames(ctx, action, frames); err != nil {
			return stats, fmt.Errorf("store poses of %s: %w", action, err)
		}
		stats.Actions++
		stats.Frames += len(frames)
	}
	return stats, nil
}
