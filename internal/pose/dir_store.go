package pose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DirStore reads and writes the <root>/<action>/<frame>.json layout produced
// by the pose extraction step.
type DirStore struct {
	root string
}

// NewDirStore creates a directory-backed store rooted at root
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root returns the store directory
func (s *DirStore) Root() string {
	return s.root
}

// Actions lists visible action subdirectories
func (s *DirStore) Actions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read pose root: %w", err)
	}

	var actions []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			actions = append(actions, e.Name())
		}
	}
	sort.Strings(actions)
	return actions, nil
}

// LoadFrames reads every visible .json file of the action in name order
func (s *DirStore) LoadFrames(ctx context.Context, action string) ([]Frame, error) {
	dir := filepath.Join(s.root, action)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, dir)
	}

	names, err := frameFiles(dir)
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, 0, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", name, err)
		}
		det, err := DecodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("parse frame %s/%s: %w", action, name, err)
		}

		frames = append(frames, Frame{Index: frameIndex(name, i), Detection: det})
	}
	return frames, nil
}

// PutFrames writes one <index>.json file per frame, creating the action dir
func (s *DirStore) PutFrames(ctx context.Context, action string, frames []Frame) error {
	dir := filepath.Join(s.root, action)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create action dir: %w", err)
	}

	for _, f := range frames {
		data, err := EncodeRecord(f.Detection)
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", f.Index, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%05d.json", f.Index))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Index, err)
		}
	}
	return nil
}

func frameFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read action dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// frameIndex parses "00042.json" as 42, falling back to the file position
func frameIndex(name string, position int) int {
	n, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
	if err != nil {
		return position
	}
	return n
}
