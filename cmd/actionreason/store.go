package main

import (
	"fmt"

	"github.com/zhe.chen/pose-action-reasoner/internal/pose"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// poseBackend is a store that can also be written to and closed
type poseBackend interface {
	pose.Store
	pose.Writer
	Close() error
}

type dirBackend struct {
	*pose.DirStore
}

func (dirBackend) Close() error { return nil }

// openPoseStore opens the configured pose backend
func openPoseStore(cfg types.PoseConfig) (poseBackend, error) {
	switch cfg.Backend {
	case "dir":
		return dirBackend{pose.NewDirStore(cfg.Dir)}, nil
	case "sqlite":
		store, err := pose.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported pose backend: %s", cfg.Backend)
	}
}
