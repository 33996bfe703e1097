package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// FileHeartbeatRegistry implements domain.HeartbeatRegistry with one JSON
// file per role. The browser extension's native host writes its file; the
// daemon writes its own.
type FileHeartbeatRegistry struct {
	dir string
}

// NewFileHeartbeatRegistry creates a registry storing files in dir.
func NewFileHeartbeatRegistry(dir string) *FileHeartbeatRegistry {
	return &FileHeartbeatRegistry{dir: dir}
}

// Path returns the heartbeat file for role.
func (r *FileHeartbeatRegistry) Path(role domain.HeartbeatRole) string {
	return filepath.Join(r.dir, string(role)+"_heartbeat.json")
}

// Beat writes hb for role under an exclusive lock.
func (r *FileHeartbeatRegistry) Beat(role domain.HeartbeatRole, hb domain.Heartbeat) error {
	if err := os.MkdirAll(r.dir, 0700); err != nil {
		return fmt.Errorf("failed to create heartbeat directory: %w", err)
	}

	path := r.Path(role)
	lockFile, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN) }()

	data, err := json.Marshal(hb)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// Last returns the latest heartbeat for role, or nil if the file is absent.
func (r *FileHeartbeatRegistry) Last(role domain.HeartbeatRole) (*domain.Heartbeat, error) {
	data, err := os.ReadFile(r.Path(role))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var hb domain.Heartbeat
	if err := json.Unmarshal(data, &hb); err != nil {
		return nil, fmt.Errorf("corrupt %s heartbeat: %w", role, err)
	}
	return &hb, nil
}

// atomicWrite writes data to path via a per-process temp file and rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Ensure FileHeartbeatRegistry implements domain.HeartbeatRegistry.
var _ domain.HeartbeatRegistry = (*FileHeartbeatRegistry)(nil)
