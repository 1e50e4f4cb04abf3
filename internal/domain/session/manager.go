package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/providers/storage"
	"github.com/deskforge/deskos/internal/shared/types"
)

const keyPrefix = "session-"

// AppRuntime is the slice of the application runtime used for capture
// and restore.
type AppRuntime interface {
	Instances() []types.InstanceInfo
	Launch(descriptorID string, params map[string]interface{}) (types.InstanceInfo, error)
}

// WindowManager is the slice of the window manager used for capture
// and restore.
type WindowManager interface {
	Get(id string) (types.Window, bool)
	Place(id string, g types.Geometry, state types.WindowState, restore *types.Geometry) bool
	Minimize(id string) bool
}

// WindowSnapshot captures one open window for later restoration.
type WindowSnapshot struct {
	DescriptorID string            `json:"descriptor_id"`
	Geometry     types.Geometry    `json:"geometry"`
	State        types.WindowState `json:"state"`
	Restore      *types.Geometry   `json:"restore,omitempty"`
}

// Session is a saved workspace.
type Session struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	Windows   []WindowSnapshot `json:"windows"`
}

// Manager captures and restores workspace sessions through the
// persistent store.
type Manager struct {
	runtime AppRuntime
	wm      WindowManager
	store   *storage.Store
	log     *logging.Logger
}

// NewManager creates a session manager.
func NewManager(runtime AppRuntime, wm WindowManager, store *storage.Store, log *logging.Logger) *Manager {
	return &Manager{runtime: runtime, wm: wm, store: store, log: log}
}

// Save captures every live instance with its window geometry and
// state.
func (m *Manager) Save(name string) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:        fmt.Sprintf("%s%s", keyPrefix, now.Format("20060102-150405")),
		Name:      name,
		CreatedAt: now,
	}

	for _, info := range m.runtime.Instances() {
		win, ok := m.wm.Get(info.WindowID)
		if !ok {
			continue
		}
		session.Windows = append(session.Windows, WindowSnapshot{
			DescriptorID: info.DescriptorID,
			Geometry:     win.Geometry,
			State:        win.State,
			Restore:      win.Restore,
		})
	}

	if err := m.store.Set(session.ID, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	m.log.Info("session saved", zap.String("id", session.ID), zap.Int("windows", len(session.Windows)))
	return session, nil
}

// Restore relaunches every application captured in a session and puts
// its window back where it was. Launch failures skip the window and
// keep going; they are already reported by the runtime.
func (m *Manager) Restore(sessionID string) (*Session, error) {
	var session Session
	if err := m.store.Get(sessionID, &session); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	for _, snapshot := range session.Windows {
		info, err := m.runtime.Launch(snapshot.DescriptorID, nil)
		if err != nil {
			m.log.Warn("session restore skipped app",
				zap.String("descriptor", snapshot.DescriptorID),
				zap.Error(err),
			)
			continue
		}
		if snapshot.State == types.WindowMinimized {
			m.wm.Place(info.WindowID, snapshot.Geometry, types.WindowNormal, snapshot.Restore)
			m.wm.Minimize(info.WindowID)
			continue
		}
		m.wm.Place(info.WindowID, snapshot.Geometry, snapshot.State, snapshot.Restore)
	}

	m.log.Info("session restored", zap.String("id", session.ID), zap.Int("windows", len(session.Windows)))
	return &session, nil
}

// List returns every saved session id, newest first.
func (m *Manager) List() ([]string, error) {
	keys, err := m.store.Keys()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, key := range keys {
		if strings.HasPrefix(key, keyPrefix) {
			ids = append(ids, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Delete removes a saved session.
func (m *Manager) Delete(sessionID string) error {
	return m.store.Delete(sessionID)
}
