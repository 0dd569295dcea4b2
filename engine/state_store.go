package engine

import (
	"context"
	"log/slog"
	"strconv"

	"ratereminder/core"
)

const (
	// ContainerName is the settings container holding the reminder record.
	ContainerName = "UniversalRateReminder"

	countKey     = "Count"
	dismissedKey = "Dismissed"
	versionKey   = "AppVersion"
)

// StateStore owns the persisted ReminderState and is its only writer.
type StateStore struct {
	backend   Backend
	container string
	logger    *slog.Logger
}

// StoreOption configures a StateStore.
type StoreOption func(*StateStore)

// WithContainer overrides the container name, e.g. to keep several reminders side by side.
func WithContainer(name string) StoreOption {
	return func(s *StateStore) {
		if name != "" {
			s.container = name
		}
	}
}

// WithStoreLogger sets the logger used for state recovery messages.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *StateStore) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewStateStore(backend Backend, opts ...StoreOption) *StateStore {
	if backend == nil {
		panic("NewStateStore requires a non-nil backend")
	}
	s := &StateStore{backend: backend, container: ContainerName, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load returns the persisted state. A missing container, or a container missing any
// field, is treated as no state yet: the default record is written and returned.
func (s *StateStore) Load(ctx context.Context) (core.ReminderState, error) {
	values, ok, err := s.backend.Get(ctx, s.container)
	if err != nil {
		return core.ReminderState{}, &core.StorageError{Op: "load", Err: err}
	}
	if ok {
		st, complete := decodeState(values)
		if complete {
			return st, nil
		}
		s.logger.Warn("reminder state incomplete, recreating", "container", s.container)
	}
	return s.Reset(ctx)
}

// Save persists all three fields in a single backend write.
func (s *StateStore) Save(ctx context.Context, st core.ReminderState) error {
	if err := st.Validate(); err != nil {
		return &core.StorageError{Op: "save", Err: err}
	}
	if err := s.backend.Put(ctx, s.container, encodeState(st)); err != nil {
		return &core.StorageError{Op: "save", Err: err}
	}
	return nil
}

// Reset discards any existing record and writes the default one. The previous launch
// count and dismissal flag are lost.
func (s *StateStore) Reset(ctx context.Context) (core.ReminderState, error) {
	if err := s.backend.Delete(ctx, s.container); err != nil {
		return core.ReminderState{}, &core.StorageError{Op: "reset", Err: err}
	}
	st := core.DefaultState()
	if err := s.backend.Put(ctx, s.container, encodeState(st)); err != nil {
		return core.ReminderState{}, &core.StorageError{Op: "reset", Err: err}
	}
	return st, nil
}

func encodeState(st core.ReminderState) map[string]string {
	return map[string]string{
		countKey:     strconv.Itoa(st.LaunchCount),
		dismissedKey: strconv.FormatBool(st.Dismissed),
		versionKey:   st.StoredAppVersion,
	}
}

func decodeState(values map[string]string) (core.ReminderState, bool) {
	rawCount, ok1 := values[countKey]
	rawDismissed, ok2 := values[dismissedKey]
	version, ok3 := values[versionKey]
	if !ok1 || !ok2 || !ok3 {
		return core.ReminderState{}, false
	}
	count, err := strconv.Atoi(rawCount)
	if err != nil {
		return core.ReminderState{}, false
	}
	dismissed, err := strconv.ParseBool(rawDismissed)
	if err != nil {
		return core.ReminderState{}, false
	}
	st := core.ReminderState{LaunchCount: count, Dismissed: dismissed, StoredAppVersion: version}
	if st.Validate() != nil {
		return core.ReminderState{}, false
	}
	return st, true
}
