package apitable

import "sync"

// Tracker reports user actions to an analytics sink. Reports are fire and
// forget; implementations must not block and swallow their own failures.
type Tracker interface {
	Track(category, action string)
}

type NopTracker struct{}

func (NopTracker) Track(category, action string) {}

// LogTracker writes every event to a logger.
type LogTracker struct {
	Logger Logger
}

func (t LogTracker) Track(category, action string) {
	if t.Logger != nil {
		t.Logger.Printf("event=Track\tcategory=%s\taction=%s", category, action)
	}
}

// RecordingTracker keeps the tracked actions in memory.
type RecordingTracker struct {
	mu      sync.Mutex
	actions []string
}

func (t *RecordingTracker) Track(category, action string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions = append(t.actions, category+"/"+action)
}

func (t *RecordingTracker) Actions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.actions...)
}

// Navigator moves the user to another view.
type Navigator interface {
	Push(path string)
}

type NopNavigator struct{}

func (NopNavigator) Push(path string) {}

// RecordingNavigator keeps the pushed paths in memory.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *RecordingNavigator) Push(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.paths...)
}
