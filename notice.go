package formflow

import "sync"

// Variant distinguishes informational notices from failures.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a transient user facing message, rendered by the front end as a
// toast or a printed line.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives notices. Notify may be called from the goroutine that
// resolved a suggestion, so implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// NoticeLog collects notices in memory.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n.
func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	l.notices = append(l.notices, n)
	l.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (l *NoticeLog) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}
