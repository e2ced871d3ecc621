package keepalive

import (
	"context"
	"time"
)

// Session is one live browser session. The probe drives it strictly
// sequentially within an attempt and tears it down at the end of the attempt
// regardless of outcome.
type Session interface {
	// Navigate loads the target URL.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until the document reports ready.
	WaitReady(ctx context.Context) error

	// SelectorVisible reports whether the selector appears within wait.
	SelectorVisible(ctx context.Context, selector string, wait time.Duration) bool

	// Scroll performs a harmless scroll to the bottom and back.
	Scroll(ctx context.Context) error

	// CountClickables enumerates clickable elements without invoking any.
	CountClickables(ctx context.Context) (int, error)

	// FindResumeControl searches for a control whose visible text matches
	// one of texts, within wait. On a match it returns a selector handle
	// for the control.
	FindResumeControl(ctx context.Context, texts []string, wait time.Duration) (handle string, found bool, err error)

	// Click invokes the control behind a handle from FindResumeControl.
	Click(ctx context.Context, handle string) error

	// WaitGone reports whether the control disappears within wait.
	WaitGone(ctx context.Context, handle string, wait time.Duration) bool

	// Close tears the browser down. Errors are advisory.
	Close() error
}
