package keepalive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/caremetrics/stress-screen/internal/config"
)

const pollInterval = 250 * time.Millisecond

// resumeHandle is the selector handle returned by FindResumeControl; the
// matching element is tagged with this attribute so later waits can address
// it without re-running the text search.
const resumeHandle = `[data-keepalive-resume]`

// chromeSession drives a headless Chrome via chromedp.
type chromeSession struct {
	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromeSession launches a headless browser with the configured
// user-agent and window size. Launch failure fails the attempt, not the
// process.
func NewChromeSession(ctx context.Context, cfg config.KeepAliveConfig) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser process, surfacing launch
	// failures here instead of at first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, eris.Wrap(err, "keepalive: launch browser")
	}

	return &chromeSession{
		browserCtx:  browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

func (s *chromeSession) Navigate(_ context.Context, url string) error {
	if err := chromedp.Run(s.browserCtx, chromedp.Navigate(url)); err != nil {
		return eris.Wrapf(err, "keepalive: navigate %s", url)
	}
	return nil
}

func (s *chromeSession) WaitReady(_ context.Context) error {
	if err := chromedp.Run(s.browserCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return eris.Wrap(err, "keepalive: wait document-ready")
	}
	return nil
}

func (s *chromeSession) SelectorVisible(ctx context.Context, selector string, wait time.Duration) bool {
	js := fmt.Sprintf("document.querySelector(%s) !== null", jsString(selector))
	return s.pollTrue(ctx, js, wait)
}

func (s *chromeSession) Scroll(_ context.Context) error {
	err := chromedp.Run(s.browserCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
	)
	if err != nil {
		return eris.Wrap(err, "keepalive: scroll")
	}
	return nil
}

func (s *chromeSession) CountClickables(_ context.Context) (int, error) {
	var count int
	js := `document.querySelectorAll('a, button, [role="button"], input[type="submit"]').length`
	if err := chromedp.Run(s.browserCtx, chromedp.Evaluate(js, &count)); err != nil {
		return 0, eris.Wrap(err, "keepalive: enumerate clickables")
	}
	return count, nil
}

func (s *chromeSession) FindResumeControl(ctx context.Context, texts []string, wait time.Duration) (string, bool, error) {
	encoded, err := json.Marshal(texts)
	if err != nil {
		return "", false, eris.Wrap(err, "keepalive: encode resume texts")
	}
	// Tag the first control whose visible text matches, so the caller can
	// address it by the stable handle selector.
	js := fmt.Sprintf(`(() => {
		const wanted = %s.map(t => t.toLowerCase());
		const els = document.querySelectorAll('button, a, input[type="button"], input[type="submit"]');
		for (const el of els) {
			const text = ((el.innerText || el.value || '') + '').trim().toLowerCase();
			if (text && wanted.some(w => text.includes(w))) {
				el.setAttribute('data-keepalive-resume', '');
				return true;
			}
		}
		return false;
	})()`, string(encoded))

	deadline := time.Now().Add(wait)
	for {
		var found bool
		if err := chromedp.Run(s.browserCtx, chromedp.Evaluate(js, &found)); err != nil {
			return "", false, eris.Wrap(err, "keepalive: search resume control")
		}
		if found {
			return resumeHandle, true, nil
		}
		if time.Now().After(deadline) {
			return "", false, nil
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (s *chromeSession) Click(_ context.Context, handle string) error {
	if err := chromedp.Run(s.browserCtx, chromedp.Click(handle, chromedp.ByQuery)); err != nil {
		return eris.Wrap(err, "keepalive: click resume control")
	}
	return nil
}

func (s *chromeSession) WaitGone(ctx context.Context, handle string, wait time.Duration) bool {
	js := fmt.Sprintf("document.querySelector(%s) === null", jsString(handle))
	return s.pollTrue(ctx, js, wait)
}

func (s *chromeSession) Close() error {
	// Graceful browser shutdown first, then release the contexts.
	err := chromedp.Cancel(s.browserCtx)
	s.cancelCtx()
	s.cancelAlloc()
	return err
}

// pollTrue evaluates a boolean JS expression until it holds or wait elapses.
func (s *chromeSession) pollTrue(ctx context.Context, js string, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for {
		var ok bool
		if err := chromedp.Run(s.browserCtx, chromedp.Evaluate(js, &ok)); err != nil {
			return false
		}
		if ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
		}
	}
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
