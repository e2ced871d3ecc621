// Package keepalive implements the browser probe that periodically visits
// the deployed calculator's URL so the hosting platform does not idle it.
// Each attempt runs a fixed sequence: advisory HTTP health check, browser
// launch, page load, content-marker wait, inert interaction, and (in the
// resume variant) dismissal of the platform's "resume app" prompt. Success
// of the resume variant only means the prompt disappeared; it is a weak
// signal, not a full health check.
package keepalive

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caremetrics/stress-screen/internal/config"
	"github.com/caremetrics/stress-screen/internal/resilience"
)

// ErrMissingTargetURL is the fatal configuration error for a probe started
// without a target URL.
var ErrMissingTargetURL = eris.New("keepalive: target URL is not configured")

// SessionFactory opens a browser session for one attempt.
type SessionFactory func(ctx context.Context, cfg config.KeepAliveConfig) (Session, error)

// Probe drives keep-alive attempts against the target URL, retrying with
// backoff until one succeeds or attempts are exhausted.
type Probe struct {
	cfg        config.KeepAliveConfig
	resume     bool
	http       *http.Client
	newSession SessionFactory
}

// New builds a Probe. resume enables the resume-prompt dismissal variant.
func New(cfg config.KeepAliveConfig, resume bool) (*Probe, error) {
	if cfg.TargetURL == "" {
		return nil, ErrMissingTargetURL
	}
	return &Probe{
		cfg:    cfg,
		resume: resume,
		http: &http.Client{
			Timeout: time.Duration(cfg.HealthTimeoutSecs) * time.Second,
		},
		newSession: NewChromeSession,
	}, nil
}

// Run executes attempts until one succeeds or the retry budget is spent.
// Every attempt failure is retryable; context cancellation stops the loop.
func (p *Probe) Run(ctx context.Context) error {
	retryCfg := resilience.RetryConfig{
		MaxAttempts:    p.cfg.MaxAttempts,
		InitialBackoff: time.Duration(p.cfg.InitialBackoffSecs) * time.Second,
		MaxBackoff:     time.Duration(p.cfg.MaxBackoffSecs) * time.Second,
		Multiplier:     2.0,
		ShouldRetry:    func(error) bool { return true },
		OnRetry:        resilience.RetryLogger("keepalive", "probe"),
	}
	return resilience.Do(ctx, retryCfg, p.attempt)
}

func (p *Probe) attempt(ctx context.Context) error {
	log := zap.L().With(
		zap.String("component", "keepalive"),
		zap.String("url", p.cfg.TargetURL),
	)

	// Advisory only: a failing health check never aborts the attempt.
	timeout := time.Duration(p.cfg.HealthTimeoutSecs) * time.Second
	if status, err := HealthCheck(ctx, p.http, p.cfg.TargetURL, timeout); err != nil {
		log.Warn("health check failed, continuing", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("health check passed", zap.Int("status", status))
	}

	sess, err := p.newSession(ctx, p.cfg)
	if err != nil {
		return eris.Wrap(err, "keepalive: attempt")
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Debug("browser teardown failed", zap.Error(err))
		}
	}()

	if err := sess.Navigate(ctx, p.cfg.TargetURL); err != nil {
		return err
	}
	if err := sess.WaitReady(ctx); err != nil {
		return err
	}

	p.waitForContent(ctx, sess, log)
	p.inertInteraction(ctx, sess, log)

	if p.resume {
		if err := p.dismissResume(ctx, sess, log); err != nil {
			return err
		}
	}

	log.Info("keep-alive attempt succeeded")
	return nil
}

// waitForContent probes the ordered candidate selectors, accepting the first
// that appears. A page with no recognizable marker still counts as loaded,
// but the distinct warning lets operators alert on it.
func (p *Probe) waitForContent(ctx context.Context, sess Session, log *zap.Logger) {
	wait := time.Duration(p.cfg.SelectorWaitSecs) * time.Second
	for _, sel := range p.cfg.ContentSelectors {
		if sess.SelectorVisible(ctx, sel, wait) {
			log.Info("content marker found", zap.String("selector", sel))
			return
		}
	}
	log.Warn("page loaded but no content markers found")
}

// inertInteraction simulates activity without invoking anything. Failures
// here are swallowed: they never fail the attempt.
func (p *Probe) inertInteraction(ctx context.Context, sess Session, log *zap.Logger) {
	if err := sess.Scroll(ctx); err != nil {
		log.Debug("scroll failed", zap.Error(err))
	}
	count, err := sess.CountClickables(ctx)
	if err != nil {
		log.Debug("clickable enumeration failed", zap.Error(err))
		return
	}
	log.Info("enumerated clickable elements", zap.Int("count", count))
}

// dismissResume searches for the platform's resume control. Absence within
// the wait means the app is already active and counts as success; a control
// that is clicked but does not disappear fails the attempt.
func (p *Probe) dismissResume(ctx context.Context, sess Session, log *zap.Logger) error {
	wait := time.Duration(p.cfg.ResumeWaitSecs) * time.Second
	handle, found, err := sess.FindResumeControl(ctx, p.cfg.ResumeTexts, wait)
	if err != nil {
		return err
	}
	if !found {
		log.Info("no resume prompt found, app already active")
		return nil
	}

	log.Info("resume prompt found, clicking")
	if err := sess.Click(ctx, handle); err != nil {
		return err
	}
	if !sess.WaitGone(ctx, handle, wait) {
		return eris.New("keepalive: resume prompt did not disappear after click")
	}
	log.Info("resume prompt dismissed")
	return nil
}
