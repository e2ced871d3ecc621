package keepalive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caremetrics/stress-screen/internal/config"
)

// fakeSession scripts one browser session for the state-machine tests.
type fakeSession struct {
	navigateErr  error
	readyErr     error
	selectorSeen bool
	scrollErr    error
	clickables   int

	resumeFound bool
	resumeErr   error
	clickErr    error
	goneAfter   bool

	closed   bool
	clicked  bool
	scrolled bool
}

func (f *fakeSession) Navigate(context.Context, string) error { return f.navigateErr }
func (f *fakeSession) WaitReady(context.Context) error        { return f.readyErr }
func (f *fakeSession) SelectorVisible(context.Context, string, time.Duration) bool {
	return f.selectorSeen
}
func (f *fakeSession) Scroll(context.Context) error {
	f.scrolled = true
	return f.scrollErr
}
func (f *fakeSession) CountClickables(context.Context) (int, error) { return f.clickables, nil }
func (f *fakeSession) FindResumeControl(context.Context, []string, time.Duration) (string, bool, error) {
	return "[data-keepalive-resume]", f.resumeFound, f.resumeErr
}
func (f *fakeSession) Click(context.Context, string) error {
	f.clicked = true
	return f.clickErr
}
func (f *fakeSession) WaitGone(context.Context, string, time.Duration) bool { return f.goneAfter }
func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func testProbe(t *testing.T, targetURL string, resume bool, sess *fakeSession) *Probe {
	t.Helper()
	cfg := config.KeepAliveConfig{
		TargetURL:         targetURL,
		MaxAttempts:       2,
		HealthTimeoutSecs: 1,
		SelectorWaitSecs:  1,
		ResumeWaitSecs:    1,
		ContentSelectors:  []string{"main"},
		ResumeTexts:       []string{"Resume app"},
	}
	p, err := New(cfg, resume)
	require.NoError(t, err)
	p.newSession = func(context.Context, config.KeepAliveConfig) (Session, error) {
		return sess, nil
	}
	return p
}

func TestNew_MissingTargetURLIsFatal(t *testing.T) {
	_, err := New(config.KeepAliveConfig{}, false)
	assert.ErrorIs(t, err, ErrMissingTargetURL)
}

func TestRun_HealthCheckFailureIsAdvisory(t *testing.T) {
	// Nothing listens on this address: connection refused.
	sess := &fakeSession{selectorSeen: true, clickables: 3}
	p := testProbe(t, "http://127.0.0.1:1", false, sess)

	err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.scrolled)
	assert.True(t, sess.closed)
}

func TestRun_NoContentMarkersStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sess := &fakeSession{selectorSeen: false}
	p := testProbe(t, srv.URL, false, sess)

	require.NoError(t, p.Run(context.Background()))
}

func TestRun_InertInteractionErrorsSwallowed(t *testing.T) {
	sess := &fakeSession{selectorSeen: true, scrollErr: errors.New("scroll broke")}
	p := testProbe(t, "http://127.0.0.1:1", false, sess)

	require.NoError(t, p.Run(context.Background()))
}

func TestRun_NavigationFailureExhaustsRetries(t *testing.T) {
	sess := &fakeSession{navigateErr: errors.New("net::ERR_CONNECTION_REFUSED")}
	p := testProbe(t, "http://127.0.0.1:1", false, sess)
	p.cfg.InitialBackoffSecs = 0 // keep the test fast; Do applies its 500ms default

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, sess.closed)
}

func TestRun_LaunchFailureFailsAttemptNotProcess(t *testing.T) {
	p := testProbe(t, "http://127.0.0.1:1", false, &fakeSession{})
	p.newSession = func(context.Context, config.KeepAliveConfig) (Session, error) {
		return nil, errors.New("chrome not found")
	}

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestRun_ResumePromptAbsentIsSuccess(t *testing.T) {
	sess := &fakeSession{selectorSeen: true, resumeFound: false}
	p := testProbe(t, "http://127.0.0.1:1", true, sess)

	require.NoError(t, p.Run(context.Background()))
	assert.False(t, sess.clicked)
}

func TestRun_ResumePromptDismissed(t *testing.T) {
	sess := &fakeSession{selectorSeen: true, resumeFound: true, goneAfter: true}
	p := testProbe(t, "http://127.0.0.1:1", true, sess)

	require.NoError(t, p.Run(context.Background()))
	assert.True(t, sess.clicked)
}

func TestRun_ResumePromptSurvivesClickFailsAttempt(t *testing.T) {
	sess := &fakeSession{selectorSeen: true, resumeFound: true, goneAfter: false}
	p := testProbe(t, "http://127.0.0.1:1", true, sess)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not disappear")
	assert.True(t, sess.clicked)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{}

	status, err := HealthCheck(context.Background(), client, srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, err = HealthCheck(context.Background(), client, srv.URL+"/down", time.Second)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	_, err = HealthCheck(context.Background(), client, "http://127.0.0.1:1", time.Second)
	assert.Error(t, err)
}
