package redirect

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-enrollment-client/users"
	"github.com/rs/zerolog"
)

const UnauthorizedPath = "/unauthorized"

var dashboardPaths = map[users.RoleType]string{
	users.RoleAdmin:           "/admin/dashboard",
	users.RoleClearingOfficer: "/clearing-officer/dashboard",
	users.RoleStudent:         "/student/dashboard",
}

// DashboardPath maps a role to its landing page. Unknown roles go to UnauthorizedPath.
func DashboardPath(role users.RoleType) string {
	if p, ok := dashboardPaths[role]; ok {
		return p
	}
	return UnauthorizedPath
}

type NavigateOptions struct {
	Replace bool // Replace the current history entry so "back" cannot return to it
}

// Navigator is the UI shell's routing capability.
type Navigator interface {
	GoTo(path string, opts NavigateOptions)
}

type NavigatorFunc func(path string, opts NavigateOptions)

func (f NavigatorFunc) GoTo(path string, opts NavigateOptions) { f(path, opts) }

// Toaster shows a short-lived message to the user.
type Toaster interface {
	Toast(message string)
}

type ToasterFunc func(message string)

func (f ToasterFunc) Toast(message string) { f(message) }

type Config struct {
	LoginPath     string        // Route used with a registered navigator
	LoginURL      string        // Absolute URL used by the fallback navigator
	ToastDelay    time.Duration // Wait before navigating when a toast was shown
	NavigateDelay time.Duration // Wait before navigating otherwise
}

func DefaultConfig() Config {
	return Config{
		LoginPath:     "/login",
		LoginURL:      "/login",
		ToastDelay:    1500 * time.Millisecond,
		NavigateDelay: 100 * time.Millisecond,
	}
}

// Notifier moves the user to the login screen on behalf of code that has no
// access to the UI router. Until the shell registers a Navigator, the
// fallback (a full location change) is used.
type Notifier struct {
	cfg      Config
	toaster  Toaster
	fallback Navigator
	log      zerolog.Logger

	mu           sync.Mutex
	navigator    Navigator
	loginPending bool
	pending      sync.WaitGroup
}

func New(cfg Config, toaster Toaster, fallback Navigator, log zerolog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		toaster:  toaster,
		fallback: fallback,
		log:      log.With().Str("component", "redirect").Logger(),
	}
}

// RegisterNavigator is called by the shell once its router is ready.
func (n *Notifier) RegisterNavigator(nav Navigator) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigator = nav
}

// RedirectToLogin schedules navigation to the login screen, replacing
// history. A message is toasted first when showToast is set, and the
// navigation then waits ToastDelay so it can be read. While a login redirect
// is already scheduled further calls are ignored.
func (n *Notifier) RedirectToLogin(message string, showToast bool) {
	n.mu.Lock()
	if n.loginPending {
		n.mu.Unlock()
		n.log.Debug().Str("message", message).Msg("Login redirect already scheduled")
		return
	}
	n.loginPending = true
	n.pending.Add(1)
	n.mu.Unlock()

	toasted := message != "" && showToast && n.toaster != nil
	if toasted {
		n.toaster.Toast(message)
	}

	delay := n.cfg.NavigateDelay
	if toasted {
		delay = n.cfg.ToastDelay
	}

	time.AfterFunc(delay, func() {
		defer n.pending.Done()
		n.mu.Lock()
		n.loginPending = false
		n.mu.Unlock()
		n.goTo(n.cfg.LoginPath, n.cfg.LoginURL)
	})
}

// RedirectToDashboard navigates straight to the role's landing page.
func (n *Notifier) RedirectToDashboard(role users.RoleType) {
	path := DashboardPath(role)
	n.goTo(path, path)
}

// Wait blocks until every scheduled redirect has run.
func (n *Notifier) Wait() {
	n.pending.Wait()
}

func (n *Notifier) goTo(path, fallbackURL string) {
	n.mu.Lock()
	nav := n.navigator
	n.mu.Unlock()

	opts := NavigateOptions{Replace: true}
	switch {
	case nav != nil:
		nav.GoTo(path, opts)
	case n.fallback != nil:
		n.fallback.GoTo(fallbackURL, opts)
	default:
		n.log.Warn().Str("path", path).Msg("No navigator registered; redirect dropped")
	}
}
