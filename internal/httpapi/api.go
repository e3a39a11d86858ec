package httpapi

import (
	"crypto/rand"
	"log/slog"

	"spelling-bee/internal/quiz"
	"spelling-bee/internal/roster"
)

const defaultMaxUploadBytes = 4 << 20

type Options struct {
	// SessionSecret signs the session cookie. A random key is generated when
	// empty, which invalidates cookies on every restart.
	SessionSecret []byte
	// AdminPasswordHash is a bcrypt hash; admin routes are open when empty.
	AdminPasswordHash string
	ImportPolicy      roster.ImportPolicy
	MaxUploadBytes    int64
	Logger            *slog.Logger
}

type API struct {
	roster   *roster.Service
	quiz     *quiz.Controller
	sessions *quiz.SessionStore
	cookies  sessionCodec

	adminHash      []byte
	importPolicy   roster.ImportPolicy
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewAPI(rosterService *roster.Service, controller *quiz.Controller, sessions *quiz.SessionStore, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	secret := opts.SessionSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		logger.Warn("no session secret configured, using a random key")
	}

	policy := opts.ImportPolicy
	if policy == "" {
		policy = roster.ImportSkip
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	return &API{
		roster:         rosterService,
		quiz:           controller,
		sessions:       sessions,
		cookies:        sessionCodec{secret: secret},
		adminHash:      []byte(opts.AdminPasswordHash),
		importPolicy:   policy,
		maxUploadBytes: maxUpload,
		logger:         logger,
	}
}
