// Package devserver is an in-memory stand-in for the SOS alert server. It
// serves the same JSON endpoints the client calls (login, register,
// logout, send_sos_email, get_helpers), keeps accounts in memory with
// bcrypt password hashes, tracks sign-in with a gorilla/sessions cookie and
// hands SOS emails to a Mailer instead of an SMTP relay.
package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"distress/internal/api"
	"distress/internal/geo"
	"distress/internal/helpers"
	"distress/internal/session"
)

const (
	sessionName = "distress_session"
	keyUserID   = "user_id"
)

// Response messages.
const (
	MsgBadCredentials = "Invalid email or password"
	MsgNotLoggedIn    = "Not logged in"
	MsgEmailTaken     = "Email already registered"
	MsgRegistered     = "Registration successful"
	MsgSOSSent        = "SOS sent"
)

// badRequest is a registration problem reported to the client verbatim.
type badRequest string

func (b badRequest) Error() string { return string(b) }

var (
	errMissingFields = badRequest("Name, email and password are required")
	errEmailTaken    = errors.New("email already registered")
)

type account struct {
	user session.User
	hash []byte
}

// Server handles the client API.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // by email
	nextID   int

	store  *sessions.CookieStore
	mailer Mailer
	logger *slog.Logger
	cost   int
	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMailer sets where SOS emails go. The default is a fresh Outbox.
func WithMailer(m Mailer) Option {
	return func(s *Server) { s.mailer = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBcryptCost overrides the password hashing cost (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

// New creates a server whose session cookies are signed with secret.
func New(secret []byte, opts ...Option) (*Server, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes, got %d", len(secret))
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	s := &Server{
		accounts: make(map[string]*account),
		nextID:   1,
		store:    store,
		mailer:   &Outbox{},
		logger:   slog.Default(),
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLog)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/send_sos_email", s.handleSendSOS).Methods(http.MethodPost)
	r.HandleFunc("/get_helpers", s.handleHelpers).Methods(http.MethodGet)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mailer returns the configured mailer.
func (s *Server) Mailer() Mailer {
	return s.mailer
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(api.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(api.RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", id,
			"elapsed", time.Since(start),
		)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	acct, err := s.register(req)
	var bad badRequest
	switch {
	case errors.As(err, &bad):
		fail(w, http.StatusBadRequest, bad.Error())
	case errors.Is(err, errEmailTaken):
		fail(w, http.StatusConflict, MsgEmailTaken)
	case err != nil:
		s.logger.Error("register failed", "error", err)
		fail(w, http.StatusInternalServerError, "Registration failed")
	default:
		s.logger.Info("account registered", "id", acct.user.ID, "email", acct.user.Email)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": MsgRegistered})
	}
}

func (s *Server) register(req api.Registration) (*account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		return nil, errMissingFields
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(req.Latitude), 64)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("Invalid latitude %q", req.Latitude))
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(req.Longitude), 64)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("Invalid longitude %q", req.Longitude))
	}
	if !(geo.Location{Latitude: lat, Longitude: lng}).Valid() {
		return nil, badRequest("Coordinates out of range")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return nil, errEmailTaken
	}
	acct := &account{
		user: session.User{
			ID:        s.nextID,
			Name:      strings.TrimSpace(req.Name),
			Email:     email,
			Latitude:  lat,
			Longitude: lng,
		},
		hash: hash,
	}
	s.nextID++
	s.accounts[email] = acct
	return acct, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"app_password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		fail(w, http.StatusUnauthorized, MsgBadCredentials)
		return
	}

	// A stale or foreign cookie fails to decode; Get still returns a fresh session.
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[keyUserID] = acct.user.ID
	if err := sess.Save(r, w); err != nil {
		fail(w, http.StatusInternalServerError, "Could not start session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": acct.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, keyUserID)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		fail(w, http.StatusInternalServerError, "Could not end session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// currentUser resolves the session cookie to an account.
func (s *Server) currentUser(r *http.Request) (session.User, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return session.User{}, false
	}
	id, ok := sess.Values[keyUserID].(int)
	if !ok {
		return session.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return session.User{}, false
}

func (s *Server) handleSendSOS(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		fail(w, http.StatusUnauthorized, MsgNotLoggedIn)
		return
	}
	var req api.SOS
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RecipientEmail) == "" {
		fail(w, http.StatusBadRequest, "recipient_email is required")
		return
	}
	loc := geo.Location{Latitude: req.Latitude, Longitude: req.Longitude}
	if !loc.Valid() {
		fail(w, http.StatusBadRequest, "Coordinates out of range")
		return
	}

	msg := composeSOS(user, req.RecipientEmail, loc, s.distanceTo(req.RecipientEmail, loc))
	if err := s.mailer.Send(r.Context(), msg); err != nil {
		s.logger.Error("sos email failed", "to", msg.To, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to send email: "+err.Error())
		return
	}
	s.logger.Warn("sos sent", "from", user.Email, "to", msg.To, "location", loc.String())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": MsgSOSSent})
}

// distanceTo returns the km between loc and a registered recipient, or -1
// when the recipient is not a registered helper.
func (s *Server) distanceTo(email string, loc geo.Location) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return -1
	}
	return geo.Distance(loc, geo.Location{Latitude: a.user.Latitude, Longitude: a.user.Longitude})
}

// Helpers lists registered accounts as helpers, by id.
func (s *Server) Helpers() []helpers.Helper {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]helpers.Helper, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, helpers.Helper{
			ID:        a.user.ID,
			Name:      a.user.Name,
			Email:     a.user.Email,
			Latitude:  a.user.Latitude,
			Longitude: a.user.Longitude,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) handleHelpers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "helpers": s.Helpers()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
