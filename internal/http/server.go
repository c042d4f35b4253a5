package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kavin1231/campusconnect-event-management/internal/auth"
	"github.com/kavin1231/campusconnect-event-management/internal/chatbot"
	"github.com/kavin1231/campusconnect-event-management/internal/config"
	"github.com/kavin1231/campusconnect-event-management/internal/model"
	"github.com/kavin1231/campusconnect-event-management/internal/service"
)

const eventCacheKey = "events:all"

// EventStore is the event persistence the server reads and writes.
// *repository.Store satisfies it.
type EventStore interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	CreateEvent(ctx context.Context, event model.Event) error
}

type Server struct {
	cfg    config.Config
	authn  *service.AuthService
	events EventStore
	redis  *redis.Client
}

// NewServer wires the HTTP surface. redisClient may be nil; event listings
// then always hit the database.
func NewServer(cfg config.Config, authn *service.AuthService, events EventStore, redisClient *redis.Client) *Server {
	return &Server{
		cfg:    cfg,
		authn:  authn,
		events: events,
		redis:  redisClient,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.With(s.authMiddleware).Get("/auth/profile", s.handleProfile)

		r.Get("/events", s.handleListEvents)
		r.With(s.authMiddleware, s.requireRole(model.RoleSystemAdmin, model.RoleEventOrganizer)).Post("/events", s.handleCreateEvent)

		r.Post("/chatbot/query", s.handleChatbotQuery)
	})

	return r
}

type registerRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	StudentID  string      `json:"studentId"`
	Department string      `json:"department"`
	Year       json.Number `json:"year"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StudentID string `json:"studentId,omitempty"`
}

type studentPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	CreatedAt  string `json:"createdAt"`
}

type eventPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	CreatedAt   string `json:"createdAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	year := 0
	if req.Year != "" {
		parsed, err := strconv.Atoi(req.Year.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Year must be between 1 and 4")
			return
		}
		year = parsed
	}

	session, err := s.authn.Register(r.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		StudentID:  req.StudentID,
		Department: req.Department,
		Year:       year,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Student registered successfully",
		"token":   session.Token,
		"user":    mapUserPayload(session.Identity),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.authn.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   session.Token,
		"user":    mapUserPayload(session.Identity),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	student, err := s.authn.Profile(r.Context(), claims.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"student": mapStudentPayload(student),
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.loadEvents(r.Context())
	if err != nil {
		log.Printf("list events error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  mapEventPayloads(events),
	})
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Date        string `json:"date"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(strings.ToUpper(req.Category))
	if req.Title == "" || req.Category == "" || req.Date == "" {
		writeError(w, http.StatusBadRequest, "Title, category and date are required")
		return
	}
	if !isValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "Unknown event category")
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date must be RFC 3339")
		return
	}

	event := model.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Location:    strings.TrimSpace(req.Location),
		Date:        date.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.CreateEvent(r.Context(), event); err != nil {
		log.Printf("create event error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	s.invalidateEventCache(r.Context())

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"event":   mapEventPayload(event),
	})
}

type chatbotRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleChatbotQuery(w http.ResponseWriter, r *http.Request) {
	var req chatbotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "No query text provided")
		return
	}

	events, err := s.loadEvents(r.Context())
	if err != nil {
		log.Printf("chatbot events error: %v", err)
		writeError(w, http.StatusInternalServerError, "Error processing chatbot query")
		return
	}

	reply := chatbot.Respond(req.Text, events, time.Now().UTC())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": reply.Response,
		"events":   mapEventPayloads(reply.Events),
	})
}

// loadEvents serves listings from the cache when a redis client is
// configured, falling back to the database on any miss or cache error.
func (s *Server) loadEvents(ctx context.Context) ([]model.Event, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, eventCacheKey).Result(); err == nil {
			var events []model.Event
			if json.Unmarshal([]byte(raw), &events) == nil {
				return events, nil
			}
		}
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(events); err == nil {
			if err := s.redis.Set(ctx, eventCacheKey, raw, s.cfg.EventCacheTTL).Err(); err != nil {
				log.Printf("event cache set error: %v", err)
			}
		}
	}
	return events, nil
}

func (s *Server) invalidateEventCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, eventCacheKey).Err(); err != nil {
		log.Printf("event cache invalidate error: %v", err)
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole must run after authMiddleware has populated the context.
func (s *Server) requireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || claims.Role == "" {
				writeError(w, http.StatusForbidden, "Access denied. Role information missing.")
				return
			}
			for _, role := range allowed {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, fmt.Sprintf("Access denied. Role '%s' is not authorized.", claims.Role))
		})
	}
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrStudentIDTaken):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	default:
		// Unexpected failure: full detail stays in the server log.
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeError(w, status, service.ClientMessage(err))
}

func mapUserPayload(identity model.Identity) userPayload {
	return userPayload{
		ID:        identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Role:      identity.Role,
		StudentID: identity.StudentID,
	}
}

func mapStudentPayload(student model.Student) studentPayload {
	return studentPayload{
		ID:         student.ID,
		Name:       student.Name,
		Email:      student.Email,
		StudentID:  student.StudentID,
		Department: student.Department,
		Year:       student.Year,
		CreatedAt:  student.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapEventPayload(event model.Event) eventPayload {
	return eventPayload{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Category:    event.Category,
		Location:    event.Location,
		Date:        event.Date.UTC().Format(time.RFC3339),
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapEventPayloads(events []model.Event) []eventPayload {
	payloads := make([]eventPayload, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, mapEventPayload(event))
	}
	return payloads
}

func isValidCategory(category string) bool {
	switch category {
	case "TECH", "SPORTS", "MUSIC", "ARTS", "DEBATE":
		return true
	default:
		return false
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}
