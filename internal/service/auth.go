package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kavin1231/campusconnect-event-management/internal/auth"
	"github.com/kavin1231/campusconnect-event-management/internal/config"
	"github.com/kavin1231/campusconnect-event-management/internal/crypto"
	"github.com/kavin1231/campusconnect-event-management/internal/model"
	"github.com/kavin1231/campusconnect-event-management/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the credential persistence the auth service orchestrates over.
// *repository.Store satisfies it; tests use an in-memory fake.
type Store interface {
	GetStudentByEmail(ctx context.Context, email string) (model.Student, error)
	GetStudentByID(ctx context.Context, id string) (model.Student, error)
	GetStaffUserByEmail(ctx context.Context, email string) (model.StaffUser, error)
	StudentEmailExists(ctx context.Context, email string) (bool, error)
	StaffEmailExists(ctx context.Context, email string) (bool, error)
	StudentNumberExists(ctx context.Context, studentNumber string) (bool, error)
	CreateStudent(ctx context.Context, student model.Student) error
}

type AuthService struct {
	store      Store
	secret     string
	issuer     string
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(cfg config.Config, store Store) *AuthService {
	return &AuthService{
		store:      store,
		secret:     cfg.JWTSecret,
		issuer:     cfg.JWTIssuer,
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	StudentID  string
	Department string
	Year       int
}

// Session is what a successful registration or login hands back.
type Session struct {
	Token    string
	Identity model.Identity
}

// Register creates a student account. Staff accounts are provisioned out of
// band and never through this path.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (Session, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.StudentID = strings.TrimSpace(input.StudentID)
	input.Department = strings.TrimSpace(input.Department)

	if input.Name == "" || input.Email == "" || input.Password == "" || input.StudentID == "" || input.Department == "" || input.Year == 0 {
		return Session{}, fail(ErrValidation, "All fields are required")
	}
	if !emailPattern.MatchString(input.Email) {
		return Session{}, fail(ErrValidation, "Invalid email format")
	}
	if input.Year < 1 || input.Year > 4 {
		return Session{}, fail(ErrValidation, "Year must be between 1 and 4")
	}

	// Email must be free across both identity tables.
	staffTaken, err := s.store.StaffEmailExists(ctx, input.Email)
	if err != nil {
		return Session{}, fmt.Errorf("check staff email: %w", err)
	}
	studentTaken, err := s.store.StudentEmailExists(ctx, input.Email)
	if err != nil {
		return Session{}, fmt.Errorf("check student email: %w", err)
	}
	if staffTaken || studentTaken {
		return Session{}, fail(ErrEmailTaken, "Email already registered")
	}

	numberTaken, err := s.store.StudentNumberExists(ctx, input.StudentID)
	if err != nil {
		return Session{}, fmt.Errorf("check student number: %w", err)
	}
	if numberTaken {
		return Session{}, fail(ErrStudentIDTaken, "Student ID already registered")
	}

	hash, err := crypto.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	student := model.Student{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		StudentID:    input.StudentID,
		Department:   input.Department,
		Year:         input.Year,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateStudent(ctx, student); err != nil {
		// The pre-checks above race with concurrent registrations; the
		// database unique constraints are the real arbiter.
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return Session{}, fail(ErrEmailTaken, "Email already registered")
		case errors.Is(err, repository.ErrDuplicateStudentNumber):
			return Session{}, fail(ErrStudentIDTaken, "Student ID already registered")
		}
		return Session{}, fmt.Errorf("create student: %w", err)
	}

	return s.session(model.Identity{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		Role:      model.RoleStudent,
		StudentID: student.StudentID,
	})
}

// Login authenticates either identity table. Unknown emails, wrong passwords
// and unreadable stored hashes all collapse into the same failure so callers
// cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, fail(ErrValidation, "Email and password are required")
	}

	identity, hash, err := s.resolveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, fail(ErrInvalidCredentials, "Invalid email or password")
		}
		return Session{}, fmt.Errorf("resolve identity: %w", err)
	}

	if err := crypto.CheckPassword(hash, password); err != nil {
		return Session{}, fail(ErrInvalidCredentials, "Invalid email or password")
	}

	return s.session(identity)
}

// Profile resolves the student projection for an authenticated subject.
// Staff subjects have no student row and fall through to not-found.
func (s *AuthService) Profile(ctx context.Context, id string) (model.Student, error) {
	student, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Student{}, fail(ErrNotFound, "Student not found")
		}
		return model.Student{}, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

// resolveByEmail probes staff first, then students. Staff precedence is a
// policy choice and must not be reordered: if an email ever ends up in both
// tables, the staff identity wins.
func (s *AuthService) resolveByEmail(ctx context.Context, email string) (model.Identity, string, error) {
	staff, err := s.store.GetStaffUserByEmail(ctx, email)
	if err == nil {
		return model.Identity{
			ID:    staff.ID,
			Name:  staff.Name,
			Email: staff.Email,
			Role:  staff.Role,
		}, staff.PasswordHash, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Identity{}, "", err
	}

	student, err := s.store.GetStudentByEmail(ctx, email)
	if err != nil {
		return model.Identity{}, "", err
	}
	return model.Identity{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		Role:      model.RoleStudent,
		StudentID: student.StudentID,
	}, student.PasswordHash, nil
}

func (s *AuthService) session(identity model.Identity) (Session, error) {
	token, err := auth.NewAccessToken(s.secret, s.issuer, s.tokenTTL, auth.Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   identity.Role,
	})
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, Identity: identity}, nil
}
