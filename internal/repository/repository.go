package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kavin1231/campusconnect-event-management/internal/model"
)

var (
	ErrNotFound = errors.New("not_found")

	// Returned by CreateStudent when the database unique constraints reject
	// a row that slipped past the pre-checks (concurrent registrations).
	ErrDuplicateEmail         = errors.New("duplicate_email")
	ErrDuplicateStudentNumber = errors.New("duplicate_student_number")
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetStudentByEmail(ctx context.Context, email string) (model.Student, error) {
	var student model.Student
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, student_number, department, year, created_at
		FROM students
		WHERE email = $1
	`, email)
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.PasswordHash,
		&student.StudentID,
		&student.Department,
		&student.Year,
		&student.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, ErrNotFound
	}
	return student, err
}

func (s *Store) GetStudentByID(ctx context.Context, id string) (model.Student, error) {
	var student model.Student
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, student_number, department, year, created_at
		FROM students
		WHERE id = $1
	`, id)
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.PasswordHash,
		&student.StudentID,
		&student.Department,
		&student.Year,
		&student.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, ErrNotFound
	}
	return student, err
}

func (s *Store) GetStaffUserByEmail(ctx context.Context, email string) (model.StaffUser, error) {
	var staff model.StaffUser
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM staff_users
		WHERE email = $1
	`, email)
	err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StaffUser{}, ErrNotFound
	}
	return staff, err
}

func (s *Store) StudentEmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM students WHERE email = $1`, email)
}

func (s *Store) StaffEmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM staff_users WHERE email = $1`, email)
}

func (s *Store) StudentNumberExists(ctx context.Context, studentNumber string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM students WHERE student_number = $1`, studentNumber)
}

func (s *Store) CreateStudent(ctx context.Context, student model.Student) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO students (id, name, email, password_hash, student_number, department, year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, student.ID, student.Name, student.Email, student.PasswordHash, student.StudentID, student.Department, student.Year, student.CreatedAt)
	return classifyStudentInsert(err)
}

func (s *Store) CreateStaffUser(ctx context.Context, staff model.StaffUser) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO staff_users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`, staff.ID, staff.Name, staff.Email, staff.PasswordHash, staff.Role, staff.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, category, location, date, created_at
		FROM events
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var event model.Event
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Category,
			&event.Location,
			&event.Date,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Store) CreateEvent(ctx context.Context, event model.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, title, description, category, location, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.Title, event.Description, event.Category, event.Location, event.Date, event.CreatedAt)
	return err
}

func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

func (s *Store) exists(ctx context.Context, query string, arg string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (`+query+`)`, arg).Scan(&exists)
	return exists, err
}

func classifyStudentInsert(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "students_email_key":
		return ErrDuplicateEmail
	case "students_student_number_key":
		return ErrDuplicateStudentNumber
	}
	return err
}
