package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kavin1231/campusconnect-event-management/internal/db"
	"github.com/kavin1231/campusconnect-event-management/internal/model"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("CAMPUSCONNECT_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("CAMPUSCONNECT_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	if err := db.Migrate(context.Background(), pool); err != nil {
		pool.Close()
		t.Fatalf("migrate error: %v", err)
	}
	return pool
}

func testStudent() model.Student {
	suffix := uuid.NewString()[:8]
	return model.Student{
		ID:           uuid.NewString(),
		Name:         "Test Student",
		Email:        "student." + suffix + "@example.local",
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakefa",
		StudentID:    "T" + suffix,
		Department:   "CS",
		Year:         2,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestStudentRoundTrip(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	store := NewStore(pool)

	student := testStudent()
	if err := store.CreateStudent(context.Background(), student); err != nil {
		t.Fatalf("create error: %v", err)
	}

	byEmail, err := store.GetStudentByEmail(context.Background(), student.Email)
	if err != nil {
		t.Fatalf("get by email error: %v", err)
	}
	if byEmail.ID != student.ID || byEmail.StudentID != student.StudentID {
		t.Fatalf("unexpected row: %+v", byEmail)
	}

	byID, err := store.GetStudentByID(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("get by id error: %v", err)
	}
	if byID.Email != student.Email {
		t.Fatalf("unexpected row: %+v", byID)
	}

	if _, err := store.GetStudentByEmail(context.Background(), "missing@example.local"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateStudentUniqueViolations(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	store := NewStore(pool)

	student := testStudent()
	if err := store.CreateStudent(context.Background(), student); err != nil {
		t.Fatalf("create error: %v", err)
	}

	sameEmail := testStudent()
	sameEmail.Email = student.Email
	if err := store.CreateStudent(context.Background(), sameEmail); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	sameNumber := testStudent()
	sameNumber.StudentID = student.StudentID
	if err := store.CreateStudent(context.Background(), sameNumber); !errors.Is(err, ErrDuplicateStudentNumber) {
		t.Fatalf("expected ErrDuplicateStudentNumber, got %v", err)
	}
}

func TestConcurrentRegistrationRace(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	store := NewStore(pool)

	base := testStudent()
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			student := base
			student.ID = uuid.NewString()
			results[i] = store.CreateStudent(context.Background(), student)
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateStudentNumber):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d duplicates", successes, duplicates)
	}
}

func TestCreateStaffUserIdempotent(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	store := NewStore(pool)

	suffix := uuid.NewString()[:8]
	staff := model.StaffUser{
		ID:           uuid.NewString(),
		Name:         "Test Admin",
		Email:        "admin." + suffix + "@example.local",
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakefa",
		Role:         model.RoleSystemAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := store.CreateStaffUser(context.Background(), staff)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if !created {
		t.Fatalf("expected first insert to create a row")
	}

	staff.ID = uuid.NewString()
	created, err = store.CreateStaffUser(context.Background(), staff)
	if err != nil {
		t.Fatalf("second create error: %v", err)
	}
	if created {
		t.Fatalf("expected second insert to be a no-op")
	}
}

func TestListEventsOrdered(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	store := NewStore(pool)

	now := time.Now().UTC()
	later := model.Event{
		ID:        uuid.NewString(),
		Title:     "Later " + uuid.NewString()[:8],
		Category:  "TECH",
		Date:      now.Add(48 * time.Hour),
		CreatedAt: now,
	}
	sooner := model.Event{
		ID:        uuid.NewString(),
		Title:     "Sooner " + uuid.NewString()[:8],
		Category:  "SPORTS",
		Date:      now.Add(24 * time.Hour),
		CreatedAt: now,
	}
	if err := store.CreateEvent(context.Background(), later); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := store.CreateEvent(context.Background(), sooner); err != nil {
		t.Fatalf("create error: %v", err)
	}

	events, err := store.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	soonerIdx, laterIdx := -1, -1
	for i, event := range events {
		switch event.ID {
		case sooner.ID:
			soonerIdx = i
		case later.ID:
			laterIdx = i
		}
	}
	if soonerIdx == -1 || laterIdx == -1 {
		t.Fatalf("inserted events missing from listing")
	}
	if soonerIdx > laterIdx {
		t.Fatalf("expected ascending date order, got sooner at %d and later at %d", soonerIdx, laterIdx)
	}
}
