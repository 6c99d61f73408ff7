package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fitlog/common"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrInvalidName  = errors.New("exercise name is required")
	ErrUnknownTable = errors.New("unknown table")
	ErrInvalidSet   = errors.New("invalid set")
)

// PurgeTables lists the tables an admin may empty, children first.
var PurgeTables = []string{"exercise_logs", "workouts", "exercises", "users"}

const dayLayout = "2006-01-02"

// Store is the SQL-backed exercise repository.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newId func() string
}

func New(db *sql.DB) *Store {
	return &Store{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newId: func() string { return uuid.New().String() },
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddExercise stores a new exercise for userId.
func (s *Store) AddExercise(ctx context.Context, userId string, payload common.ExercisePayload) error {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return ErrInvalidName
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO exercises(id,user_id,name,created_at) VALUES(?,?,?,?)",
		s.newId(), userId, name, s.now())
	if isDuplicate(err) {
		return fmt.Errorf("exercise %q: %w", name, ErrDuplicate)
	} else if err != nil {
		return fmt.Errorf("insert exercise: %w", err)
	}
	return nil
}

// ListExercises returns the exercises of userId, oldest first.
func (s *Store) ListExercises(ctx context.Context, userId string) ([]common.Exercise, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id,user_id,name,created_at FROM exercises WHERE user_id = ? ORDER BY created_at, name", userId)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()
	var out []common.Exercise
	for rows.Next() {
		var e common.Exercise
		if err := rows.Scan(&e.Id, &e.UserId, &e.Name, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return out, nil
}

func (s *Store) ExerciseByName(ctx context.Context, userId string, name string) (common.Exercise, error) {
	var e common.Exercise
	err := s.db.QueryRowContext(ctx, "SELECT id,user_id,name,created_at FROM exercises WHERE user_id = ? and name = ?",
		userId, strings.TrimSpace(name)).Scan(&e.Id, &e.UserId, &e.Name, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return common.Exercise{}, fmt.Errorf("exercise %q: %w", name, ErrNotFound)
	} else if err != nil {
		return common.Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	return e, nil
}

// CreateUser stores u and returns it with a fresh id.
// u.Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u common.User) (common.User, error) {
	u.Id = s.newId()
	_, err := s.db.ExecContext(ctx, "INSERT INTO users(id,name,email,password,created_at) VALUES(?,?,?,?,?)",
		u.Id, u.Name, u.Email, u.Password, s.now())
	if isDuplicate(err) {
		return common.User{}, fmt.Errorf("user %q: %w", u.Email, ErrDuplicate)
	} else if err != nil {
		return common.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (common.User, error) {
	return s.user(ctx, "SELECT id,name,email,password FROM users WHERE email = ?", email)
}

func (s *Store) UserById(ctx context.Context, id string) (common.User, error) {
	return s.user(ctx, "SELECT id,name,email,password FROM users WHERE id = ?", id)
}

func (s *Store) user(ctx context.Context, query string, arg string) (common.User, error) {
	var u common.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.Id, &u.Name, &u.Email, &u.Password)
	if err == sql.ErrNoRows {
		return common.User{}, fmt.Errorf("user: %w", ErrNotFound)
	} else if err != nil {
		return common.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// LogSet records a set for one of the user's exercises in today's workout,
// starting that workout if needed.
func (s *Store) LogSet(ctx context.Context, l common.ExerciseLog) (common.ExerciseLog, error) {
	if l.Reps <= 0 || l.Sets <= 0 || l.Weight < 0 || math.IsNaN(l.Weight) || math.IsInf(l.Weight, 0) {
		return common.ExerciseLog{}, fmt.Errorf("%w: %d x %d @ %g", ErrInvalidSet, l.Sets, l.Reps, l.Weight)
	}
	var owner string
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM exercises WHERE id = ?", l.ExerciseId).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != l.UserId) {
		return common.ExerciseLog{}, fmt.Errorf("exercise %s: %w", l.ExerciseId, ErrNotFound)
	} else if err != nil {
		return common.ExerciseLog{}, fmt.Errorf("query exercise: %w", err)
	}

	now := s.now()
	w, err := s.ensureWorkout(ctx, l.UserId, now)
	if err != nil {
		return common.ExerciseLog{}, err
	}

	l.Id = s.newId()
	l.WorkoutId = w.Id
	l.Date = now
	_, err = s.db.ExecContext(ctx, "INSERT INTO exercise_logs(id,workout_id,exercise_id,user_id,logged_at,weight,reps,sets) VALUES(?,?,?,?,?,?,?,?)",
		l.Id, l.WorkoutId, l.ExerciseId, l.UserId, l.Date, l.Weight, l.Reps, l.Sets)
	if err != nil {
		return common.ExerciseLog{}, fmt.Errorf("insert exercise log: %w", err)
	}
	return l, nil
}

// ensureWorkout returns the user's workout for the day of now, creating it
// if needed. The insert goes first so two concurrent callers cannot both
// miss the row: the loser hits the (user_id, day) key and reads the
// winner's row outside any transaction snapshot.
func (s *Store) ensureWorkout(ctx context.Context, userId string, now time.Time) (common.Workout, error) {
	w := common.Workout{Id: s.newId(), UserId: userId, Day: now.Format(dayLayout), StartedAt: now}
	_, err := s.db.ExecContext(ctx, "INSERT INTO workouts(id,user_id,day,started_at) VALUES(?,?,?,?)", w.Id, w.UserId, w.Day, w.StartedAt)
	if err == nil {
		return w, nil
	} else if !isDuplicate(err) {
		return common.Workout{}, fmt.Errorf("insert workout: %w", err)
	}
	err = s.db.QueryRowContext(ctx, "SELECT id,user_id,day,started_at FROM workouts WHERE user_id = ? and day = ?", userId, w.Day).
		Scan(&w.Id, &w.UserId, &w.Day, &w.StartedAt)
	if err != nil {
		return common.Workout{}, fmt.Errorf("query workout: %w", err)
	}
	return w, nil
}

// ListLogs returns the sets logged for an exercise, newest first.
func (s *Store) ListLogs(ctx context.Context, userId string, exerciseId string) ([]common.ExerciseLog, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id,workout_id,exercise_id,user_id,logged_at,weight,reps,sets FROM exercise_logs"+
		" WHERE user_id = ? and exercise_id = ? ORDER BY logged_at DESC", userId, exerciseId)
	if err != nil {
		return nil, fmt.Errorf("query exercise logs: %w", err)
	}
	defer rows.Close()
	var out []common.ExerciseLog
	for rows.Next() {
		var l common.ExerciseLog
		if err := rows.Scan(&l.Id, &l.WorkoutId, &l.ExerciseId, &l.UserId, &l.Date, &l.Weight, &l.Reps, &l.Sets); err != nil {
			return nil, fmt.Errorf("scan exercise log: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise logs: %w", err)
	}
	return out, nil
}

// DeleteAll empties one of PurgeTables and reports how many rows went.
func (s *Store) DeleteAll(ctx context.Context, table string) (int64, error) {
	known := false
	for _, t := range PurgeTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("%q: %w", table, ErrUnknownTable)
	}
	// table is one of PurgeTables, never caller text
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return n, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
