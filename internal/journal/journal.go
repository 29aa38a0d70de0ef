// Package journal records lesson progress in a local bolt database.
//
// Each lesson has at most one session at a time. Starting a completed
// lesson begins a fresh run with a new run ID.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	// EnvPath overrides the journal database location.
	EnvPath = "LORE_JOURNAL"

	defaultDir      = ".lore"
	defaultFileName = "journal.db"
	sessionsBucket  = "sessions"
)

// ErrNoSession is returned when a lesson has no active session.
var ErrNoSession = errors.New("no active session")

// Session is one attempt at working through a lesson.
type Session struct {
	Ref         string     `json:"ref"`
	RunID       string     `json:"run_id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	StepsDone   []string   `json:"steps_done,omitempty"`
}

// Completed reports whether the session has been finished.
func (s Session) Completed() bool {
	return s.CompletedAt != nil
}

// Done reports whether the named sequence file has been marked done.
func (s Session) Done(file string) bool {
	for _, f := range s.StepsDone {
		if f == file {
			return true
		}
	}
	return false
}

// Journal is a handle to the progress database.
type Journal struct {
	db *bolt.DB
}

// Path returns the journal database location, honoring EnvPath.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, defaultDir, defaultFileName), nil
}

// Open opens the journal at its default location, creating it if needed.
func Open() (*Journal, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt opens a journal database at an explicit path.
func OpenAt(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Start begins a session for the lesson, or resumes the active one.
// resumed is true when an unfinished session already existed.
func (j *Journal) Start(ref string) (session Session, resumed bool, err error) {
	err = j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionsBucket))

		if existing, ok, err := getSession(bucket, ref); err != nil {
			return err
		} else if ok && !existing.Completed() {
			session = existing
			resumed = true
			return nil
		}

		session = Session{
			Ref:       ref,
			RunID:     uuid.New().String(),
			StartedAt: time.Now().UTC(),
		}
		return putSession(bucket, session)
	})
	return session, resumed, err
}

// MarkStep records a sequence file as done in the lesson's active session.
// Marking the same file twice is a no-op.
func (j *Journal) MarkStep(ref, file string) (Session, error) {
	var session Session
	err := j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionsBucket))

		existing, ok, err := getSession(bucket, ref)
		if err != nil {
			return err
		}
		if !ok || existing.Completed() {
			return fmt.Errorf("%w for %s", ErrNoSession, ref)
		}

		if !existing.Done(file) {
			existing.StepsDone = append(existing.StepsDone, file)
			if err := putSession(bucket, existing); err != nil {
				return err
			}
		}
		session = existing
		return nil
	})
	return session, err
}

// Complete finishes the lesson's active session. Completing an already
// finished session returns it unchanged.
func (j *Journal) Complete(ref string) (Session, error) {
	var session Session
	err := j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionsBucket))

		existing, ok, err := getSession(bucket, ref)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w for %s", ErrNoSession, ref)
		}

		if !existing.Completed() {
			now := time.Now().UTC()
			existing.CompletedAt = &now
			if err := putSession(bucket, existing); err != nil {
				return err
			}
		}
		session = existing
		return nil
	})
	return session, err
}

// Get returns the lesson's session, if any.
func (j *Journal) Get(ref string) (Session, bool, error) {
	var session Session
	var found bool
	err := j.db.View(func(tx *bolt.Tx) error {
		var err error
		session, found, err = getSession(tx.Bucket([]byte(sessionsBucket)), ref)
		return err
	})
	return session, found, err
}

// All returns every session, sorted by lesson reference.
func (j *Journal) All() ([]Session, error) {
	var sessions []Session
	err := j.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(sessionsBucket)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var s Session
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("failed to decode session %s: %w", k, err)
			}
			sessions = append(sessions, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, k int) bool { return sessions[i].Ref < sessions[k].Ref })
	return sessions, nil
}

// Reset discards the lesson's session.
func (j *Journal) Reset(ref string) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Delete([]byte(ref))
	})
}

func getSession(bucket *bolt.Bucket, ref string) (Session, bool, error) {
	v := bucket.Get([]byte(ref))
	if v == nil {
		return Session{}, false, nil
	}
	var s Session
	if err := json.Unmarshal(v, &s); err != nil {
		return Session{}, false, fmt.Errorf("failed to decode session %s: %w", ref, err)
	}
	return s, true, nil
}

func putSession(bucket *bolt.Bucket, s Session) error {
	v, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.Ref, err)
	}
	return bucket.Put([]byte(s.Ref), v)
}
