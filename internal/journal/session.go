package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/stage"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo describes a recorded session.
type SessionInfo struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	SlideCount int       `json:"slide_count"`
	Entries    int       `json:"entries"`
}

// Entry is one recorded controller event.
type Entry struct {
	Session    string
	Seq        int64
	Event      playback.EventName
	Phase      stage.Phase
	SlideIndex int
	Paused     bool
	Epoch      uint64
	Finale     stage.FinaleStep
	Track      string
	Elapsed    time.Duration
	Snapshot   playback.Snapshot
}

// Session appends entries for one playback run.
//
// Not safe for concurrent use; it is written from the engine loop.
type Session struct {
	j     *Journal
	id    string
	start time.Time
	seq   *Sequence
}

// Begin starts a new session at startedAt for a deck of slideCount slides.
func (j *Journal) Begin(ctx context.Context, startedAt time.Time, slideCount int) (*Session, error) {
	id := j.ids.Generate()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, slide_count)
		VALUES (?, ?, ?)
	`, id, startedAt.UTC().Format(time.RFC3339Nano), slideCount)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{j: j, id: id, start: startedAt, seq: NewSequence()}, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Append records ev as observed at time at. It returns the entry's
// sequence number.
func (s *Session) Append(ctx context.Context, ev playback.Event, at time.Time) (int64, error) {
	snapJSON, err := json.Marshal(ev.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("append entry: marshal snapshot: %w", err)
	}

	seq := s.seq.Next()
	snap := ev.Snapshot
	_, err = s.j.db.ExecContext(ctx, `
		INSERT INTO entries
		(session_id, seq, event, phase, slide_index, paused, epoch, finale, track, elapsed_ms, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.id,
		seq,
		string(ev.Name),
		snap.Phase.String(),
		snap.SlideIndex,
		snap.Paused,
		int64(snap.Epoch),
		snap.Finale.String(),
		snap.Track,
		at.Sub(s.start).Milliseconds(),
		string(snapJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}
	return seq, nil
}

// Sessions lists every session, oldest first.
func (j *Journal) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.slide_count, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN entries e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var (
			info    SessionInfo
			started string
		)
		if err := rows.Scan(&info.ID, &started, &info.SlideCount, &info.Entries); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", info.ID, err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Latest returns the ID of the most recent session.
func (j *Journal) Latest(ctx context.Context) (string, error) {
	var id string
	err := j.db.QueryRowContext(ctx, `
		SELECT id FROM sessions
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query latest session: %w", err)
	}
	return id, nil
}

// Entries returns the entries of a session in sequence order.
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	var exists int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, event, phase, slide_index, paused, epoch, finale, track, elapsed_ms, snapshot
		FROM entries
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		e.Session = sessionID
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                    Entry
		event, phase, finale string
		epoch, elapsedMS     int64
		snapJSON             string
	)
	if err := rows.Scan(&e.Seq, &event, &phase, &e.SlideIndex, &e.Paused, &epoch, &finale, &e.Track, &elapsedMS, &snapJSON); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	var err error
	if e.Phase, err = stage.ParsePhase(phase); err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", e.Seq, err)
	}
	if e.Finale, err = stage.ParseFinaleStep(finale); err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", e.Seq, err)
	}
	if err := json.Unmarshal([]byte(snapJSON), &e.Snapshot); err != nil {
		return Entry{}, fmt.Errorf("entry %d: unmarshal snapshot: %w", e.Seq, err)
	}
	e.Event = playback.EventName(event)
	e.Epoch = uint64(epoch)
	e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return e, nil
}
