// Package audit keeps an append-only journal of administrative actions.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Baaaki/inkwell/pkg/logger"
	"go.uber.org/zap"
)

type Action string

const (
	ActionRoleChange Action = "user.role_change"
	ActionUserDelete Action = "user.delete"
	ActionIPBan      Action = "ip.ban"
	ActionIPUnban    Action = "ip.unban"
)

// Entry is one line of the journal
type Entry struct {
	Action    Action    `json:"action"`
	ActorID   uint      `json:"actor_id"`
	TargetID  uint      `json:"target_id"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder is what services depend on
type Recorder interface {
	Write(entry Entry) error
	ReadAll() ([]Entry, error)
}

// Journal is a JSON-lines file, synced to disk on every write
type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

func Open(filePath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Write appends entry. A zero Timestamp is set to now.
func (j *Journal) Write(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		logger.Log.Error("Audit: failed to write entry",
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
		return err
	}

	if err := j.file.Sync(); err != nil {
		logger.Log.Error("Audit: failed to sync",
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Audit: entry written",
		zap.String("action", string(entry.Action)),
		zap.Uint("actor_id", entry.ActorID),
		zap.Uint("target_id", entry.TargetID),
	)
	return nil
}

// ReadAll returns every entry in write order
func (j *Journal) ReadAll() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.readAllUnsafe()
}

// Prune drops entries older than cutoff and returns how many were removed.
// The file is rewritten through a temp file that replaces it atomically.
// On error the journal is left as it was and stays writable.
func (j *Journal) Prune(cutoff time.Time) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readAllUnsafe()
	if err != nil {
		return 0, err
	}

	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Timestamp.Before(cutoff) {
			kept = append(kept, entry)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	// The temp file is opened for appending and becomes the live handle
	// after the rename. Until then the old handle stays open.
	tempPath := j.filePath + ".tmp"
	tmp, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return 0, err
	}
	discard := func(err error) (int, error) {
		tmp.Close()
		os.Remove(tempPath)
		return 0, err
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, entry := range kept {
		if err := enc.Encode(entry); err != nil {
			return discard(err)
		}
	}
	if err := w.Flush(); err != nil {
		return discard(err)
	}
	if err := tmp.Sync(); err != nil {
		return discard(err)
	}
	if err := os.Rename(tempPath, j.filePath); err != nil {
		return discard(err)
	}

	if err := j.file.Close(); err != nil {
		logger.Log.Warn("Audit: failed to close pruned journal handle", zap.Error(err))
	}
	j.file = tmp

	logger.Log.Info("Audit: pruned journal",
		zap.Int("removed", removed),
		zap.Int("remaining", len(kept)),
	)
	return removed, nil
}

func (j *Journal) readAllUnsafe() ([]Entry, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
