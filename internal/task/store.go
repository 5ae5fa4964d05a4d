// Package task persists crawl task definitions and schedules pending tasks.
package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/evepupil/onaho-crawler/internal/crawler"
	"github.com/evepupil/onaho-crawler/internal/store"
)

// ErrTaskNotFound is returned by lookups with an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// tasksDocument is the on-disk shape of the task collection file. Tasks are
// stored as an ordered array because pending-list order must follow
// insertion order, which a JSON object keyed by id cannot guarantee.
type tasksDocument struct {
	Tasks []crawler.Task `json:"tasks"`
}

// Store is the durable task collection. Every mutation rewrites the whole
// file atomically before returning. Store is safe for concurrent use; the
// scheduler updates tasks from multiple goroutines.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	tasks []crawler.Task
	index map[string]int
}

// Summary holds per-status task counts.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// NewStore opens (or creates) the task collection at path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{
		path:   path,
		logger: logger,
		index:  make(map[string]int),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var doc tasksDocument
	if err := store.ReadJSON(s.path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	s.tasks = doc.Tasks
	s.index = make(map[string]int, len(doc.Tasks))
	for i, t := range doc.Tasks {
		s.index[t.ID] = i
	}
	s.logger.Info("loaded tasks", zap.Int("count", len(s.tasks)))
	return nil
}

func (s *Store) save() error {
	if err := store.WriteJSONAtomic(s.path, tasksDocument{Tasks: s.tasks}); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Add inserts t, overwriting any task with the same id in place, and
// persists.
func (s *Store) Add(t crawler.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[t.ID]; ok {
		s.tasks[i] = t
	} else {
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t)
	}
	if err := s.save(); err != nil {
		return err
	}
	s.logger.Info("task added", zap.String("task_id", t.ID), zap.String("name", t.Name))
	return nil
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (crawler.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return crawler.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[i], nil
}

// List returns all tasks in insertion order.
func (s *Store) List() []crawler.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]crawler.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// ListPending returns pending tasks in insertion order.
func (s *Store) ListPending() []crawler.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []crawler.Task
	for _, t := range s.tasks {
		if t.Status == crawler.TaskStatusPending {
			out = append(out, t)
		}
	}
	return out
}

// Update persists the full current state of t.
func (s *Store) Update(t crawler.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[t.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, t.ID)
	}
	s.tasks[i] = t
	return s.save()
}

// Delete removes the task with the given id and persists.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.reindex()
	return s.save()
}

// ClearTerminal removes all completed and failed tasks, returning how many
// were dropped.
func (s *Store) ClearTerminal() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Status.Terminal() {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.reindex()
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save()
}

// Summary returns per-status counts.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{Total: len(s.tasks)}
	for _, t := range s.tasks {
		switch t.Status {
		case crawler.TaskStatusPending:
			sum.Pending++
		case crawler.TaskStatusRunning:
			sum.Running++
		case crawler.TaskStatusCompleted:
			sum.Completed++
		case crawler.TaskStatusFailed:
			sum.Failed++
		}
	}
	return sum
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.tasks))
	for i, t := range s.tasks {
		s.index[t.ID] = i
	}
}
