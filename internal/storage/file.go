package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
)

type FilePaths struct {
	Users string
	Goals string
	Water string
	Sleep string
}

// FileStorage keeps everything in memory and persists each collection to its own JSON file.
// Writes are batched by one save worker per file; Close flushes synchronously.
type FileStorage struct {
	users      map[string]*internal.User       // id -> User
	emailIndex map[string]string               // lower(email) -> id
	goals      map[string]*internal.Goal       // id -> Goal
	water      map[string]*internal.WaterLog   // userID|day -> WaterLog
	sleep      map[string]*internal.SleepEntry // userID|day -> SleepEntry
	mu         sync.RWMutex
	paths      FilePaths

	usersWorker *saveWorker
	goalsWorker *saveWorker
	waterWorker *saveWorker
	sleepWorker *saveWorker

	shutdownChan chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
	logger       internal.Logger
}

// userRecord is the on-disk form of a user. The API model never serializes the hash.
type userRecord struct {
	internal.User
	PasswordHash string `json:"password_hash"`
}

type saveWorker struct {
	name   string
	signal chan struct{}
	delay  time.Duration
	save   func() error
}

func NewFileStorage(paths FilePaths, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		users:        make(map[string]*internal.User),
		emailIndex:   make(map[string]string),
		goals:        make(map[string]*internal.Goal),
		water:        make(map[string]*internal.WaterLog),
		sleep:        make(map[string]*internal.SleepEntry),
		paths:        paths,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}
	s.usersWorker = s.newSaveWorker("users", s.saveUsers)
	s.goalsWorker = s.newSaveWorker("goals", s.saveGoals)
	s.waterWorker = s.newSaveWorker("water logs", s.saveWater)
	s.sleepWorker = s.newSaveWorker("sleep entries", s.saveSleep)

	for _, p := range []string{paths.Users, paths.Goals, paths.Water, paths.Sleep} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("storage: failed to create data dir: %w", err)
		}
	}

	loaders := []struct {
		name string
		load func() error
	}{
		{"users", s.loadUsers},
		{"goals", s.loadGoals},
		{"water logs", s.loadWater},
		{"sleep entries", s.loadSleep},
	}
	for _, l := range loaders {
		if err := l.load(); err != nil {
			logger.Errorf("storage: failed to load %s: %v", l.name, err)
			return nil, err
		}
	}

	for _, w := range []*saveWorker{s.usersWorker, s.goalsWorker, s.waterWorker, s.sleepWorker} {
		s.wg.Add(1)
		go s.runSaveWorker(w)
	}

	return s, nil
}

func (s *FileStorage) newSaveWorker(name string, save func() error) *saveWorker {
	return &saveWorker{
		name:   name,
		signal: make(chan struct{}, 1),
		delay:  500 * time.Millisecond,
		save:   save,
	}
}

func dayKey(userID string, day time.Time) string {
	return userID + "|" + calendar.DayKey(day)
}

// readJSONFile decodes a JSON array; a missing or empty file is not an error.
func readJSONFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadUsers() error {
	var records []userRecord
	if err := readJSONFile(s.paths.Users, &records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		u := rec.User
		u.PasswordHash = rec.PasswordHash
		email := strings.ToLower(u.Email)
		if _, dup := s.emailIndex[email]; dup {
			return fmt.Errorf("%w: duplicate user email %s in %s", internal.ErrConflict, email, s.paths.Users)
		}
		s.users[u.ID] = &u
		s.emailIndex[email] = u.ID
	}
	return nil
}

func (s *FileStorage) loadGoals() error {
	var goals []*internal.Goal
	if err := readJSONFile(s.paths.Goals, &goals); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range goals {
		s.goals[g.ID] = g
	}
	return nil
}

func (s *FileStorage) loadWater() error {
	var logs []*internal.WaterLog
	if err := readJSONFile(s.paths.Water, &logs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		l.Day = calendar.DayStart(l.Day)
		key := dayKey(l.UserID, l.Day)
		if _, dup := s.water[key]; dup {
			return fmt.Errorf("%w: duplicate water log for %s in %s", internal.ErrConflict, key, s.paths.Water)
		}
		s.water[key] = l
	}
	return nil
}

func (s *FileStorage) loadSleep() error {
	var entries []*internal.SleepEntry
	if err := readJSONFile(s.paths.Sleep, &entries); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		e.Day = calendar.DayStart(e.Day)
		key := dayKey(e.UserID, e.Day)
		if _, dup := s.sleep[key]; dup {
			return fmt.Errorf("%w: duplicate sleep entry for %s in %s", internal.ErrConflict, key, s.paths.Sleep)
		}
		s.sleep[key] = e
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]userRecord, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, userRecord{User: *u, PasswordHash: u.PasswordHash})
	}
	s.mu.RUnlock()
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})

	return atomicWriteFileJSON(s.paths.Users, users)
}

func (s *FileStorage) saveGoals() error {
	s.mu.RLock()
	goals := make([]internal.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		goals = append(goals, *g)
	}
	s.mu.RUnlock()
	sortGoals(goals)

	return atomicWriteFileJSON(s.paths.Goals, goals)
}

func (s *FileStorage) saveWater() error {
	s.mu.RLock()
	logs := make([]internal.WaterLog, 0, len(s.water))
	for _, l := range s.water {
		logs = append(logs, *l)
	}
	s.mu.RUnlock()
	sort.Slice(logs, func(i, j int) bool { return logs[i].Day.Before(logs[j].Day) })

	return atomicWriteFileJSON(s.paths.Water, logs)
}

func (s *FileStorage) saveSleep() error {
	s.mu.RLock()
	entries := make([]internal.SleepEntry, 0, len(s.sleep))
	for _, e := range s.sleep {
		entries = append(entries, *e)
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Day.Before(entries[j].Day) })

	return atomicWriteFileJSON(s.paths.Sleep, entries)
}

// runSaveWorker batches save operations. The first write after a save arms the timer and
// later writes do not push it back, so a dirty collection reaches disk within one delay.
func (s *FileStorage) runSaveWorker(w *saveWorker) {
	defer s.wg.Done()
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-w.signal:
			if !pending {
				timer.Reset(w.delay)
				pending = true
			}
		case <-timer.C:
			pending = false
			if err := w.save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", w.name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func notify(w *saveWorker) {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Close stops the save workers and writes every collection synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		s.wg.Wait()

		for _, w := range []*saveWorker{s.usersWorker, s.goalsWorker, s.waterWorker, s.sleepWorker} {
			if saveErr := w.save(); saveErr != nil {
				err = fmt.Errorf("storage: failed to save %s: %w", w.name, saveErr)
				return
			}
		}
	})
	return err
}

// --- UserRepository ---
func (s *FileStorage) CreateUserWithDefaults(ctx context.Context, user *internal.User, goals []*internal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.emailIndex[email]; taken {
		return fmt.Errorf("email %s already registered: %w", email, internal.ErrConflict)
	}
	u := *user
	s.users[u.ID] = &u
	s.emailIndex[email] = u.ID
	s.insertGoalsLocked(user.ID, goals)

	notify(s.usersWorker)
	notify(s.goalsWorker)
	return nil
}

func (s *FileStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, internal.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (s *FileStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, internal.ErrNotFound)
	}
	out := *s.users[id]
	return &out, nil
}

func (s *FileStorage) UpdateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, internal.ErrNotFound)
	}
	u.Name = user.Name
	u.ProfileImageURL = user.ProfileImageURL
	notify(s.usersWorker)
	return nil
}

func (s *FileStorage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, internal.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	notify(s.usersWorker)
	return nil
}

// --- GoalRepository ---
func (s *FileStorage) ListGoals(ctx context.Context, userID string) ([]internal.Goal, error) {
	s.mu.RLock()
	goals := []internal.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			goals = append(goals, *g)
		}
	}
	s.mu.RUnlock()

	sortGoals(goals)
	return goals, nil
}

func (s *FileStorage) GetGoal(ctx context.Context, goalID, userID string) (*internal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, err := s.ownedGoalLocked(goalID, userID)
	if err != nil {
		return nil, err
	}
	out := *g
	return &out, nil
}

func (s *FileStorage) CreateGoal(ctx context.Context, goal *internal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.goals[goal.ID]; exists {
		return fmt.Errorf("goal %s: %w", goal.ID, internal.ErrConflict)
	}
	g := *goal
	s.goals[g.ID] = &g
	notify(s.goalsWorker)
	return nil
}

func (s *FileStorage) UpdateGoal(ctx context.Context, goal *internal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.ownedGoalLocked(goal.ID, goal.UserID)
	if err != nil {
		return err
	}
	g.Label = goal.Label
	g.Value = goal.Value
	g.Unit = goal.Unit
	g.UpdatedAt = goal.UpdatedAt
	notify(s.goalsWorker)
	return nil
}

func (s *FileStorage) DeleteGoal(ctx context.Context, goalID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.ownedGoalLocked(goalID, userID)
	if err != nil {
		return err
	}
	if g.IsDefault {
		return internal.ErrDefaultGoalDelete
	}
	delete(s.goals, goalID)
	notify(s.goalsWorker)
	return nil
}

func (s *FileStorage) SeedDefaultGoals(ctx context.Context, userID string, goals []*internal.Goal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals {
		if g.UserID == userID {
			return false, nil
		}
	}
	s.insertGoalsLocked(userID, goals)
	notify(s.goalsWorker)
	return true, nil
}

func (s *FileStorage) ownedGoalLocked(goalID, userID string) (*internal.Goal, error) {
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", goalID, internal.ErrNotFound)
	}
	return g, nil
}

func (s *FileStorage) insertGoalsLocked(userID string, goals []*internal.Goal) {
	for _, goal := range goals {
		g := *goal
		g.UserID = userID
		s.goals[g.ID] = &g
	}
}

// --- WaterLogRepository ---
func (s *FileStorage) AddWater(ctx context.Context, userID string, day time.Time, amountML int) (*internal.WaterLog, error) {
	day = calendar.DayStart(day)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(userID, day)
	l, ok := s.water[key]
	if ok {
		l.AmountML += amountML
		l.UpdatedAt = now
	} else {
		l = &internal.WaterLog{
			ID:        uuid.NewString(),
			UserID:    userID,
			Day:       day,
			AmountML:  amountML,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.water[key] = l
	}
	notify(s.waterWorker)

	out := *l
	return &out, nil
}

func (s *FileStorage) FindWaterInRange(ctx context.Context, userID string, start, endExclusive time.Time) ([]internal.WaterLog, error) {
	start, endExclusive = calendar.DayStart(start), calendar.DayStart(endExclusive)

	s.mu.RLock()
	logs := []internal.WaterLog{}
	for _, l := range s.water {
		if l.UserID == userID && !l.Day.Before(start) && l.Day.Before(endExclusive) {
			logs = append(logs, *l)
		}
	}
	s.mu.RUnlock()

	sort.Slice(logs, func(i, j int) bool { return logs[i].Day.Before(logs[j].Day) })
	return logs, nil
}

// --- SleepEntryRepository ---
func (s *FileStorage) UpsertSleepEntry(ctx context.Context, entry *internal.SleepEntry) (*internal.SleepEntry, error) {
	day := calendar.DayStart(entry.Day)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(entry.UserID, day)
	next := *entry
	next.Day = day
	next.UpdatedAt = now
	if prev, ok := s.sleep[key]; ok {
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
	} else {
		if next.ID == "" {
			next.ID = uuid.NewString()
		}
		next.CreatedAt = now
	}
	s.sleep[key] = &next
	notify(s.sleepWorker)

	out := next
	return &out, nil
}

func (s *FileStorage) FindSleepInRange(ctx context.Context, userID string, start, endExclusive time.Time) ([]internal.SleepEntry, error) {
	start, endExclusive = calendar.DayStart(start), calendar.DayStart(endExclusive)

	s.mu.RLock()
	entries := []internal.SleepEntry{}
	for _, e := range s.sleep {
		if e.UserID == userID && !e.Day.Before(start) && e.Day.Before(endExclusive) {
			entries = append(entries, *e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Day.Before(entries[j].Day) })
	return entries, nil
}

var goalRank = map[internal.GoalType]int{
	internal.GoalExercise: 0,
	internal.GoalWater:    1,
	internal.GoalSleep:    2,
	internal.GoalCustom:   3,
}

// sortGoals orders defaults first (exercise, water, sleep), then custom goals by creation.
func sortGoals(goals []internal.Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		if goalRank[a.Type] != goalRank[b.Type] {
			return goalRank[a.Type] < goalRank[b.Type]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
