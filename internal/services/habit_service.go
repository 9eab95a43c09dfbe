package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plannerhq/planner/internal/cache"
	"github.com/plannerhq/planner/internal/domain/habit"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/pkg/logger"
)

const dayFormat = "2006-01-02"

// HabitService implements habit.Service
type HabitService struct {
	repo   habit.Repository
	users  user.Repository
	cache  *cache.Cache
	logger *logger.Logger
}

// NewHabitService creates a new habit service
func NewHabitService(repo habit.Repository, users user.Repository, c *cache.Cache, log *logger.Logger) habit.Service {
	return &HabitService{
		repo:   repo,
		users:  users,
		cache:  c,
		logger: log,
	}
}

func habitListCacheKey(userID string) string {
	return cache.Key("habits", userID)
}

// Create creates a habit for the user, enforcing the free plan limit
func (s *HabitService) Create(ctx context.Context, userID string, h *habit.Habit) (*habit.Habit, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !u.IsPro() {
		count, err := s.repo.CountByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= habit.FreePlanLimit {
			return nil, errors.PlanLimitError(
				fmt.Sprintf("Free plan is limited to %d habits. Upgrade to Pro for unlimited habits.", habit.FreePlanLimit))
		}
	}

	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return nil, errors.BadRequest("Habit name is required")
	}
	if h.Cadence == "" {
		h.Cadence = habit.CadenceDaily
	}
	if h.Cadence != habit.CadenceDaily && h.Cadence != habit.CadenceWeekly {
		return nil, errors.BadRequest("Habit cadence must be daily or weekly")
	}

	h.ID = uuid.New().String()
	h.UserID = userID

	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create habit")
		return nil, err
	}

	s.cache.Del(ctx, habitListCacheKey(userID))
	return h, nil
}

// Get retrieves a habit
func (s *HabitService) Get(ctx context.Context, userID, id string) (*habit.Habit, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves a user's habits
func (s *HabitService) List(ctx context.Context, userID string) ([]*habit.Habit, error) {
	var cached []*habit.Habit
	if ok := s.cache.Get(ctx, habitListCacheKey(userID), &cached); ok {
		return cached, nil
	}

	habits, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, habitListCacheKey(userID), habits, 10*time.Minute)
	return habits, nil
}

// Update updates a habit
func (s *HabitService) Update(ctx context.Context, userID string, h *habit.Habit) (*habit.Habit, error) {
	existing, err := s.repo.GetByID(ctx, userID, h.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(h.Name)
	if existing.Name == "" {
		return nil, errors.BadRequest("Habit name is required")
	}
	existing.Description = h.Description
	if h.Cadence != "" {
		if h.Cadence != habit.CadenceDaily && h.Cadence != habit.CadenceWeekly {
			return nil, errors.BadRequest("Habit cadence must be daily or weekly")
		}
		existing.Cadence = h.Cadence
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update habit")
		return nil, err
	}

	s.cache.Del(ctx, habitListCacheKey(userID))
	return existing, nil
}

// Delete deletes a habit
func (s *HabitService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.Del(ctx, habitListCacheKey(userID))
	return nil
}

// CheckIn records a completion for the given day
func (s *HabitService) CheckIn(ctx context.Context, userID, id, day string) error {
	h, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if day == "" {
		day = time.Now().UTC().Format(dayFormat)
	}
	if _, err := time.Parse(dayFormat, day); err != nil {
		return errors.BadRequest("Day must be formatted YYYY-MM-DD")
	}

	return s.repo.AddCheckIn(ctx, &habit.CheckIn{
		HabitID:   h.ID,
		Day:       day,
		CheckedAt: time.Now().UTC(),
	})
}

// GetStreak computes current and longest daily streaks for a habit
func (s *HabitService) GetStreak(ctx context.Context, userID, id string) (*habit.Streak, error) {
	h, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// A year of check-ins is plenty for streak accounting.
	checkIns, err := s.repo.ListCheckIns(ctx, h.ID, 366)
	if err != nil {
		return nil, err
	}

	return computeStreak(checkIns, time.Now().UTC()), nil
}

// computeStreak walks check-ins from most recent to oldest. The current
// streak only counts if the latest check-in is today or yesterday.
func computeStreak(checkIns []*habit.CheckIn, now time.Time) *habit.Streak {
	streak := &habit.Streak{}
	if len(checkIns) == 0 {
		return streak
	}

	days := make([]time.Time, 0, len(checkIns))
	for _, c := range checkIns {
		d, err := time.Parse(dayFormat, c.Day)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return streak
	}

	// Longest run of consecutive days anywhere in the history.
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > streak.Longest {
			streak.Longest = run
		}
	}
	if streak.Longest == 0 {
		streak.Longest = 1
	}

	// Current run must reach today or yesterday.
	today, _ := time.Parse(dayFormat, now.Format(dayFormat))
	if diff := today.Sub(days[0]); diff > 24*time.Hour {
		return streak
	}
	current := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			current++
		} else {
			break
		}
	}
	streak.Current = current

	return streak
}
