package client

import "context"

// HabitService accesses habit endpoints
type HabitService struct {
	client *Client
}

// Habits returns the habit service
func (c *Client) Habits() *HabitService {
	return &HabitService{client: c}
}

// CreateHabitRequest represents a habit creation request
type CreateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cadence     string `json:"cadence,omitempty"`
}

// UpdateHabitRequest represents a habit update request
type UpdateHabitRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Cadence     *string `json:"cadence,omitempty"`
}

// CheckInRequest represents a check-in request
type CheckInRequest struct {
	Day string `json:"day,omitempty"`
}

// Create creates a new habit
func (s *HabitService) Create(ctx context.Context, req CreateHabitRequest) (*Habit, error) {
	var h Habit
	if err := s.client.doRequest(ctx, "POST", "/api/v1/habits", req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// List retrieves all habits
func (s *HabitService) List(ctx context.Context) ([]Habit, error) {
	var habits []Habit
	if err := s.client.doRequest(ctx, "GET", "/api/v1/habits", nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// Get retrieves a habit with its streak
func (s *HabitService) Get(ctx context.Context, id string) (*HabitWithStreak, error) {
	var hs HabitWithStreak
	if err := s.client.doRequest(ctx, "GET", "/api/v1/habits/"+id, nil, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

// Update updates a habit
func (s *HabitService) Update(ctx context.Context, id string, req UpdateHabitRequest) (*Habit, error) {
	var h Habit
	if err := s.client.doRequest(ctx, "PUT", "/api/v1/habits/"+id, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Delete deletes a habit
func (s *HabitService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", "/api/v1/habits/"+id, nil, nil)
}

// CheckIn records a completion for a habit; day defaults to today when empty
func (s *HabitService) CheckIn(ctx context.Context, id, day string) (*Streak, error) {
	var streak Streak
	if err := s.client.doRequest(ctx, "POST", "/api/v1/habits/"+id+"/checkin", CheckInRequest{Day: day}, &streak); err != nil {
		return nil, err
	}
	return &streak, nil
}
