package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Tdsone/calendso/internal/types"
)

// MemoryStore implements the booking store with in-memory storage. Bookings
// are lost on restart; intended for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	byUID map[string]*types.ExistingBooking
	byID  map[string]*types.ExistingBooking
}

// NewMemoryStore creates a new in-memory booking store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUID: make(map[string]*types.ExistingBooking),
		byID:  make(map[string]*types.ExistingBooking),
	}
}

// BookingByUID resolves a booking by its reschedule uid.
func (s *MemoryStore) BookingByUID(ctx context.Context, uid string) (*types.ExistingBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.byUID[uid]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

// CreateBooking persists a new booking with its references.
func (s *MemoryStore) CreateBooking(ctx context.Context, booking *types.ExistingBooking) error {
	if booking.ID == "" || booking.UID == "" {
		return fmt.Errorf("booking requires both id and uid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *booking
	s.byUID[copied.UID] = &copied
	s.byID[copied.ID] = &copied
	return nil
}

// DeleteReferences removes all provider references for a booking.
func (s *MemoryStore) DeleteReferences(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking, ok := s.byID[bookingID]; ok {
		booking.References = nil
	}
	return nil
}

// DeleteAttendees removes all attendees for a booking.
func (s *MemoryStore) DeleteAttendees(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking, ok := s.byID[bookingID]; ok {
		booking.Attendees = nil
	}
	return nil
}

// DeleteBooking removes the booking row itself.
func (s *MemoryStore) DeleteBooking(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking, ok := s.byID[bookingID]; ok {
		delete(s.byUID, booking.UID)
		delete(s.byID, bookingID)
	}
	return nil
}
