package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tdsone/calendso/internal/types"
)

// FileStore implements the booking store using a JSON file. The whole file
// is loaded on open and rewritten on every mutation; good enough for a
// single-process deployment.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	bookings map[string]*types.ExistingBooking // keyed by booking id
}

// NewFileStore creates a file-based booking store under storageDir.
func NewFileStore(storageDir string) (*FileStore, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create booking storage directory: %w", err)
	}

	store := &FileStore{
		filePath: filepath.Join(storageDir, "bookings.json"),
		bookings: make(map[string]*types.ExistingBooking),
	}

	// Attempt to load existing bookings
	if err := store.load(); err != nil {
		// It's okay if the file doesn't exist yet
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
	}

	return store, nil
}

// BookingByUID resolves a booking by its reschedule uid.
func (s *FileStore) BookingByUID(ctx context.Context, uid string) (*types.ExistingBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, booking := range s.bookings {
		if booking.UID == uid {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, types.ErrBookingNotFound
}

// CreateBooking persists a new booking with its references.
func (s *FileStore) CreateBooking(ctx context.Context, booking *types.ExistingBooking) error {
	if booking.ID == "" || booking.UID == "" {
		return fmt.Errorf("booking requires both id and uid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *booking
	s.bookings[copied.ID] = &copied
	return s.save()
}

// DeleteReferences removes all provider references for a booking.
func (s *FileStore) DeleteReferences(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking, ok := s.bookings[bookingID]; ok {
		booking.References = nil
		return s.save()
	}
	return nil
}

// DeleteAttendees removes all attendees for a booking.
func (s *FileStore) DeleteAttendees(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking, ok := s.bookings[bookingID]; ok {
		booking.Attendees = nil
		return s.save()
	}
	return nil
}

// DeleteBooking removes the booking row itself.
func (s *FileStore) DeleteBooking(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[bookingID]; ok {
		delete(s.bookings, bookingID)
		return s.save()
	}
	return nil
}

// load reads the booking file from disk
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var bookings map[string]*types.ExistingBooking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return fmt.Errorf("failed to unmarshal bookings: %w", err)
	}

	s.bookings = bookings
	return nil
}

// save writes the booking file to disk; callers hold the lock
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bookings: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write bookings to file: %w", err)
	}
	return nil
}
