package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tdsone/calendso/internal/engine"
	"github.com/Tdsone/calendso/internal/types"
	"github.com/Tdsone/calendso/internal/video"
)

type Config struct {
	Engine   *engine.Engine
	Store    types.BookingStore
	Port     int
	CertFile string
	KeyFile  string
}

type Server struct {
	config *Config
	router *gin.Engine
}

func NewServer(config *Config) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}

	router := gin.Default()
	server := &Server{
		config: config,
		router: router,
	}

	// Set up routes
	router.POST("/bookings", server.handleCreateBooking)
	router.PUT("/bookings/:uid", server.handleRescheduleBooking)
	router.GET("/bookings/:uid", server.handleGetBooking)
	router.GET("/healthz", server.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return server
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting server on %s", addr)

	// Check if TLS certificates are provided
	if s.config.CertFile != "" && s.config.KeyFile != "" {
		log.Printf("TLS certificates provided, starting HTTPS server")

		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}

		server := &http.Server{
			Addr:      addr,
			Handler:   s.router,
			TLSConfig: tlsConfig,
		}

		return server.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
	}

	// Fall back to HTTP if no certificates
	return s.router.Run(addr)
}

func (s *Server) handleCreateBooking(c *gin.Context) {
	var meeting types.Meeting
	if err := c.ShouldBindJSON(&meeting); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid booking payload: %v", err)})
		return
	}
	if err := validateMeeting(meeting); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.config.Engine.Create(c.Request.Context(), meeting)
	if err != nil {
		log.Printf("Error creating booking: %v", err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	booking := &types.ExistingBooking{
		ID:         uuid.NewString(),
		UID:        bookingUID(meeting),
		Title:      meeting.Title,
		Attendees:  meeting.Attendees,
		References: result.ReferencesToCreate,
	}
	if err := s.config.Store.CreateBooking(c.Request.Context(), booking); err != nil {
		log.Printf("Error persisting booking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking_uid": booking.UID,
		"results":     result.Results,
		"references":  result.ReferencesToCreate,
	})
}

func (s *Server) handleRescheduleBooking(c *gin.Context) {
	rescheduleUID := c.Param("uid")

	var meeting types.Meeting
	if err := c.ShouldBindJSON(&meeting); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid booking payload: %v", err)})
		return
	}
	if err := validateMeeting(meeting); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.config.Engine.Update(c.Request.Context(), meeting, rescheduleUID)
	if err != nil {
		log.Printf("Error rescheduling booking %s: %v", rescheduleUID, err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	// The engine hands back the replaced booking's references; the fresh
	// ones are derived from the new results before persisting.
	booking := &types.ExistingBooking{
		ID:         uuid.NewString(),
		UID:        bookingUID(meeting),
		Title:      meeting.Title,
		Attendees:  meeting.Attendees,
		References: engine.BuildReferences(result.Results),
	}
	if err := s.config.Store.CreateBooking(c.Request.Context(), booking); err != nil {
		log.Printf("Error persisting rescheduled booking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking_uid":         booking.UID,
		"results":             result.Results,
		"replaced_references": result.ReferencesToCreate,
		"references":          booking.References,
	})
}

func (s *Server) handleGetBooking(c *gin.Context) {
	booking, err := s.config.Store.BookingByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		if errors.Is(err, types.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validateMeeting rejects payloads the engine cannot orchestrate.
func validateMeeting(meeting types.Meeting) error {
	if meeting.Title == "" {
		return fmt.Errorf("meeting title is required")
	}
	if meeting.StartTime.IsZero() || meeting.EndTime.IsZero() {
		return fmt.Errorf("meeting start and end times are required")
	}
	if !meeting.EndTime.After(meeting.StartTime) {
		return fmt.Errorf("meeting end time must be after start time")
	}
	if meeting.Language == "" {
		return fmt.Errorf("meeting language is required")
	}
	return nil
}

// bookingUID keeps the caller-supplied uid when present.
func bookingUID(meeting types.Meeting) string {
	if meeting.UID != "" {
		return meeting.UID
	}
	return uuid.NewString()
}

// statusForError maps engine failures onto HTTP statuses: invalid input is
// a 400, a missing booking a 404, anything else a provider-side 502.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrMissingRescheduleTarget):
		return http.StatusBadRequest
	case errors.Is(err, video.ErrNoSuitableCredential):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrBookingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
