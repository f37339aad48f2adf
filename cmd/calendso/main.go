package main

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Tdsone/calendso/internal/calendarapi"
	"github.com/Tdsone/calendso/internal/daily"
	"github.com/Tdsone/calendso/internal/engine"
	"github.com/Tdsone/calendso/internal/providers"
	"github.com/Tdsone/calendso/internal/registry"
	"github.com/Tdsone/calendso/internal/server"
	"github.com/Tdsone/calendso/internal/store"
	"github.com/Tdsone/calendso/internal/types"
	"github.com/Tdsone/calendso/internal/zoom"
)

// loadCredentials reads the provider credential list from a JSON file. The
// credential store itself (issuing, encryption) lives outside this service.
func loadCredentials(path string) ([]types.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var creds []types.Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	config := &server.Config{Port: 8080}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("Invalid PORT %q: %v", port, err)
		}
		config.Port = p
	}

	// Check for TLS certificate paths
	certFile := os.Getenv("TLS_CERT_FILE")
	keyFile := os.Getenv("TLS_KEY_FILE")
	if certFile != "" && keyFile != "" {
		config.CertFile = certFile
		config.KeyFile = keyFile
		log.Printf("TLS configuration: using cert %s and key %s", certFile, keyFile)
	} else {
		log.Println("TLS configuration: not provided, using HTTP only")
	}

	// Load provider credentials
	var credentials []types.Credential
	if credentialsFile := os.Getenv("CREDENTIALS_FILE"); credentialsFile != "" {
		var err error
		credentials, err = loadCredentials(credentialsFile)
		if err != nil {
			log.Fatalf("Failed to load credentials from %s: %v", credentialsFile, err)
		}
		log.Printf("Loaded %d credentials from %s", len(credentials), credentialsFile)
	} else {
		log.Println("CREDENTIALS_FILE not set, starting with no provider credentials")
	}

	enableBuiltInVideo := os.Getenv("ENABLE_BUILTIN_VIDEO") == "true"
	if enableBuiltInVideo {
		log.Println("Built-in video provider enabled")
	}
	reg := registry.New(credentials, registry.Options{EnableBuiltInVideo: enableBuiltInVideo})

	// Wire the provider clients
	directory := providers.NewDirectory()

	zoomOAuth := &zoom.OAuthConfig{
		ClientID:     os.Getenv("ZOOM_CLIENT_ID"),
		ClientSecret: os.Getenv("ZOOM_CLIENT_SECRET"),
	}
	directory.RegisterVideo("zoom", zoom.NewClient(zoomOAuth))
	directory.RegisterVideo("daily", daily.NewClient(os.Getenv("DAILY_API_URL"), os.Getenv("DAILY_API_KEY")))

	// Use the recording test client when no calendar backend is configured
	calendarEndpoint := os.Getenv("CALENDAR_API_URL")
	var calendarClient types.CalendarClient
	if calendarEndpoint == "" || os.Getenv("USE_TEST_CLIENT") == "true" {
		log.Println("Using test calendar client (events will be logged but not sent)")
		calendarClient = calendarapi.NewTestClient()
	} else {
		log.Printf("Using HTTP calendar client with endpoint: %s", calendarEndpoint)
		calendarClient = calendarapi.NewHTTPClient(calendarEndpoint)
	}
	for _, cred := range reg.CalendarCredentials() {
		slug := cred.Type[:len(cred.Type)-len("_calendar")]
		directory.RegisterCalendar(slug, calendarClient)
	}

	// Initialize booking store
	storageDir := os.Getenv("BOOKING_STORE_DIR")
	if storageDir == "" {
		storageDir = "data/bookings"
	}

	var bookingStore types.BookingStore
	switch os.Getenv("BOOKING_STORE_TYPE") {
	case "memory":
		log.Println("Using in-memory booking store (bookings will be lost on restart)")
		bookingStore = store.NewMemoryStore()
	case "file":
		fallthrough
	default:
		log.Printf("Using file-based booking store in directory: %s", storageDir)
		var err error
		bookingStore, err = store.NewFileStore(storageDir)
		if err != nil {
			log.Fatalf("Failed to create booking store: %v", err)
		}
	}

	config.Store = bookingStore
	config.Engine = engine.New(reg, directory, bookingStore)

	// Create and start the server
	srv := server.NewServer(config)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
