package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// send-booking posts a sample booking against a locally running server:
//
//	send-booking create       book a zoom meeting
//	send-booking reschedule <uid>   replace an existing booking
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	baseURL := os.Getenv("CALENDSO_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	action := "create"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	meeting := sampleMeeting()

	switch action {
	case "reschedule":
		if len(os.Args) < 3 {
			log.Fatal("reschedule requires a booking uid")
		}
		uid := os.Args[2]
		if err := send("PUT", baseURL+"/bookings/"+uid, meeting); err != nil {
			log.Fatalf("Error rescheduling booking: %v", err)
		}
		log.Printf("Booking %s rescheduled successfully!", uid)
	default:
		if err := send("POST", baseURL+"/bookings", meeting); err != nil {
			log.Fatalf("Error creating booking: %v", err)
		}
		log.Println("Booking created successfully!")
	}
}

func sampleMeeting() map[string]interface{} {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	return map[string]interface{}{
		"title":      "Product sync",
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(30 * time.Minute).Format(time.RFC3339),
		"location":   "integrations:zoom",
		"language":   "en",
		"organizer": map[string]interface{}{
			"name":  "Host Person",
			"email": "host@example.com",
		},
		"attendees": []map[string]interface{}{
			{
				"name":  "Guest Person",
				"email": "guest@example.com",
			},
		},
	}
}

func send(method, url string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling booking: %v", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("URL: %s %s", method, url)
	log.Printf("Payload: %s", string(payload))

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %v", err)
	}
	log.Printf("Response status: %d", resp.StatusCode)
	log.Printf("Response body: %s", string(respBody))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
