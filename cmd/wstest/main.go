// Package main provides a load testing tool for the live view-counter
// WebSocket endpoint. It opens many watcher connections against a public
// stash page and optionally drives page visits to force counter broadcasts.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	UpdatesReceived      int64
	VisitsSent           int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8460", "API server host")
	username := flag.String("username", "maya-makes", "Public stash username to watch")
	watchers := flag.Int("watchers", 50, "Number of concurrent watcher connections")
	visitEvery := flag.Duration("visit-every", 2*time.Second, "Interval between page visits (0 disables)")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	log.Printf("Starting view-counter stress test")
	log.Printf("Target: %s", *host)
	log.Printf("Page: /%s", *username)
	log.Printf("Watchers: %d", *watchers)
	log.Printf("Duration: %v", *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *watchers; i++ {
		wg.Add(1)
		go runWatcher(*host, *username, stopChan, &wg)
		time.Sleep(20 * time.Millisecond) // stagger dials
	}

	if *visitEvery > 0 {
		wg.Add(1)
		go runVisitor(*host, *username, *visitEvery, stopChan, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Println("Test duration reached")
	case <-interrupt:
		log.Println("Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for watchers to disconnect...")
	wg.Wait()

	printMetrics()
}

// runVisitor fetches the public page on an interval. Every fetch increments
// the counter server-side, which should fan out to every watcher.
func runVisitor(host, username string, every time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	pageURL := fmt.Sprintf("http://%s/api/stash/%s", host, username)
	client := &http.Client{Timeout: 5 * time.Second}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			resp, err := client.Get(pageURL)
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.VisitsSent, 1)
		}
	}
}

func runWatcher(host, username string, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/views/" + username}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var update struct {
				Type      string `json:"type"`
				ViewCount int64  `json:"view_count"`
			}
			if err := json.Unmarshal(msg, &update); err != nil || update.Type != "view_count" {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.UpdatesReceived, 1)
		}
	}()

	select {
	case <-stopChan:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
	}
}

func printMetrics() {
	log.Println("\nTest Results")
	log.Println("============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Visits Sent: %d", atomic.LoadInt64(&metrics.VisitsSent))
	log.Printf("Counter Updates Received: %d", atomic.LoadInt64(&metrics.UpdatesReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
