// Command heyfastq-server provides a REST API for heyfastq operations.
//
// Usage:
//
//	heyfastq-server [options]
//
// Options:
//
//	-port     Port to listen on (default: 8080)
//	-host     Host to bind to (default: localhost)
//
// HEYFASTQ_MAX_BODY sets the largest FASTQ body accepted, in bytes, and
// HEYFASTQ_MAX_THREADS the most worker threads a request may use.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/heyfastq/heyfastq-go/api"
	"github.com/heyfastq/heyfastq-go/api/handlers"
)

const (
	maxBodyEnv    = "HEYFASTQ_MAX_BODY"
	maxThreadsEnv = "HEYFASTQ_MAX_THREADS"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	verbose := flag.Bool("verbose", false, "Log debug information")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if v := os.Getenv(maxBodyEnv); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid %s: %q", maxBodyEnv, v)
		}
		handlers.MaxBodyBytes = n
	}
	if v := os.Getenv(maxThreadsEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid %s: %q", maxThreadsEnv, v)
		}
		handlers.MaxThreads = n
	}
	log.Debugf("Maximum request body: %d bytes, threads: %d", handlers.MaxBodyBytes, handlers.MaxThreads)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(log.StandardLogger()),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Could not gracefully shutdown: %v", err)
		}
		close(done)
	}()

	log.Infof("heyfastq API server starting on http://%s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v", addr, err)
	}

	<-done
	log.Info("Server stopped")
}
