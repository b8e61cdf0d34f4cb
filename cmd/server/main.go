package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senzi/weibochat-insight/internal/api"
	"github.com/senzi/weibochat-insight/internal/cache"
	"github.com/senzi/weibochat-insight/internal/config"
	"github.com/senzi/weibochat-insight/internal/dataset"
	"github.com/senzi/weibochat-insight/internal/session"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	// Load configuration; a missing config file is fine, defaults apply.
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Println("No config file found, using defaults")
		cfg = config.Default()
	}

	// Pre-flight check: verify the target port is available
	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	// Initialize the aggregation cache
	c, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	log.Printf("Aggregation cache initialized (type: %s)", cfg.Cache.Type)

	// Initialize dataset store and session
	store := dataset.NewStore(cfg.Data.ProcessedDir)
	sess := session.New(store, c)

	// Load everything under the processed dir by default. An empty or
	// missing dir is not fatal; clients can select files once data exists.
	ctx, cancel := context.WithCancel(context.Background())
	if n, err := sess.LoadDefault(ctx); err != nil {
		if errors.Is(err, dataset.ErrNoData) {
			log.Printf("No processed files in %s yet, starting without a dataset", cfg.Data.ProcessedDir)
		} else {
			log.Printf("Warning: default dataset load failed: %v", err)
		}
	} else {
		log.Printf("Loaded %d records from %d files", n, len(sess.Selection()))
	}

	server := api.NewServer(cfg.Server, sess)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
