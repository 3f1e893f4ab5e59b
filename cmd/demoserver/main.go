// cmd/demoserver runs a minimal HTTP replica suitable as a target for a
// clusterhttp.Client: one endpoint that always answers, and one that can
// be told to fail or stall so a client's strategies and adaptive health
// modifiers have something to react to.
//
// Example — three replicas on one host:
//
//	./demoserver --addr :9001 --id replica-1
//	./demoserver --addr :9002 --id replica-2 --fail-rate 0.3
//	./demoserver --addr :9003 --id replica-3 --latency 200ms
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"clusterhttp/logging"
)

func main() {
	id := flag.String("id", "replica-1", "Replica identifier, echoed in every response")
	addr := flag.String("addr", ":9001", "Listen address (host:port)")
	failRate := flag.Float64("fail-rate", 0, "Fraction of /work requests answered with 503, in [0,1]")
	latency := flag.Duration("latency", 0, "Artificial latency added before every /work response")
	flag.Parse()

	logger := logging.New(logrusLevelFromEnv())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), recoverer(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"replica": *id, "status": "ok"})
	})

	router.Any("/work", func(c *gin.Context) {
		if *latency > 0 {
			time.Sleep(*latency)
		}
		if *failRate > 0 && rand.Float64() < *failRate {
			c.JSON(http.StatusServiceUnavailable, gin.H{"replica": *id, "error": "induced failure"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"replica": *id, "method": c.Request.Method})
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("replica %s listening on %s (fail-rate=%.2f latency=%s)", *id, *addr, *failRate, *latency)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down replica %s", *id)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path).
			WithField("status", c.Writer.Status()).
			WithField("duration", time.Since(start).String()).
			Info("request handled")
	}
}

func recoverer(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithField("panic", err).Error("recovered panic handling request")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func logrusLevelFromEnv() logging.Level {
	if os.Getenv("DEMOSERVER_DEBUG") != "" {
		return logging.DebugLevel
	}
	return logging.InfoLevel
}
