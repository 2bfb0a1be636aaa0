package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"
)

func main() {
	serverAddr := flag.String("server-addr", "http://localhost:8080", "HTTP server address")
	numWorkers := flag.Int("workers", 32, "Concurrent workers")
	ordersPerWorker := flag.Int("orders", 1000, "Orders per worker")
	maxRate := flag.Float64("rate", 2000, "Max orders per second")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, cleaning up...")
		cancel()
	}()

	client := &http.Client{Timeout: 10 * time.Second}
	limiter := rate.NewLimiter(rate.Limit(*maxRate), int(*maxRate))

	// Latency recorded in microseconds, up to 10s.
	hist := hdrhistogram.New(1, 10_000_000, 3)
	var histMu sync.Mutex
	var sent, failed atomic.Int64

	var wg sync.WaitGroup
	start := time.Now()
	log.Printf("Starting %d workers, %d orders per worker...", *numWorkers, *ordersPerWorker)

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
			for j := 0; j < *ordersPerWorker; j++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				elapsed, err := submitOrder(ctx, client, *serverAddr, r)
				if err != nil {
					failed.Add(1)
					continue
				}
				sent.Add(1)
				histMu.Lock()
				_ = hist.RecordValue(elapsed.Microseconds())
				histMu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	duration := time.Since(start)

	total := sent.Load() + failed.Load()
	log.Printf("Load test completed in %v", duration)
	log.Printf("Total orders attempted: %d", total)
	log.Printf("Errors encountered: %d", failed.Load())
	log.Printf("Throughput: %.0f orders/sec", float64(sent.Load())/duration.Seconds())
	log.Printf("Latency p50: %v", time.Duration(hist.ValueAtQuantile(50))*time.Microsecond)
	log.Printf("Latency p95: %v", time.Duration(hist.ValueAtQuantile(95))*time.Microsecond)
	log.Printf("Latency p99: %v", time.Duration(hist.ValueAtQuantile(99))*time.Microsecond)
	log.Printf("Latency max: %v", time.Duration(hist.Max())*time.Microsecond)

	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// submitOrder posts one random order around the 100.00 midpoint; narrow
// pricing keeps the matching probability high so the hot path is exercised.
func submitOrder(ctx context.Context, client *http.Client, addr string, r *rand.Rand) (time.Duration, error) {
	side := "buy"
	if r.Float64() < 0.5 {
		side = "sell"
	}
	price := fmt.Sprintf("%.2f", 99.0+r.Float64()*2.0)

	payload, err := json.Marshal(map[string]any{
		"side":     side,
		"price":    price,
		"quantity": int64(1 + r.Intn(10)),
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/orders", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return time.Since(start), nil
}
