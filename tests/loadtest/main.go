package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	numWorkers   = 50
	testDuration = 10 * time.Second
	numUsers     = 200
	clipBytes    = 64 << 10
)

var (
	baseURL = flag.String("url", "http://127.0.0.1:8080", "server base URL")
	// Uploads are answered with 503 when speech recognition is disabled on
	// the server; with -speech they must succeed.
	speech = flag.Bool("speech", false, "expect uploads to be transcribed")
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()
	fmt.Println("=== Nena Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Users: %d\n\n", numWorkers, testDuration, numUsers)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	clip := make([]byte, clipBytes)

	// Phase 1: Uploads only
	fmt.Println("\n--- Phase 1: Uploads (POST /recordings) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doUpload(rng, clip)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (20% upload, 80% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return doUpload(rng, clip)
		case r < 0.50:
			return doGet(rng, "/dashboard")
		case r < 0.65:
			return doGet(rng, "/analytics")
		case r < 0.80:
			return doGet(rng, "/badges")
		case r < 0.92:
			return doGet(rng, "/coaching/insights")
		default:
			return doGet(rng, "/coaching/practice-ideas")
		}
	})

	// Phase 3: Dashboard-heavy load, mostly served from cache
	fmt.Println("\n--- Phase 3: Read-heavy load (dashboard 90%) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.10 {
			return doGet(rng, "/badges")
		}
		return doGet(rng, "/dashboard")
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-30s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-30s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomUser(rng *rand.Rand) string {
	return fmt.Sprintf("user_%d", rng.Intn(numUsers))
}

func send(endpoint string, req *http.Request, ok ...int) result {
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	for _, code := range ok {
		if resp.StatusCode == code {
			return result{endpoint, resp.StatusCode, lat, false}
		}
	}
	return result{endpoint, resp.StatusCode, lat, true}
}

func doUpload(rng *rand.Rand, clip []byte) result {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("userId", randomUser(rng))
	_ = mw.WriteField("duration", fmt.Sprintf("%d", rng.Intn(120)+10))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="audio"; filename="clip.wav"`)
	h.Set("Content-Type", "audio/wav")
	part, _ := mw.CreatePart(h)
	_, _ = part.Write(clip)
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, *baseURL+"/recordings", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if *speech {
		return send("POST /recordings", req, http.StatusCreated, http.StatusUnprocessableEntity)
	}
	return send("POST /recordings", req, http.StatusServiceUnavailable)
}

func doGet(rng *rand.Rand, path string) result {
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s%s?user=%s", *baseURL, path, randomUser(rng)), nil)
	return send("GET "+path, req, http.StatusOK)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
