// Package supervisor is the out-of-process lifecycle manager that client
// subcommands call before talking to the proxy: it probes whether a
// compatible proxy is already listening, starts one detached if not, and
// recovers from a stale/incompatible proxy occupying the configured address.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// Outcome is what ensuring the proxy actually did.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeStarted   Outcome = "started"
	OutcomeRestarted Outcome = "restarted"
	OutcomeSkipped   Outcome = "skip"
	OutcomeFailed    Outcome = "failed"
)

// Result reports what Ensure did and the proxy URL callers should now use
// (a candidate port may differ from the one originally requested).
type Result struct {
	Outcome  Outcome
	Message  string
	ProxyURL string
}

const (
	candidatePortSpread = 5
	healthCheckTimeout  = 500 * time.Millisecond
	fastHealthTimeout   = 200 * time.Millisecond
	readyPollAttempts   = 10
	readyPollInterval   = 200 * time.Millisecond
)

// ParseProxyURL splits a proxy URL into its host, port, and scheme,
// defaulting the scheme to http and the port to the scheme's standard port.
func ParseProxyURL(proxyURL string) (host string, port int, scheme string, err error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return "", 0, "", fmt.Errorf("parse proxy url: %w", err)
	}
	scheme = u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host = u.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, "", fmt.Errorf("parse proxy url port: %w", err)
		}
	} else if scheme == "https" {
		port = 443
	} else {
		port = 80
	}
	return host, port, scheme, nil
}

// IsLocalHost reports whether host names this machine, the only case the
// supervisor is willing to start or stop a process for.
func IsLocalHost(host string) bool {
	switch host {
	case "127.0.0.1", "localhost", "::1":
		return true
	default:
		return false
	}
}

// BuildProxyURL assembles a proxy URL from its parts, bracketing a literal
// IPv6 host.
func BuildProxyURL(host string, port int, scheme string) string {
	hostPart := host
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		hostPart = "[" + host + "]"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, hostPart, port)
}

// CandidateProxyURLs yields proxyURL followed by `spread` more candidates at
// incrementally higher ports, for recovering a free port when the
// configured one is occupied by an incompatible or unkillable process.
func CandidateProxyURLs(host string, port int, scheme string, spread int) []string {
	urls := make([]string, 0, spread+1)
	urls = append(urls, BuildProxyURL(host, port, scheme))
	for offset := 1; offset <= spread; offset++ {
		urls = append(urls, BuildProxyURL(host, port+offset, scheme))
	}
	return urls
}

func proxyHealthURL(proxyURL string) string {
	return strings.TrimRight(proxyURL, "/") + "/health"
}

// CheckHealth probes proxyURL's /health endpoint. A nil, nil return means
// nothing answered or answered unhealthy; it is not itself an error the
// caller should report.
func CheckHealth(ctx context.Context, proxyURL string, timeout time.Duration) (*wire.HealthResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, proxyHealthURL(proxyURL), nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", "anthro-bridge/0.1.0")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var health wire.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, nil
	}
	if health.Status != "ok" {
		return nil, nil
	}
	return &health, nil
}

// IsCompatible reports whether a health payload advertises the capabilities
// a calling client actually needs.
func IsCompatible(health *wire.HealthResponse) bool {
	if health == nil {
		return false
	}
	return health.Capabilities.SupportsResponses && health.Capabilities.RetryOnNotChatModel
}

// Launcher starts a detached proxy process bound to host:port that forwards
// to upstreamURL, returning once the process has been launched (not once
// it's ready — callers poll health separately). Platform-specific.
type Launcher func(ctx context.Context, host string, port int, upstreamURL, tag string) error

// Ensure implements the supervisor algorithm: skip non-local proxy URLs,
// reuse an already-healthy compatible proxy, recover from a stale
// incompatible one by hunting for a free candidate port, and otherwise spawn
// a fresh process and wait for it to report ready.
func Ensure(ctx context.Context, proxyURL, upstreamURL, tag string, launch Launcher, forceRestart bool) Result {
	host, port, scheme, err := ParseProxyURL(proxyURL)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Message: err.Error(), ProxyURL: proxyURL}
	}
	if !IsLocalHost(host) {
		return Result{
			Outcome:  OutcomeSkipped,
			Message:  fmt.Sprintf("proxy url %s is not local, skipping auto-start", proxyURL),
			ProxyURL: proxyURL,
		}
	}

	if forceRestart {
		return ensureForceRestart(ctx, host, port, scheme, proxyURL, upstreamURL, tag, launch)
	}

	health, _ := CheckHealth(ctx, proxyURL, healthCheckTimeout)
	if IsCompatible(health) {
		return Result{Outcome: OutcomeRunning, Message: fmt.Sprintf("proxy already running: %s", proxyURL), ProxyURL: proxyURL}
	}
	if health != nil {
		return ensureRecoverStale(ctx, host, port, scheme, proxyURL, upstreamURL, tag, launch)
	}

	ok, startErr := startAndWait(ctx, host, port, proxyURL, upstreamURL, tag, launch)
	if ok {
		return Result{Outcome: OutcomeStarted, Message: fmt.Sprintf("proxy started: %s", proxyURL), ProxyURL: proxyURL}
	}
	return Result{Outcome: OutcomeFailed, Message: startErr.Error(), ProxyURL: proxyURL}
}

func ensureForceRestart(ctx context.Context, host string, port int, scheme, proxyURL, upstreamURL, tag string, launch Launcher) Result {
	killed := TerminateTaggedProcesses(tag)
	if len(killed) > 0 {
		time.Sleep(200 * time.Millisecond)
	}

	// If the tagged-process kill didn't clear the port — something is still
	// answering health checks on it — fall back to a port-level sweep of
	// whatever's still LISTENING there. listeningPIDs is a no-op on POSIX;
	// on Windows it's the netstat pass, mirroring terminate_proxy_processes's
	// own is_local_host(host) and health is not None gate exactly.
	if IsLocalHost(host) {
		if health, _ := CheckHealth(ctx, proxyURL, fastHealthTimeout); health != nil {
			killed = append(killed, TerminateListeningProcesses(port, killed)...)
		}
	}

	// Give the old process a moment to actually release the port: a quick,
	// short-timeout probe rather than the full healthCheckTimeout, since all
	// we need here is "did the port free up" before committing to a start.
	for i := 0; i < 3 && portStillOccupied(ctx, proxyURL); i++ {
		time.Sleep(fastHealthTimeout)
	}

	ok, startErr := startAndWait(ctx, host, port, proxyURL, upstreamURL, tag, launch)
	if ok {
		return Result{Outcome: OutcomeRestarted, Message: fmt.Sprintf("proxy restarted: %s", proxyURL), ProxyURL: proxyURL}
	}

	for _, candidate := range CandidateProxyURLs(host, port, scheme, candidatePortSpread) {
		if candidate == proxyURL {
			continue
		}
		cHost, cPort, _, err := ParseProxyURL(candidate)
		if err != nil {
			continue
		}
		if ok, _ := startAndWait(ctx, cHost, cPort, candidate, upstreamURL, tag, launch); ok {
			return Result{
				Outcome:  OutcomeStarted,
				Message:  fmt.Sprintf("stopped old proxy, trying to start new one. proxy started: %s", candidate),
				ProxyURL: candidate,
			}
		}
	}
	return Result{Outcome: OutcomeFailed, Message: startErr.Error(), ProxyURL: proxyURL}
}

func ensureRecoverStale(ctx context.Context, host string, port int, scheme, proxyURL, upstreamURL, tag string, launch Launcher) Result {
	prefix := fmt.Sprintf("detected old proxy: %s, trying to start new one.", proxyURL)
	for _, candidate := range CandidateProxyURLs(host, port, scheme, candidatePortSpread) {
		if candidate == proxyURL {
			continue
		}
		candidateHealth, _ := CheckHealth(ctx, candidate, healthCheckTimeout)
		if IsCompatible(candidateHealth) {
			return Result{Outcome: OutcomeRunning, Message: fmt.Sprintf("%s found available proxy: %s", prefix, candidate), ProxyURL: candidate}
		}
		if candidateHealth != nil {
			continue
		}
		cHost, cPort, _, err := ParseProxyURL(candidate)
		if err != nil {
			continue
		}
		if ok, _ := startAndWait(ctx, cHost, cPort, candidate, upstreamURL, tag, launch); ok {
			return Result{Outcome: OutcomeStarted, Message: fmt.Sprintf("%s proxy started: %s", prefix, candidate), ProxyURL: candidate}
		}
	}
	return Result{
		Outcome:  OutcomeFailed,
		Message:  fmt.Sprintf("%s startup failed, please manually stop the old proxy and retry", prefix),
		ProxyURL: proxyURL,
	}
}

// portStillOccupied does a fast, best-effort probe of whatever is (or was)
// listening at proxyURL. It can't distinguish "nothing listening" from
// "something listening but not answering HTTP" in the time budget it's
// given, so it only reports true when it gets back a readable health
// response — anything else is treated as free.
func portStillOccupied(ctx context.Context, proxyURL string) bool {
	health, _ := CheckHealth(ctx, proxyURL, fastHealthTimeout)
	return health != nil
}

// TerminateListeningProcesses kills every process with a LISTENING socket
// bound to port, skipping this process and anything already in excluded,
// returning the PIDs it signalled. Mirrors terminate_proxy_processes's
// netstat-based fallback sweep.
func TerminateListeningProcesses(port int, excluded []int) []int {
	currentPID := os.Getpid()
	var killed []int
	for _, pid := range listeningPIDs(port) {
		if pid == currentPID || containsInt(excluded, pid) {
			continue
		}
		if err := killPID(pid); err != nil {
			continue
		}
		killed = append(killed, pid)
	}
	return killed
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func startAndWait(ctx context.Context, host string, port int, proxyURL, upstreamURL, tag string, launch Launcher) (bool, error) {
	if err := launch(ctx, host, port, upstreamURL, tag); err != nil {
		return false, fmt.Errorf("proxy startup failed: %w", err)
	}
	for i := 0; i < readyPollAttempts; i++ {
		health, _ := CheckHealth(ctx, proxyURL, healthCheckTimeout)
		if IsCompatible(health) {
			return true, nil
		}
		time.Sleep(readyPollInterval)
	}
	return false, fmt.Errorf("proxy startup failed: cannot connect to %s", proxyURL)
}

// currentExecutable resolves the running binary's own path, used by the
// Launcher to re-exec itself in server mode.
func currentExecutable() (string, error) {
	return os.Executable()
}
