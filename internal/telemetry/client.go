package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client sends events. Track never blocks on the network.
type Client interface {
	Track(e Event)
	// Close flushes queued events.
	Close() error
}

// Properties is a type alias for event properties.
type Properties = map[string]any

// enqueuer is the subset of the PostHog client we use.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient queues events on a PostHog client, which batches and
// sends them in the background.
type PostHogClient struct {
	client  enqueuer
	config  *Config
	version string

	mu     sync.Mutex
	closed bool
}

// ClientConfig configures New.
type ClientConfig struct {
	// APIKey is the PostHog project key. Empty disables sending.
	APIKey string
	// Endpoint overrides the PostHog cloud endpoint (self-hosted).
	Endpoint string
	Version  string
	Config   *Config
}

// New returns a PostHog-backed client when telemetry is enabled, a key is
// configured and DO_NOT_TRACK is unset. Otherwise it returns a NoopClient.
func New(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" || cfg.Config == nil || !cfg.Config.Enabled || DoNotTrack() {
		return NewNoopClient(), nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  time.Second,
		// Transport warnings must never reach CLI output.
		Logger: quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClient(client, cfg.Config, cfg.Version), nil
}

func newPostHogClient(enq enqueuer, cfg *Config, version string) *PostHogClient {
	return &PostHogClient{client: enq, config: cfg, version: version}
}

// Track enqueues e with the standard os, arch and version properties.
func (c *PostHogClient) Track(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.config.Enabled {
		return
	}

	props := posthog.NewProperties()
	for k, v := range e.Props {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("cli_version", c.version)
	// No person profiles: events stay anonymous.
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.config.AnonymousID,
		Event:      e.Name,
		Properties: props,
	})
}

// Close flushes the queue. Later calls are no-ops.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient drops every event.
type NoopClient struct{}

// NewNoopClient returns a client that does nothing.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

func (*NoopClient) Track(Event) {}

func (*NoopClient) Close() error { return nil }

type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
