package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_NonInteractivePrintsLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false)

	p.Update("Generating first-order effects", 0.2)
	p.Update("Complete", 1.0)
	p.Stop()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[ 20%] Generating first-order effects",
		"[100%] Complete",
	}, lines)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgress_InteractiveSpinsUntilStopped(t *testing.T) {
	out := &lockedBuffer{}
	p := NewProgress(out, true)
	p.delay = time.Millisecond

	p.Update("Tracing higher-order effects", 0.5)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Tracing higher-order effects")
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"))
}
