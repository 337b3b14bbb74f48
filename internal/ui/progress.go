package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress reports cascade stage progress. On a terminal it animates a
// spinner on one line; otherwise it prints one line per stage.
type Progress struct {
	out         io.Writer
	interactive bool
	chars       []string
	delay       time.Duration

	mu       sync.Mutex
	label    string
	fraction float64
	active   bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewProgress creates a progress reporter writing to out.
func NewProgress(out io.Writer, interactive bool) *Progress {
	return &Progress{
		out:         out,
		interactive: interactive,
		chars:       []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:       100 * time.Millisecond,
	}
}

// Update records the current stage. Its signature matches cascade.ProgressFunc.
func (p *Progress) Update(label string, fraction float64) {
	p.mu.Lock()
	p.label = label
	p.fraction = fraction
	if !p.interactive {
		p.mu.Unlock()
		fmt.Fprintf(p.out, "[%3.0f%%] %s\n", fraction*100, label)
		return
	}
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.stopChan = make(chan struct{})
	stop := p.stopChan
	p.mu.Unlock()

	p.wg.Add(1)
	go p.spin(stop)
}

func (p *Progress) spin(stop <-chan struct{}) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.delay)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			i = (i + 1) % len(p.chars)
			p.mu.Lock()
			line := fmt.Sprintf("\r\033[K%s [%3.0f%%] %s", StylePrimary.Render(p.chars[i]), p.fraction*100, p.label)
			p.mu.Unlock()
			fmt.Fprint(p.out, line)
		}
	}
}

// Stop halts the spinner and clears the line. Safe to call more than once.
func (p *Progress) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	fmt.Fprint(p.out, "\r\033[K")
}
