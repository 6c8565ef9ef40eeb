package scanio

import (
	"bufio"
	"context"
	"io"

	"go.bug.st/serial"

	"github.com/banshee-data/occupancy.report/internal/monitoring"
)

// PortInterface abstracts a line-oriented scan source so tests can replace
// the physical serial port.
type PortInterface interface {
	Events() <-chan string
	Monitor(ctx context.Context) error
	Close() error
}

// ScanPort reads scan-log lines from a serial-attached sensor. Each line on
// the wire uses the same pose/sample records as the scan-log file format.
type ScanPort struct {
	serial.Port
	events chan string
}

// NewScanPort opens the serial port in 8N1 mode at the given baud rate.
func NewScanPort(portName string, baudRate int) (*ScanPort, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: 1,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	return &ScanPort{Port: port, events: make(chan string)}, nil
}

// Events returns the channel of raw lines read from the port.
func (p *ScanPort) Events() <-chan string {
	return p.events
}

// Close closes the serial port.
func (p *ScanPort) Close() error {
	return p.Port.Close()
}

// Monitor reads lines from the port and forwards them to the events channel
// until the context is cancelled or the port errors out.
func (p *ScanPort) Monitor(ctx context.Context) error {
	defer p.Close()
	scan := bufio.NewScanner(p.Port)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if !scan.Scan() {
				return scan.Err()
			}
			select {
			case p.events <- scan.Text():
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// MockScanPort replays lines from an io.Reader, for tests and offline runs.
type MockScanPort struct {
	Data       io.Reader
	EventsChan chan string
}

// Events returns the replay channel.
func (m *MockScanPort) Events() <-chan string {
	return m.EventsChan
}

// Monitor streams every line of Data to the events channel, then blocks
// until the context is cancelled.
func (m *MockScanPort) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(m.Data)
	for scan.Scan() {
		select {
		case m.EventsChan <- scan.Text():
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

// Close is a no-op for the mock.
func (m *MockScanPort) Close() error {
	return nil
}

// CollectSteps drains a port's event stream, parsing scan-log lines into
// steps until the context is cancelled or maxSteps complete steps have
// arrived (0 means no limit). Malformed lines are logged and dropped rather
// than aborting the stream.
func CollectSteps(ctx context.Context, port PortInterface, maxSteps int) []StreamedStep {
	logf := monitoring.Prefixed("ScanPort")
	var steps []StreamedStep
	parser := newStreamParser()

	for {
		select {
		case <-ctx.Done():
			return append(steps, parser.flush()...)
		case line, ok := <-port.Events():
			if !ok {
				return append(steps, parser.flush()...)
			}
			done, err := parser.feed(line)
			if err != nil {
				logf("dropping malformed line %q: %v", line, err)
				continue
			}
			steps = append(steps, done...)
			if maxSteps > 0 && len(steps) >= maxSteps {
				return steps[:maxSteps]
			}
		}
	}
}
