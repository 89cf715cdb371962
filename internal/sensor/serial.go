package sensor

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// requestByte asks the bridge for one frame.
const requestByte = 'S'

// SerialReader polls an ADC bridge that answers each request byte with one
// "left,right\n" frame.
type SerialReader struct {
	port io.ReadWriteCloser
	rd   *bufio.Reader
}

// OpenSerial opens the bridge on the given device.
func OpenSerial(device string, baud int) (*SerialReader, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return NewSerialReader(port), nil
}

// NewSerialReader wraps an already open port.
func NewSerialReader(port io.ReadWriteCloser) *SerialReader {
	return &SerialReader{port: port, rd: bufio.NewReader(port)}
}

// Read requests and parses one frame.
func (r *SerialReader) Read() (int, int, error) {
	if _, err := r.port.Write([]byte{requestByte}); err != nil {
		return 0, 0, fmt.Errorf("request frame: %w", err)
	}
	line, err := r.rd.ReadString('\n')
	if err != nil {
		return 0, 0, fmt.Errorf("read frame: %w", err)
	}
	return ParseFrame(line)
}

// Close closes the port.
func (r *SerialReader) Close() error {
	return r.port.Close()
}

// ParseFrame parses a "left,right" frame. Surrounding whitespace and a
// trailing CR are ignored.
func ParseFrame(line string) (int, int, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("malformed frame %q: want 2 fields, got %d", line, len(fields))
	}
	left, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed frame %q: left: %w", line, err)
	}
	right, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed frame %q: right: %w", line, err)
	}
	return left, right, nil
}
