// Package trace reads memory access traces. A trace is a text file with one
// access per line, in the form `<task>:<hex address>:<size>`, for example
// `T1: 0x4000:16KB`.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned for lines that are not valid accesses.
var ErrMalformedLine = errors.New("malformed trace line")

// An Access is a single line of a trace.
type Access struct {
	Task    string
	Address uint64
	Size    uint64
}

// A TaskTrace is the sequence of page addresses touched by a task.
type TaskTrace struct {
	ID        string
	Addresses []uint64
}

// A Trace holds the accesses of all the tasks, in the order the tasks first
// appear in the trace file.
type Trace struct {
	Tasks []*TaskTrace

	byID map[string]*TaskTrace
}

func newTrace() *Trace {
	return &Trace{byID: make(map[string]*TaskTrace)}
}

// Task returns the trace of a task.
func (t *Trace) Task(id string) (*TaskTrace, bool) {
	task, ok := t.byID[id]
	return task, ok
}

// NumAccesses returns the number of page accesses of all tasks.
func (t *Trace) NumAccesses() int {
	n := 0
	for _, task := range t.Tasks {
		n += len(task.Addresses)
	}

	return n
}

// MaxPagesPerAccess is the largest number of pages that a single trace line
// may touch.
const MaxPagesPerAccess = 1 << 20

func (t *Trace) add(a Access, pageSize uint64) error {
	numPages, err := pageCount(a, pageSize)
	if err != nil {
		return err
	}

	task, ok := t.byID[a.Task]
	if !ok {
		task = &TaskTrace{ID: a.Task}
		t.byID[a.Task] = task
		t.Tasks = append(t.Tasks, task)
	}

	for i := uint64(0); i < numPages; i++ {
		task.Addresses = append(task.Addresses, a.Address+i*pageSize)
	}

	return nil
}

// pageCount returns the number of pages touched by the access. The last page
// must start inside the 64-bit address space.
func pageCount(a Access, pageSize uint64) (uint64, error) {
	numPages := a.Size / pageSize
	if a.Size%pageSize != 0 {
		numPages++
	}

	if numPages > MaxPagesPerAccess {
		return 0, fmt.Errorf("%w: %d pages in one access, the limit is %d",
			ErrMalformedLine, numPages, MaxPagesPerAccess)
	}

	if numPages > 0 && numPages-1 > (math.MaxUint64-a.Address)/pageSize {
		return 0, fmt.Errorf("%w: %d bytes at %#x overflow the address space",
			ErrMalformedLine, a.Size, a.Address)
	}

	return numPages, nil
}

// ParseLine parses a single trace line.
func ParseLine(line string) (Access, error) {
	fields := strings.SplitN(line, ":", 3)
	if len(fields) != 3 {
		return Access{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
		if fields[i] == "" {
			return Access{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
	}

	addrStr := strings.TrimPrefix(strings.ToLower(fields[1]), "0x")

	addr, err := strconv.ParseUint(addrStr, 16, 64)
	if err != nil {
		return Access{}, fmt.Errorf("%w: bad address %q: %w",
			ErrMalformedLine, fields[1], err)
	}

	size, err := ParseSize(fields[2])
	if err != nil {
		return Access{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}

	return Access{Task: fields[0], Address: addr, Size: size}, nil
}

// A Reader turns trace files into per-task page address sequences.
type Reader struct {
	pageSize uint64

	// Lenient makes the reader skip malformed lines instead of failing.
	// Skipped lines are reported to Warn.
	Lenient bool
	Warn    io.Writer
}

// NewReader creates a reader that splits accesses into pages of pageSize
// bytes.
func NewReader(pageSize uint64) *Reader {
	if pageSize == 0 {
		panic("page size must be positive")
	}

	return &Reader{
		pageSize: pageSize,
		Warn:     os.Stderr,
	}
}

// ReadFile reads the trace stored in a file.
func (r *Reader) ReadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	return r.Read(f)
}

// Read reads a trace. Empty lines and lines starting with '#' are ignored.
func (r *Reader) Read(in io.Reader) (*Trace, error) {
	t := newTrace()
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		access, err := ParseLine(line)
		if err == nil {
			err = t.add(access, r.pageSize)
		}

		if err != nil {
			if !r.Lenient {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

			fmt.Fprintf(r.Warn, "Skipping trace line %d: %v\n", lineNo, err)

			continue
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	return t, nil
}
