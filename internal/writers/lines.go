package writers

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"predsim/internal/replicate"
)

// LineLog appends one line per record to a file it owns.
type LineLog struct {
	f    *os.File
	bw   *bufio.Writer
	line func(replicate.Record) string
}

// OpenCommandLog creates (truncating) path and logs each record's Seq-Gen command.
func OpenCommandLog(path string) (*LineLog, error) {
	return openLineLog(path, func(r replicate.Record) string { return r.Command })
}

// OpenTreeLog creates (truncating) path and logs each record's source tree.
func OpenTreeLog(path string) (*LineLog, error) {
	return openLineLog(path, func(r replicate.Record) string { return r.Tree })
}

func openLineLog(path string, line func(replicate.Record) string) (*LineLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &LineLog{f: f, bw: bufio.NewWriter(f), line: line}, nil
}

func (l *LineLog) Write(rec replicate.Record) error {
	s := strings.ReplaceAll(l.line(rec), "\n", " ")
	if _, err := l.bw.WriteString(s + "\n"); err != nil {
		return fmt.Errorf("%s: %w", l.f.Name(), err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (l *LineLog) Close() error {
	ferr := l.bw.Flush()
	cerr := l.f.Close()
	if ferr != nil {
		return fmt.Errorf("%s: %w", l.f.Name(), ferr)
	}
	return cerr
}
