package input

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Reader reads answers to interactive prompts
type Reader interface {
	ReadString(delim byte) (string, error)
}

// LineReader reads prompt answers line by line from an io.Reader
type LineReader struct {
	reader *bufio.Reader
}

// NewLineReader creates a LineReader over r
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// NewStdinReader creates a LineReader over os.Stdin
func NewStdinReader() *LineReader {
	return NewLineReader(os.Stdin)
}

// ReadString reads until delimiter
func (r *LineReader) ReadString(delim byte) (string, error) {
	return r.reader.ReadString(delim)
}

// StringReader replays canned answers, one per ReadString call. Each answer
// should already end with the delimiter.
type StringReader struct {
	inputs []string
	index  int
}

// NewStringReader creates a reader from answers
func NewStringReader(inputs ...string) *StringReader {
	return &StringReader{inputs: inputs}
}

// ReadString returns the next answer, or io.EOF once all are consumed.
// delim is ignored.
func (r *StringReader) ReadString(delim byte) (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	result := r.inputs[r.index]
	r.index++
	return result, nil
}

// ReadAnswer reads one line from r, trimmed and lowercased. A read error
// yields whatever was read before it, usually "".
func ReadAnswer(r Reader) string {
	answer, _ := r.ReadString('\n')
	return strings.ToLower(strings.TrimSpace(answer))
}

// IsYes reports whether answer accepts a yes/no prompt
func IsYes(answer string) bool {
	return answer == "y" || answer == "yes"
}
