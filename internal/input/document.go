package input

import (
	"fmt"
	"io"
	"os"
)

// StdinPath names standard input in place of a file path
const StdinPath = "-"

// maxDocumentSize bounds site documents read from files or stdin
const maxDocumentSize = 1 << 20

// ReadDocument reads a whole document from path, or from stdin when path
// is "-".
func ReadDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		return readLimited(stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return readLimited(f, path)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxDocumentSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}
	return data, nil
}
