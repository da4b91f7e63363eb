package helpers

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// IsAffirmative reports whether a reply means yes.
func IsAffirmative(response string) bool {
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// ReadLine reads one line from reader, giving up when ctx is done. The
// read itself cannot be interrupted; its goroutine ends with the process.
func ReadLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err == io.EOF && res.line != "" {
			return res.line, nil
		}
		return res.line, res.err
	}
}
