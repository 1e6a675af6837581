package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// bufioLineReader reads lines from any reader, for piped stdin and tests.
type bufioLineReader struct {
	r *bufio.Reader
}

func newBufioLineReader(r io.Reader) *bufioLineReader {
	return &bufioLineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its trailing newline. A final
// unterminated line is returned once, then io.EOF.
func (b *bufioLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}

		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// linerReader reads lines through a liner terminal with history and
// editing. Ctrl-C aborts the prompt, which the session sees as end of
// input: the run winds down and accumulated results are persisted.
type linerReader struct {
	state *liner.State
}

func newLinerReader() *linerReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)

	return &linerReader{state: st}
}

func (l *linerReader) ReadLine() (string, error) {
	line, err := l.state.Prompt("")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}

		return "", err
	}

	l.state.AppendHistory(line)

	return line, nil
}

func (l *linerReader) Close() error {
	return l.state.Close()
}

// newLineReader picks the interactive liner reader when stdin is the
// process terminal, and a plain buffered reader otherwise. The returned
// closer is nil when there is nothing to release.
func newLineReader(stdin io.Reader) (reader interface{ ReadLine() (string, error) }, closer io.Closer) {
	f, ok := stdin.(*os.File)
	if ok && f == os.Stdin && liner.TerminalSupported() {
		lr := newLinerReader()
		return lr, lr
	}

	return newBufioLineReader(stdin), nil
}
