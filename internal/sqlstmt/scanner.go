package sqlstmt

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrNoStatements is reported when a statement source yields nothing usable.
var ErrNoStatements = errors.New("no SQL statements found")

// Scanner streams statements out of a SQL source one at a time, without
// materializing the whole file. Statements are separated by semicolons;
// semicolons inside quoted literals, quoted identifiers, and comments do not
// terminate a statement. Fragments that are empty or contain only comments
// are skipped.
//
// Usage follows bufio.Scanner: Scan, Statement, then Err once Scan returns
// false.
type Scanner struct {
	r     *bufio.Reader
	stmt  Statement
	index int
	err   error
	done  bool
}

// NewScanner returns a Scanner reading statements from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Scan advances to the next statement. It returns false at end of input or
// on the first read error.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}
	for {
		raw, err := s.readFragment()
		if err != nil {
			if err != io.EOF {
				s.err = err
				return false
			}
			s.done = true
		}
		text := strings.TrimSpace(raw)
		if text != "" && strings.TrimSpace(StripComments(text)) != "" {
			s.stmt = Statement{Text: text, Index: s.index, Kind: ClassifyKind(text)}
			s.index++
			return true
		}
		if s.done {
			return false
		}
	}
}

// Statement returns the statement produced by the last successful Scan.
func (s *Scanner) Statement() Statement {
	return s.stmt
}

// Err returns the first error encountered, excluding io.EOF.
func (s *Scanner) Err() error {
	return s.err
}

// readFragment consumes input up to the next top-level semicolon (excluded)
// or EOF, returning the raw text verbatim.
func (s *Scanner) readFragment() (string, error) {
	var b strings.Builder
	var quote byte
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return b.String(), err
		}
		if quote != 0 {
			b.WriteByte(c)
			if (quote == '[' && c == ']') || (quote != '[' && c == quote) {
				quote = 0
			}
			continue
		}
		switch c {
		case ';':
			return b.String(), nil
		case '\'', '"', '`', '[':
			quote = c
			b.WriteByte(c)
		case '-':
			b.WriteByte(c)
			if s.peekByte() == '-' {
				if err := s.copyLineComment(&b); err != nil {
					return b.String(), err
				}
			}
		case '/':
			b.WriteByte(c)
			if s.peekByte() == '*' {
				if err := s.copyBlockComment(&b); err != nil {
					return b.String(), err
				}
			}
		default:
			b.WriteByte(c)
		}
	}
}

func (s *Scanner) peekByte() byte {
	next, err := s.r.Peek(1)
	if err != nil || len(next) == 0 {
		return 0
	}
	return next[0]
}

// copyLineComment copies through the end of the current line.
func (s *Scanner) copyLineComment(b *strings.Builder) error {
	line, err := s.r.ReadString('\n')
	b.WriteString(line)
	return err
}

// copyBlockComment copies through the closing "*/". The opening "*" was
// peeked by the caller and is consumed here so it cannot double as the
// first half of the closer.
func (s *Scanner) copyBlockComment(b *strings.Builder) error {
	opener, err := s.r.ReadByte()
	if err != nil {
		return err
	}
	b.WriteByte(opener)
	var prev byte
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		b.WriteByte(c)
		if prev == '*' && c == '/' {
			return nil
		}
		prev = c
	}
}

// Load reads every statement in the file at path. It returns a
// *MalformedInputError when the file cannot be opened, cannot be read, or
// contains no statements.
func Load(path string) ([]Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	defer f.Close()

	scan := NewScanner(f)
	var stmts []Statement
	for scan.Scan() {
		stmts = append(stmts, scan.Statement())
	}
	if err := scan.Err(); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	if len(stmts) == 0 {
		return nil, &MalformedInputError{Path: path, Err: ErrNoStatements}
	}
	return stmts, nil
}
