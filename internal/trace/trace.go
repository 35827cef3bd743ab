// Package trace parses and replays scripted cache workloads.
//
// A script has one operation per line:
//
//	put <key> <value>
//	get <key>
//	peek <key>
//	remove <key>
//	len
//	keys
//	purge
//
// Blank lines and lines starting with '#' are ignored. Keys and values
// are single whitespace-free tokens.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/cache"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace: syntax error")

// Miss is printed for lookups of absent keys.
const Miss = "<miss>"

// Kind names an operation.
type Kind string

const (
	Put    Kind = "put"
	Get    Kind = "get"
	Peek   Kind = "peek"
	Remove Kind = "remove"
	Len    Kind = "len"
	Keys   Kind = "keys"
	Purge  Kind = "purge"
)

// arity is the number of operands each Kind takes.
var arity = map[Kind]int{
	Put: 2, Get: 1, Peek: 1, Remove: 1,
	Len: 0, Keys: 0, Purge: 0,
}

// Op is one parsed script line.
type Op struct {
	Line  int
	Kind  Kind
	Key   string
	Value string
}

// String renders the op back in script form.
func (o Op) String() string {
	switch arity[o.Kind] {
	case 2:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Key, o.Value)
	case 1:
		return fmt.Sprintf("%s %s", o.Kind, o.Key)
	default:
		return string(o.Kind)
	}
}

// Parse reads a whole script. Errors carry the 1-based line number.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		op, err := parseLine(line, text)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read line %d: %w", line+1, err)
	}
	return ops, nil
}

func parseLine(line int, text string) (Op, error) {
	f := strings.Fields(text)
	kind := Kind(strings.ToLower(f[0]))
	want, ok := arity[kind]
	if !ok {
		return Op{}, fmt.Errorf("%w: line %d: unknown operation %q", ErrSyntax, line, f[0])
	}
	if got := len(f) - 1; got != want {
		return Op{}, fmt.Errorf("%w: line %d: %s takes %d operand(s), got %d", ErrSyntax, line, kind, want, got)
	}
	op := Op{Line: line, Kind: kind}
	if want >= 1 {
		op.Key = f[1]
	}
	if want == 2 {
		op.Value = f[2]
	}
	return op, nil
}

// Run applies ops to c in order and writes one "<op> -> <result>" line per
// operation to w. It stops at the first write error.
func Run(c cache.Cache[string, string], ops []Op, w io.Writer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		if _, err := fmt.Fprintf(bw, "%s -> %s\n", op, apply(c, op)); err != nil {
			return fmt.Errorf("trace: write result of line %d: %w", op.Line, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("trace: flush: %w", err)
	}

	s := c.Stats()
	log.Debug("replay finished",
		zap.Int("ops", len(ops)),
		zap.Int("len", s.Len),
		zap.Uint64("hits", s.Hits),
		zap.Uint64("misses", s.Misses),
		zap.Uint64("evictions", s.Evictions),
	)
	return nil
}

func apply(c cache.Cache[string, string], op Op) string {
	switch op.Kind {
	case Put:
		c.Put(op.Key, op.Value)
		return "ok"
	case Get:
		return lookup(c.Get(op.Key))
	case Peek:
		return lookup(c.Peek(op.Key))
	case Remove:
		return lookup(c.Remove(op.Key))
	case Len:
		return strconv.Itoa(c.Len())
	case Keys:
		return "[" + strings.Join(c.Keys(), " ") + "]"
	case Purge:
		c.Purge()
		return "ok"
	default:
		// Parse only produces known kinds.
		panic("trace: unknown op kind " + string(op.Kind))
	}
}

func lookup(v string, ok bool) string {
	if !ok {
		return Miss
	}
	return v
}
