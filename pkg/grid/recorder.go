package grid

import "fmt"

// OpKind identifies a recorded sink call.
type OpKind string

const (
	OpWrite   OpKind = "write"
	OpString  OpKind = "write_string"
	OpComment OpKind = "write_comment"
	OpMerge   OpKind = "merge_range"
)

// Op is one recorded sink call. ColEnd is only set for merges.
type Op struct {
	Kind   OpKind
	Row    int
	Col    int
	ColEnd int
	Value  any
	Style  Style
}

func (o Op) String() string {
	if o.Kind == OpMerge {
		return fmt.Sprintf("%s r%d c%d..%d %v [%s]", o.Kind, o.Row, o.Col, o.ColEnd, o.Value, o.Style)
	}
	return fmt.Sprintf("%s r%d c%d %v [%s]", o.Kind, o.Row, o.Col, o.Value, o.Style)
}

type cellKey struct{ row, col int }

// Cell is the last value and style written to one position.
type Cell struct {
	Value   any
	Style   Style
	Comment string
}

// Recorder is an in-memory Sink. It keeps the ordered call log and the
// resulting cell contents, with later writes replacing earlier ones.
type Recorder struct {
	Ops   []Op
	cells map[cellKey]Cell
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{cells: make(map[cellKey]Cell)}
}

func (r *Recorder) set(row, col int, value any, style Style) {
	if r.cells == nil {
		r.cells = make(map[cellKey]Cell)
	}
	c := r.cells[cellKey{row, col}]
	c.Value, c.Style = value, style
	r.cells[cellKey{row, col}] = c
}

func (r *Recorder) Write(row, col int, value any, style Style) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("invalid cell r%d c%d", row, col)
	}
	r.Ops = append(r.Ops, Op{Kind: OpWrite, Row: row, Col: col, Value: value, Style: style})
	r.set(row, col, value, style)
	return nil
}

func (r *Recorder) WriteString(row, col int, s string, style Style) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("invalid cell r%d c%d", row, col)
	}
	r.Ops = append(r.Ops, Op{Kind: OpString, Row: row, Col: col, Value: s, Style: style})
	r.set(row, col, s, style)
	return nil
}

func (r *Recorder) WriteComment(row, col int, text string) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("invalid cell r%d c%d", row, col)
	}
	r.Ops = append(r.Ops, Op{Kind: OpComment, Row: row, Col: col, Value: text})
	if r.cells == nil {
		r.cells = make(map[cellKey]Cell)
	}
	c := r.cells[cellKey{row, col}]
	c.Comment = text
	r.cells[cellKey{row, col}] = c
	return nil
}

func (r *Recorder) MergeRange(row, colStart, colEnd int, label string, style Style) error {
	if colEnd <= colStart {
		return fmt.Errorf("merge range r%d c%d..%d must span at least two cells", row, colStart, colEnd)
	}
	r.Ops = append(r.Ops, Op{Kind: OpMerge, Row: row, Col: colStart, ColEnd: colEnd, Value: label, Style: style})
	for col := colStart; col <= colEnd; col++ {
		r.set(row, col, nil, style)
	}
	r.set(row, colStart, label, style)
	return nil
}

// Cell returns the current content at row, col.
func (r *Recorder) Cell(row, col int) (Cell, bool) {
	c, ok := r.cells[cellKey{row, col}]
	return c, ok
}

// Filter returns the recorded ops of one kind on one row. A negative row matches all rows.
func (r *Recorder) Filter(kind OpKind, row int) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind && (row < 0 || op.Row == row) {
			out = append(out, op)
		}
	}
	return out
}
