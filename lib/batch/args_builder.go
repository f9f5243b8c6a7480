package batch

// ArgsBuilder assembles the ordered argument list of one command.
//
// Store values (string, []byte, Arg) are added as is, primitive parameters
// (int, int64, uint64, float64, bool) are formatted as text. The first value of
// any other type makes the builder fail, later calls are ignored.
//
// Usage:
//
//	args, err := NewArgsBuilder().
//		Add(source).
//		Add(destination).
//		Add(DBKeyword).
//		Add(destinationDB).
//		AddIf(ReplaceKeyword, replace).
//		Args()
type ArgsBuilder struct {
	args []Arg
	err  error
}

// NewArgsBuilder creates an empty builder.
func NewArgsBuilder() *ArgsBuilder {
	return &ArgsBuilder{args: make([]Arg, 0, 4)}
}

// Add appends a single value.
func (b *ArgsBuilder) Add(v any) *ArgsBuilder {
	if b.err != nil {
		return b
	}
	if a, ok := primitiveToArg(v); ok {
		b.args = append(b.args, a)
		return b
	}
	a, err := ToArg(v)
	if err != nil {
		b.err = err
		return b
	}
	b.args = append(b.args, a)
	return b
}

// AddIf appends v only if cond is true. Nothing is appended otherwise.
func (b *ArgsBuilder) AddIf(v any, cond bool) *ArgsBuilder {
	if cond {
		return b.Add(v)
	}
	return b
}

// AddAll appends every value in order.
func (b *ArgsBuilder) AddAll(vs ...any) *ArgsBuilder {
	for _, v := range vs {
		b.Add(v)
	}
	return b
}

// AddStrings appends a list of text tokens (e.g. the output of an options ToArgs()).
func (b *ArgsBuilder) AddStrings(vs []string) *ArgsBuilder {
	if b.err != nil {
		return b
	}
	for _, v := range vs {
		b.args = append(b.args, Text(v))
	}
	return b
}

// Fail makes the builder fail with err unless it already failed.
func (b *ArgsBuilder) Fail(err error) *ArgsBuilder {
	if b.err == nil && err != nil {
		b.err = err
	}
	return b
}

// Len returns the number of arguments added so far.
func (b *ArgsBuilder) Len() int {
	return len(b.args)
}

// Args returns the built list or the first error.
func (b *ArgsBuilder) Args() ([]Arg, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.args, nil
}
