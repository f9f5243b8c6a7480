package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToArg(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantKind ArgKind
		wantStr  string
		wantErr  bool
	}{
		{name: "string", value: "key", wantKind: ArgText, wantStr: "key"},
		{name: "empty string", value: "", wantKind: ArgText, wantStr: ""},
		{name: "bytes", value: []byte{0x00, 0xff}, wantKind: ArgBytes, wantStr: "\x00\xff"},
		{name: "nil bytes", value: []byte(nil), wantKind: ArgBytes, wantStr: ""},
		{name: "arg", value: Bytes([]byte("raw")), wantKind: ArgBytes, wantStr: "raw"},
		{name: "int", value: 42, wantErr: true},
		{name: "float", value: 1.5, wantErr: true},
		{name: "nil", value: nil, wantErr: true},
		{name: "struct", value: struct{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ToArg(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsCode(err, ErrCInvalidArgumentType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, a.Kind())
			assert.Equal(t, tt.wantStr, a.String())
		})
	}
}

func TestToArgErrorNamesType(t *testing.T) {
	_, err := ToArg(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float64")

	// numbers are not stringified implicitly
	_, err = ToArg(1)
	assert.True(t, IsCode(err, ErrCInvalidArgumentType))
	assert.Contains(t, err.Error(), "int")
}

func TestBytesArgIsCopied(t *testing.T) {
	raw := []byte("abc")
	a := Bytes(raw)
	raw[0] = 'x'
	assert.Equal(t, "abc", a.String())

	out := a.Bytes()
	out[0] = 'y'
	assert.Equal(t, "abc", a.String())
}

func TestArgsBuilder(t *testing.T) {
	t.Run("order and conditional tokens", func(t *testing.T) {
		args, err := NewArgsBuilder().
			Add("k1").
			Add("k2").
			Add(DBKeyword).
			Add(int64(2)).
			AddIf(ReplaceKeyword, false).
			Args()
		require.NoError(t, err)
		require.Len(t, args, 4)
		assert.Equal(t, []string{"k1", "k2", "DB", "2"}, argStrings(args))
	})

	t.Run("primitives become text", func(t *testing.T) {
		args, err := NewArgsBuilder().AddAll(7, int64(-3), uint64(9), 2.5, true, false).Args()
		require.NoError(t, err)
		assert.Equal(t, []string{"7", "-3", "9", "2.5", "1", "0"}, argStrings(args))
		for _, a := range args {
			assert.Equal(t, ArgText, a.Kind())
		}
	})

	t.Run("first error is sticky", func(t *testing.T) {
		b := NewArgsBuilder().Add("a").Add(struct{}{}).Add("c")
		_, err := b.Args()
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrCInvalidArgumentType))
		assert.Equal(t, 1, b.Len())
	})
}

func argStrings(args []Arg) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}
