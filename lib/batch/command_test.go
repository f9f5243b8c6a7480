package batch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommandArity(t *testing.T) {
	tests := []struct {
		name    string
		tag     RequestType
		args    []string
		wantErr bool
	}{
		{name: "select ok", tag: RequestSelect, args: []string{"1"}},
		{name: "select missing index", tag: RequestSelect, wantErr: true},
		{name: "select too many", tag: RequestSelect, args: []string{"1", "2"}, wantErr: true},
		{name: "copy minimal", tag: RequestCopy, args: []string{"a", "b"}},
		{name: "copy full", tag: RequestCopy, args: []string{"a", "b", "DB", "2", "REPLACE"}},
		{name: "copy too many", tag: RequestCopy, args: []string{"a", "b", "DB", "2", "REPLACE", "x"}, wantErr: true},
		{name: "del unbounded", tag: RequestDel, args: []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
		{name: "ping no args", tag: RequestPing},
		{name: "unknown tag", tag: RequestUnknown, wantErr: true},
		{name: "out of range tag", tag: RequestType(999), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]Arg, len(tt.args))
			for i, s := range tt.args {
				args[i] = Text(s)
			}
			cmd, err := NewCommand(tt.tag, args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsCode(err, ErrCMalformedArgumentList))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tag, cmd.Type())
			assert.Equal(t, tt.args, nilToEmpty(cmd.Strings()))
		})
	}
}

func TestCommandIsImmutable(t *testing.T) {
	args := []Arg{Text("a"), Text("1")}
	cmd, err := NewCommand(RequestSet, args)
	require.NoError(t, err)

	args[0] = Text("changed")
	assert.Equal(t, "a", cmd.Arg(0).String())

	out := cmd.Args()
	out[1] = Text("changed")
	assert.Equal(t, "1", cmd.Arg(1).String())
}

func TestCommandString(t *testing.T) {
	cmd := MustCommand(RequestCopy, Text("k1"), Text("k2"), Text("DB"), Text("2"))
	assert.Equal(t, "COPY k1 k2 DB 2", cmd.String())
}

func TestParseRequestType(t *testing.T) {
	for tag := RequestUnknown + 1; tag < requestTypeCount; tag++ {
		parsed, err := ParseRequestType(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
	}

	parsed, err := ParseRequestType("lrange")
	require.NoError(t, err)
	assert.Equal(t, RequestLRange, parsed)

	_, err = ParseRequestType("HSET")
	assert.Error(t, err)
}

func TestRequestTypeJSON(t *testing.T) {
	data, err := json.Marshal(RequestScan)
	require.NoError(t, err)
	assert.Equal(t, `"SCAN"`, string(data))

	var tag RequestType
	require.NoError(t, json.Unmarshal(data, &tag))
	assert.Equal(t, RequestScan, tag)
}

func TestReadOnlyRequestTypes(t *testing.T) {
	assert.True(t, RequestGet.IsReadOnly())
	assert.True(t, RequestScan.IsReadOnly())
	assert.False(t, RequestSet.IsReadOnly())
	assert.False(t, RequestCopy.IsReadOnly())
	assert.False(t, RequestUnknown.IsReadOnly())
}

func nilToEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand([]string{"copy", "k1", "k2", "DB", "2"})
	require.NoError(t, err)
	assert.Equal(t, RequestCopy, cmd.Type())
	assert.Equal(t, "COPY k1 k2 DB 2", cmd.String())

	_, err = ParseCommand(nil)
	assert.True(t, IsCode(err, ErrCMalformedArgumentList))

	_, err = ParseCommand([]string{"HSET", "k", "f", "v"})
	assert.True(t, IsCode(err, ErrCMalformedArgumentList))

	_, err = ParseCommand([]string{"GET"})
	assert.True(t, IsCode(err, ErrCMalformedArgumentList))
}
