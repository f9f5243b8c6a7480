package engine

import (
	"strconv"
	"strings"

	"github.com/ValentinKolb/kvbatch/lib/batch"
)

// --------------------------------------------------------------------------
// Argument Parsing
// --------------------------------------------------------------------------

func parseInt(arg batch.Arg) (int64, error) {
	n, err := strconv.ParseInt(arg.String(), 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	return n, nil
}

// parseDBIndex parses a database index and checks that it exists
func (x *execution) parseDBIndex(arg batch.Arg) (uint64, error) {
	n, err := parseInt(arg)
	if err != nil {
		return 0, err
	}
	if n < 0 || uint64(n) >= x.db.NumDatabases() {
		return 0, failf("DB index is out of range")
	}
	return uint64(n), nil
}

// keyword reports whether arg is the (case-insensitive) keyword kw
func keyword(arg batch.Arg, kw string) bool {
	return strings.EqualFold(arg.String(), kw)
}

// --------------------------------------------------------------------------
// Connection and Server Commands
// --------------------------------------------------------------------------

func cmdPing(_ *execution, args []batch.Arg) (batch.Reply, error) {
	if len(args) == 1 {
		return batch.StringReply(args[0].String()), nil
	}
	return batch.StringReply("PONG"), nil
}

func cmdEcho(_ *execution, args []batch.Arg) (batch.Reply, error) {
	return batch.StringReply(args[0].String()), nil
}

func cmdSelect(x *execution, args []batch.Arg) (batch.Reply, error) {
	idx, err := x.parseDBIndex(args[0])
	if err != nil {
		return batch.Reply{}, err
	}
	x.cur = idx
	return batch.OKReply(), nil
}

func cmdDBSize(x *execution, _ []batch.Arg) (batch.Reply, error) {
	keys, err := x.liveKeys()
	if err != nil {
		return batch.Reply{}, err
	}
	return batch.IntReply(int64(len(keys))), nil
}

func cmdFlushDB(x *execution, _ []batch.Arg) (batch.Reply, error) {
	if err := x.flush(); err != nil {
		return batch.Reply{}, err
	}
	return batch.OKReply(), nil
}
