package server

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

var (
	commandsTotal = metrics.NewCounter(`kvb_commands_total`)
	abortsTotal   = metrics.NewCounter(`kvb_batch_aborts_total`)
	errorsTotal   = metrics.NewCounter(`kvb_batch_errors_total`)
	shardMisses   = metrics.NewCounter(`kvb_unknown_shard_total`)
)

// observeBatch records one executed batch
func observeBatch(msgType common.MessageType, numCommands int, start time.Time, err error) {
	mode := msgType.String()
	metrics.GetOrCreateCounter(fmt.Sprintf(`kvb_batches_total{mode=%q}`, mode)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`kvb_batch_duration_seconds{mode=%q}`, mode)).UpdateDuration(start)
	commandsTotal.Add(numCommands)

	switch {
	case err == nil:
	case batch.IsCode(err, batch.ErrCExecAborted):
		abortsTotal.Inc()
	default:
		errorsTotal.Inc()
	}
}
