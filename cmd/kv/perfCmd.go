package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/kvbatch/cmd/util"
	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Measures batch latency of a kvbatch server",
		Long:    "Runs pipelines and transactions of different sizes against the server and reports the latency per batch.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix   = "__test"
	perfNumThreads  = 10
	perfKeySpread   = 100
	perfIterations  = 1000
	perfBatchSizes  = []int{1, 10, 100}
	perfSkip        = make([]string, 0)
	perfPercentiles = []float64{0.5, 0.95, 0.99}
)

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. pipeline,transaction,read)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent clients"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "iterations"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Batches per benchmark"))
	key = "batch-sizes"
	perfTestCmd.Flags().String(key, "1,10,100", util.WrapString("Comma separated list of batch sizes"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfIterations = max(viper.GetInt("iterations"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	perfBatchSizes = perfBatchSizes[:0]
	for _, s := range strings.Split(viper.GetString("batch-sizes"), ",") {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 {
			return fmt.Errorf("invalid batch size %q", s)
		}
		perfBatchSizes = append(perfBatchSizes, n)
	}
	return nil
}

// benchmark builds the batch for one iteration of a test
type benchmark struct {
	name  string
	build func(size, iteration int) *batch.Batch
}

var benchmarks = []benchmark{
	{"pipeline", func(size, it int) *batch.Batch {
		b := batch.NewBatch(false)
		for i := 0; i < size; i++ {
			b.Set(perfKey("pipeline", it+i), "test")
		}
		return b
	}},
	{"transaction", func(size, it int) *batch.Batch {
		b := batch.NewBatch(true)
		for i := 0; i < size; i++ {
			b.Incr(perfKey("transaction", it+i))
		}
		return b
	}},
	{"read", func(size, it int) *batch.Batch {
		b := batch.NewBatch(false)
		for i := 0; i < size; i++ {
			b.Get(perfKey("pipeline", it+i))
		}
		return b
	}},
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for kvbatch servers")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d, Iterations: %d, Batch sizes: %v\n\n", perfNumThreads, perfIterations, perfBatchSizes)

	registry := gometrics.NewRegistry()
	var names []string

	for _, bm := range benchmarks {
		if slices.Contains(perfSkip, bm.name) {
			continue
		}
		for _, size := range perfBatchSizes {
			name := fmt.Sprintf("%s-%d", bm.name, size)
			timer := gometrics.GetOrRegisterTimer(name, registry)
			failures := gometrics.GetOrRegisterCounter(name+"-failures", registry)

			runBenchmark(bm, size, timer, failures)
			printResult(name, timer, failures)
			names = append(names, name)
		}
	}

	cleanup()

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, names, registry, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %w", err)
		}
		fmt.Println("Export complete")
	}
	return nil
}

// runBenchmark executes perfIterations batches spread over perfNumThreads goroutines
func runBenchmark(bm benchmark, size int, timer gometrics.Timer, failures gometrics.Counter) {
	timeout := time.Duration(viper.GetInt("timeout")) * time.Second

	var wg sync.WaitGroup
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			for it := thread; it < perfIterations; it += perfNumThreads {
				b := bm.build(size, it*size)

				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				start := time.Now()
				_, err := rpcClient.Exec(ctx, b, true)
				timer.UpdateSince(start)
				cancel()

				if err != nil {
					failures.Inc(1)
				}
			}
		}(t)
	}
	wg.Wait()
}

// cleanup deletes all keys written by the benchmarks
func cleanup() {
	b := batch.NewBatch(false)
	for i := 0; i < perfKeySpread; i++ {
		b.Del(perfKey("pipeline", i), perfKey("transaction", i))
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(viper.GetInt("timeout"))*time.Second)
	defer cancel()
	if _, err := rpcClient.Exec(ctx, b, true); err != nil {
		fmt.Printf("cleanup failed: %v\n", err)
	}
}

func perfKey(test string, i int) string {
	return fmt.Sprintf("%s-%s-%d", perfKeyPrefix, test, i%perfKeySpread)
}

// printResult prints the latency distribution of a benchmark
func printResult(name string, timer gometrics.Timer, failures gometrics.Counter) {
	snap := timer.Snapshot()
	if snap.Count() == 0 {
		fmt.Printf("%-20sskipped\n", name)
		return
	}
	ps := snap.Percentiles(perfPercentiles)
	fmt.Printf("%-20smean %-12s p50 %-12s p95 %-12s p99 %-12s %8.0f batches/sec  failures %d\n",
		name,
		time.Duration(snap.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		snap.RateMean(),
		failures.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, names []string, registry gometrics.Registry, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "Count", "Failures", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "BatchesPerSec",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"ShardID", "Serializer", "Transport", "Threads", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, name := range names {
		timer := gometrics.GetOrRegisterTimer(name, registry).Snapshot()
		failures := gometrics.GetOrRegisterCounter(name+"-failures", registry).Count()
		ps := timer.Percentiles(perfPercentiles)

		row := []string{
			name,
			strconv.FormatInt(timer.Count(), 10),
			strconv.FormatInt(failures, 10),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			fmt.Sprintf("%.0f", timer.RateMean()),
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", name, err)
		}
	}
	return nil
}
