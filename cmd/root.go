package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/kvbatch/cmd/kv"
	"github.com/ValentinKolb/kvbatch/cmd/lock"
	"github.com/ValentinKolb/kvbatch/cmd/serve"
	"github.com/ValentinKolb/kvbatch/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvb",
		Short: "key-value store with command batches",
		Long: fmt.Sprintf(`kvbatch (v%s)

A key-value store that executes ordered command batches, either as
atomic transactions or as pipelines. Shards run locally or replicated
with RAFT.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvbatch",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvbatch v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.BatchCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)

	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
