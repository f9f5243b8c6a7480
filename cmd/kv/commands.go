package kv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	execCmd = &cobra.Command{
		Use:   "exec [command]...",
		Short: "Executes commands as one batch",
		Long: `Executes all given commands as one batch, one result is printed per command.
Every command is a single argument, e.g.

  kvb batch exec --atomic "SET a 1" "INCR a" "GET a"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			atomic, _ := cmd.Flags().GetBool("atomic")
			raise, _ := cmd.Flags().GetBool("raise")

			b := batch.NewBatch(atomic)
			for _, line := range args {
				c, err := batch.ParseCommand(strings.Fields(line))
				if err != nil {
					return fmt.Errorf("invalid command %q: %w", line, err)
				}
				b.AppendCommand(c)
			}
			return execAndPrint(b, raise)
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := batch.NewSetOptions()
			if ttl, _ := cmd.Flags().GetDuration("ttl"); ttl > 0 {
				opts.SetExpiry(batch.NewExpiryIn(ttl))
			}
			if nx, _ := cmd.Flags().GetBool("nx"); nx {
				opts.SetOnlyIfDoesNotExist()
			}
			return execAndPrint(batch.NewBatch(false).SetWithOptions(args[0], args[1], opts), true)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execAndPrint(batch.NewBatch(false).Get(args[0]), true)
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]...",
		Short: "Deletes keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execAndPrint(batch.NewBatch(false).Del(toAny(args)...), true)
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]...",
		Short: "Counts how many of the keys exist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execAndPrint(batch.NewBatch(false).Exists(toAny(args)...), true)
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key]",
		Short: "Increments the integer value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execAndPrint(batch.NewBatch(false).Incr(args[0]), true)
		},
	}
)

func init() {
	execCmd.Flags().Bool("atomic", false, "Execute the batch as a transaction")
	execCmd.Flags().Bool("raise", false, "Fail on the first failing command of a pipeline")
	setCmd.Flags().Duration("ttl", 0, "Expire the key after this duration (e.g. 30s)")
	setCmd.Flags().Bool("nx", false, "Only set the key if it does not exist")
}

// execAndPrint executes b and prints one line per result
func execAndPrint(b *batch.Batch, raiseOnError bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(viper.GetInt("timeout"))*time.Second)
	defer cancel()

	results, err := rpcClient.Exec(ctx, b, raiseOnError)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("%d) %s\n", i+1, r)
	}
	return nil
}

func toAny(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
