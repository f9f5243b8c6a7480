package kv

import (
	"github.com/ValentinKolb/kvbatch/cmd/util"
	"github.com/ValentinKolb/kvbatch/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.RPCClient

	// BatchCommands represents the batch command group
	BatchCommands = &cobra.Command{
		Use:                "batch",
		Aliases:            []string{"kv"},
		Short:              "Run command batches against a kvbatch server",
		PersistentPreRunE:  setupBatchClient,
		PersistentPostRunE: closeBatchClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the batch command
	util.SetupRPCClientFlags(BatchCommands)

	BatchCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	BatchCommands.AddCommand(execCmd)
	BatchCommands.AddCommand(setCmd)
	BatchCommands.AddCommand(getCmd)
	BatchCommands.AddCommand(delCmd)
	BatchCommands.AddCommand(existsCmd)
	BatchCommands.AddCommand(incrCmd)
	BatchCommands.AddCommand(perfTestCmd)
}

// setupBatchClient initializes the RPC client
func setupBatchClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	c, err := util.NewRPCClient()
	if err != nil {
		return err
	}
	rpcClient = c
	return nil
}

func closeBatchClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}
