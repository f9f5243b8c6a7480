package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/kvbatch/cmd/util"
	"github.com/ValentinKolb/kvbatch/lib/lockmgr"
	"github.com/ValentinKolb/kvbatch/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcLockMgr lockmgr.ILockManager
	rpcClient  *client.RPCClient
	lockTTL    time.Duration

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:                "lock",
		Short:              "Perform lock operations",
		PersistentPreRunE:  setupLockClient,
		PersistentPostRunE: closeLockClient,
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [key]",
		Short: "Acquire a lock",
		Args:  cobra.ExactArgs(1),
		RunE:  runAcquire,
	}

	// releaseCmd represents the release command
	releaseCmd = &cobra.Command{
		Use:   "release [key] [ownerID]",
		Short: "Release a previously acquired lock",
		Long:  "Release a lock using the key and the owner ID printed by the acquire command.",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelease,
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(releaseCmd)

	util.SetupRPCClientFlags(LockCommands)

	// Locks live in their own shard by default
	LockCommands.PersistentFlags().Int("shard", 200, util.WrapString("ID of the shard to connect to"))

	acquireCmd.Flags().DurationVar(&lockTTL, "ttl", 30*time.Second, "Lock timeout (0 for no timeout)")
}

// setupLockClient initializes the lock manager client
func setupLockClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcLockMgr, rpcClient, err = client.NewRPCLockMgr(util.GetShardID(), *util.GetClientConfig(), t, s)
	return err
}

func closeLockClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(viper.GetInt("timeout"))*time.Second)
}

// runAcquire handles the acquire lock command
func runAcquire(_ *cobra.Command, args []string) error {
	ctx, cancel := requestContext()
	defer cancel()

	acquired, ownerID, err := rpcLockMgr.AcquireLock(ctx, args[0], lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !acquired {
		fmt.Printf("acquired=false\n")
		return nil
	}
	fmt.Printf("acquired=true, ownerId=%s\n", ownerID)
	return nil
}

// runRelease handles the release lock command
func runRelease(_ *cobra.Command, args []string) error {
	ctx, cancel := requestContext()
	defer cancel()

	released, err := rpcLockMgr.ReleaseLock(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	fmt.Printf("released=%v\n", released)
	return nil
}
