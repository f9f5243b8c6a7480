package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/kvbatch/lib/batch"
	"github.com/ValentinKolb/kvbatch/lib/db"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/badgerdb"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/memdb"
	"github.com/ValentinKolb/kvbatch/lib/db/engines/pebbledb"
	"github.com/ValentinKolb/kvbatch/lib/store"
	"github.com/ValentinKolb/kvbatch/lib/store/dstore"
	"github.com/ValentinKolb/kvbatch/lib/store/lstore"
	"github.com/ValentinKolb/kvbatch/rpc/common"
	"github.com/ValentinKolb/kvbatch/rpc/serializer"
	"github.com/ValentinKolb/kvbatch/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapter that handles requests for the store
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

// RPCServer serves command batches for a set of shards
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	nodeHost   *dragonboat.NodeHost
	metricsSrv *http.Server
}

// handle decodes a request, lets the adapter of the shard run it and encodes the response
func (s *RPCServer) handle(shardId uint64, req []byte) []byte {
	respMsg := s.dispatch(shardId, req)

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(
			batch.NewErrorf(batch.ErrCInternal, "failed to serialize response: %s", err)))
	}
	return val
}

func (s *RPCServer) dispatch(shardId uint64, req []byte) *common.Message {
	shard, ok := s.shards.Load(shardId)
	if !ok {
		shardMisses.Inc()
		return common.NewErrorResponse(batch.NewErrorf(batch.ErrCInternal, "shard %d not found", shardId))
	}

	var msg common.Message
	if err := s.serializer.Deserialize(req, &msg); err != nil {
		return common.NewErrorResponse(batch.NewErrorf(batch.ErrCInternal, "failed to deserialize request: %s", err))
	}

	ctx := context.Background()
	if s.config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	traceID := uuid.NewString()
	resp := shard.Adapter.Handle(ctx, &msg, shard.Store)
	resp.TraceID = traceID

	if resp.MsgType == common.MsgTError {
		Logger.Debugf("[%s] %s batch of %d commands on shard %d failed: %s",
			traceID, msg.MsgType, len(msg.Commands), shardId, resp.Err)
	}
	return resp
}

// openEngine opens the engine configured for a shard
func (s *RPCServer) openEngine(shard common.ServerShard) (db.KVDB, error) {
	switch shard.Engine {
	case "", common.EngineMemDB:
		return memdb.NewMemDB(nil), nil
	case common.EnginePebble:
		return pebbledb.NewPebbleDB(pebbledb.DBOptions{Dir: s.config.ShardDataDir(shard.ShardID)})
	case common.EngineBadger:
		return badgerdb.NewBadgerDB(badgerdb.DBOptions{Dir: s.config.ShardDataDir(shard.ShardID)})
	default:
		return nil, fmt.Errorf("unknown engine %q for shard %d", shard.Engine, shard.ShardID)
	}
}

func (s *RPCServer) init() error {
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(s.config.String())

	for _, shard := range s.config.Shards {
		if err := shard.Validate(); err != nil {
			return err
		}
	}

	// Only create the NodeHost if we have remote shards
	if s.config.HasRemoteShard() {
		nodeHost, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
		s.nodeHost = nodeHost
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	/*
		Note: A single RPC Server can have any number of remote and or local shards.
		Every shard owns its own engine, remote shards replicate it with raft.
	*/

	for _, shardConfig := range s.config.Shards {
		if _, exists := s.shards.Load(shardConfig.ShardID); exists {
			return fmt.Errorf("duplicate shard id %d", shardConfig.ShardID)
		}

		database, err := s.openEngine(shardConfig)
		if err != nil {
			return fmt.Errorf("failed to open engine for shard %d: %w", shardConfig.ShardID, err)
		}
		dbFactory := func() db.KVDB { return database }

		var st store.IStore
		switch shardConfig.Type {
		case common.ShardTypeLocalIStore:
			st = lstore.NewLocalStore(dbFactory)
		case common.ShardTypeRemoteIStore:
			if s.nodeHost == nil {
				return fmt.Errorf("node host is nil, cannot create remote store")
			}
			if err := s.nodeHost.StartConcurrentReplica(
				s.config.ClusterMembers, false,
				dstore.CreateStateMaschineFactory(dbFactory),
				s.config.ToDragonboatConfig(shardConfig.ShardID),
			); err != nil {
				return fmt.Errorf("failed to start shard %d: %w", shardConfig.ShardID, err)
			}
			st = dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout)
		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}

		s.shards.Store(shardConfig.ShardID, serverShard{
			Store:   st,
			Adapter: NewIStoreServerAdapter(),
		})
		Logger.Infof("created %s store for shard %d", shardConfig.Type, shardConfig.ShardID)
	}

	s.transport.RegisterHandler(s.handle)

	if s.config.MetricsEndpoint != "" {
		s.startMetricsServer()
	}

	Logger.Infof("kvbatch setup completed successfully")
	return nil
}

// startMetricsServer serves GET /metrics on the dedicated metrics endpoint
func (s *RPCServer) startMetricsServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	s.metricsSrv = &http.Server{Addr: s.config.MetricsEndpoint, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		Logger.Infof("Starting metrics server on %s", s.config.MetricsEndpoint)
		if err := s.metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics server failed: %v", err)
		}
	}()
}

// Serve initializes the shards and blocks in the transport until Close is called
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport and releases all shards
func (s *RPCServer) Close() error {
	var errs []error
	if err := s.transport.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.metricsSrv != nil {
		if err := s.metricsSrv.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.shards.Range(func(id uint64, shard serverShard) bool {
		if err := shard.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("shard %d: %w", id, err))
		}
		return true
	})

	// the node host closes the state machines of all raft shards
	if s.nodeHost != nil {
		s.nodeHost.Close()
	}
	return errors.Join(errs...)
}
