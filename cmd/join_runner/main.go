package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/env_config"
	"changelog-join/pkg/execution"
	"changelog-join/pkg/processor"
	"changelog-join/pkg/redis_client"
	"changelog-join/pkg/state"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

var FLAGS_config string

func init() {
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := zerolog.ParseLevel(logLevel); err == nil && logLevel != "" {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func backendFactory(cfg *env_config.Config) (execution.BackendFactory, error) {
	switch cfg.StateBackend {
	case env_config.BACKEND_BTREE, "":
		return func(uint32) (state.KeyedStateBackend, error) {
			return state.NewInMemoryKeyedBackend(state.BTreeStore)
		}, nil
	case env_config.BACKEND_SKIPMAP:
		return func(uint32) (state.KeyedStateBackend, error) {
			return state.NewInMemoryKeyedBackend(state.SkipmapStore)
		}, nil
	case env_config.BACKEND_REDIS:
		rdbs := redis_client.NewRedisClients(cfg.RedisAddr)
		if len(rdbs) == 0 {
			rdbs = redis_client.GetRedisClients()
		}
		if len(rdbs) == 0 {
			return nil, xerrors.New("redis backend needs REDIS_ADDR")
		}
		return func(par uint32) (state.KeyedStateBackend, error) {
			rdb := rdbs[int(par)%len(rdbs)]
			return state.NewRedisKeyedBackend(rdb, fmt.Sprintf("%s-%d", cfg.JoinName, par), cfg.SerdeFormat)
		}, nil
	default:
		return nil, xerrors.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

func run(ctx context.Context, cfg *env_config.Config, stdin io.Reader, stdout io.Writer) error {
	retention, err := cfg.Retention()
	if err != nil {
		return err
	}
	newBackend, err := backendFactory(cfg)
	if err != nil {
		return err
	}
	leftType := commtypes.NewRowType(cfg.LeftTypes...)
	rightType := commtypes.NewRowType(cfg.RightTypes...)
	w := bufio.NewWriter(stdout)
	defer w.Flush()
	sink := execution.SinkFunc(func(ctx context.Context, partition uint32, msg commtypes.Message) error {
		line, err := encodeOutput(partition, msg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, line)
		return err
	})
	task, err := execution.NewPartitionedJoinTask(ctx, execution.PartitionedJoinTaskConfig{
		Join: processor.StreamStreamJoinConfig{
			Name:      cfg.JoinName,
			LeftType:  leftType,
			RightType: rightType,
			Retention: retention,
			Predicate: cfg.Predicate(),
		},
		Parallelism: cfg.Parallelism,
		NewBackend:  newBackend,
	}, sink)
	if err != nil {
		return err
	}
	log.Info().Str("join", cfg.JoinName).Str("backend", cfg.StateBackend).
		Uint32("parallelism", cfg.Parallelism).Msg("starting join")

	dec, err := newLineDecoder([2]commtypes.RowType{leftType, rightType},
		[2][]int{cfg.LeftKeyFields, cfg.RightKeyFields})
	if err != nil {
		return err
	}
	// A failed task returns without waiting for the reader, which may be
	// blocked on stdin.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	inputs := make(chan execution.Input)
	readErr := make(chan error, 1)
	go func() {
		defer close(inputs)
		readErr <- readInputs(ctx, stdin, dec, inputs)
	}()
	if err := task.Run(ctx, inputs); err != nil {
		return err
	}
	return <-readErr
}

func readInputs(ctx context.Context, r io.Reader, dec *lineDecoder, inputs chan<- execution.Input) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ins, err := dec.Decode(line)
		if err != nil {
			log.Warn().Err(err).Int("line", lineNum).Msg("skipping malformed input")
			continue
		}
		for _, in := range ins {
			select {
			case inputs <- in:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return scanner.Err()
}

func main() {
	flag.StringVar(&FLAGS_config, "config", "", "optional JSON config file")
	flag.Parse()

	cfg, err := env_config.Load(FLAGS_config)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("join failed")
	}
}
