// cmd/container.go
//
// Composition root. Owns infrastructure (Redis, file storage, clock) and
// builds the work source and units of work the drain runs.
package main

import (
	"context"

	"github.com/Abraxas-365/fetchdrain/pkg/config"
	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
	"github.com/Abraxas-365/fetchdrain/pkg/fetch"
	"github.com/Abraxas-365/fetchdrain/pkg/fsx"
	"github.com/Abraxas-365/fetchdrain/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/fetchdrain/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/fetchdrain/pkg/logx"
	"github.com/Abraxas-365/fetchdrain/pkg/source"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the drain's collaborators.
type Container struct {
	Config *config.Config
	Clock  clockwork.Clock

	// Infrastructure
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Drain collaborators
	Source    source.Source
	Fetcher   *fetch.FileFetcher
	Simulated *fetch.Simulated
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logx.Info("Initializing container...")

	c := &Container{Config: cfg, Clock: clockwork.NewRealClock()}

	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	c.initCollaborators()

	logx.Info("Container initialized")
	return c, nil
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.Config.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return errConnect("redis", c.Config.Redis.Address(), err)
		}
		logx.Infof("  Redis connected (%s)", c.Config.Redis.Address())
	}

	if c.Config.Drain.Source == config.SourceStorage {
		return c.initFileStorage(ctx)
	}
	return nil
}

func (c *Container) initFileStorage(ctx context.Context) error {
	storage := c.Config.Storage

	switch storage.Mode {
	case config.StorageS3:
		cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(storage.AWSRegion))
		if err != nil {
			return errConnect("aws", storage.AWSRegion, err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, storage.Bucket, storage.Prefix)
		logx.Infof("  S3 file system configured (bucket: %s, prefix: %q, region: %s)",
			storage.Bucket, storage.Prefix, storage.AWSRegion)

	default:
		localFS, err := fsxlocal.NewLocalFileSystem(storage.LocalDir)
		if err != nil {
			return err
		}
		c.FileSystem = localFS
		logx.Infof("  Local file system configured (path: %s)", localFS.GetBasePath())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Drain collaborators
// ---------------------------------------------------------------------------

func (c *Container) initCollaborators() {
	d := c.Config.Drain

	if d.Source == config.SourceStorage {
		c.Source = source.NewFS(c.FileSystem, d.Dir, d.Pattern)
		c.Fetcher = fetch.NewFileFetcher(c.FileSystem)
		logx.Infof("  Source: %s (pattern %q)", d.Dir, d.Pattern)
		return
	}

	sim := c.Config.Simulate
	opts := []fetch.SimulatedOption{fetch.WithDurations(sim.DurationMap())}
	for _, item := range sim.Fail {
		opts = append(opts, fetch.WithFailure(item, nil))
	}
	c.Source = source.Static(sim.Items)
	c.Simulated = fetch.NewSimulated(c.Clock, 0, opts...)
	logx.Infof("  Source: simulated %v", sim.Items)
}

// DrainOptions translates the drain config into engine options.
func (c *Container) DrainOptions() []drainx.Option {
	d := c.Config.Drain
	policy := drainx.CallbackAbort
	if d.ContinueOnCallback {
		policy = drainx.CallbackContinue
	}
	return []drainx.Option{
		drainx.WithMaxInFlight(d.MaxInFlight),
		drainx.WithCallbackPolicy(policy),
		drainx.WithCallbackTimeout(d.CallbackTimeout),
		drainx.WithClock(c.Clock),
		drainx.WithLogger(logx.GetDefaultLogger()),
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Debug("  Redis connection closed")
		}
	}
}
