package feed

import (
	"context"
	"sync"
	"time"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/stores"

	"github.com/google/uuid"
)

// Stage names a step of a publish run.
type Stage string

const (
	StageStart              Stage = "START"
	StageResolvingIdentity  Stage = "RESOLVING_IDENTITY"
	StageGeneratingArtifact Stage = "GENERATING_ARTIFACT"
	StagePushing            Stage = "PUSHING"
	StageDone               Stage = "DONE"
)

// Run describes one publish invocation, finished or failed.
type Run struct {
	ID           string
	Scope        stores.Scope
	Stage        Stage
	Identity     Identity
	ArtifactPath string
	RowCount     int
	Upload       *graph.UploadResult
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RunRecorder keeps a record of finished runs.
type RunRecorder interface {
	Record(ctx context.Context, run *Run) error
}

type PublisherOptions struct {
	VarDir       string
	UploadMethod UploadMethod
}

type Publisher struct {
	settings   SettingsResolver
	registry   *stores.Registry
	session    Session
	resolver   *Resolver
	retrievers []ProductRetriever
	recorder   RunRecorder
	opts       PublisherOptions
	logger     *logger.Logger

	// runs holds one *sync.Mutex per store id, held from identity
	// resolution until the push returns.
	runs sync.Map
}

// NewPublisher wires a publisher. retrievers run in the order given; recorder
// may be nil.
func NewPublisher(
	settings SettingsResolver,
	registry *stores.Registry,
	session Session,
	resolver *Resolver,
	retrievers []ProductRetriever,
	recorder RunRecorder,
	opts PublisherOptions,
	logger *logger.Logger,
) *Publisher {
	if opts.UploadMethod == "" {
		opts.UploadMethod = UploadMethodFeedAPI
	}
	return &Publisher{
		settings:   settings,
		registry:   registry,
		session:    session,
		resolver:   resolver,
		retrievers: retrievers,
		recorder:   recorder,
		opts:       opts,
		logger:     logger,
	}
}

// Publish regenerates the feed artifact for scope and uploads it. The run is
// recorded under the store id scope resolves to, so "" and the default store
// id share one feed. Failures are logged and returned unchanged.
func (p *Publisher) Publish(ctx context.Context, scope stores.Scope) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Scope:     scope,
		Stage:     StageStart,
		StartedAt: time.Now(),
	}
	log := p.logger.With("store=" + string(scope) + " run=" + run.ID)

	err := p.publish(ctx, run, log)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Err = err
		log.Error("feed publish failed at %s: %v", run.Stage, err)
	} else {
		run.Stage = StageDone
		log.Info("feed %s published: %d products from %s", run.Identity.ID, run.RowCount, run.ArtifactPath)
	}

	if p.recorder != nil {
		if recErr := p.recorder.Record(ctx, run); recErr != nil {
			log.Error("failed to record publish run: %v", recErr)
		}
	}

	return run, err
}

func (p *Publisher) publish(ctx context.Context, run *Run, log *logger.Logger) error {
	store, err := p.registry.Resolve(run.Scope)
	if err != nil {
		return err
	}
	run.Scope = stores.Scope(store.ID)
	unlock := p.lockStore(store.ID)
	defer unlock()

	p.settings.CleanCache()
	cfg, err := p.settings.Resolve(ctx, run.Scope)
	if err != nil {
		return err
	}
	api := p.session(cfg.AccessToken, cfg.Debug)

	run.Stage = StageResolvingIdentity
	ident, err := p.resolver.Resolve(ctx, api, cfg)
	if err != nil {
		return err
	}
	run.Identity = ident
	if ident.Created && !ident.Ready {
		log.Warn("feed %s was created but did not become readable after %d polls; uploading anyway", ident.ID, ident.PollAttempts)
	}

	run.Stage = StageGeneratingArtifact
	name, err := FileName(p.registry, run.Scope)
	if err != nil {
		return err
	}
	run.ArtifactPath = ArtifactPath(p.opts.VarDir, name)
	builder := NewBuilder(store, p.opts.UploadMethod)
	run.RowCount, err = p.generate(ctx, run.ArtifactPath, run.Scope, builder)
	if err != nil {
		return err
	}
	log.Debug("generated feed with %d products", run.RowCount)

	run.Stage = StagePushing
	run.Upload, err = api.PushFeed(ctx, ident.ID, run.ArtifactPath)
	return err
}

func (p *Publisher) generate(ctx context.Context, path string, scope stores.Scope, builder RowBuilder) (int, error) {
	sink, err := OpenFileSink(path)
	if err != nil {
		return 0, err
	}
	n, err := WriteArtifact(ctx, sink, scope, p.retrievers, builder)
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return n, err
}

// lockStore serialises runs of one store so a second run cannot rewrite the
// artifact while the first is still uploading it.
func (p *Publisher) lockStore(id string) func() {
	v, _ := p.runs.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
