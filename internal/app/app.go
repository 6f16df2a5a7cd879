// Package app wires the controllers together and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"golang.org/x/sync/errgroup"

	"github.com/althash-leandro/altmask/internal/assets"
	"github.com/althash-leandro/altmask/internal/bus"
	clienthttp "github.com/althash-leandro/altmask/internal/http"
	"github.com/althash-leandro/altmask/internal/login"
	"github.com/althash-leandro/altmask/internal/networks"
	"github.com/althash-leandro/altmask/internal/poller"
	"github.com/althash-leandro/altmask/internal/router"
	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

const flushTimeout = 5 * time.Second

type Options struct {
	Storage      storage.Config
	Endpoints    map[shared.NetworkName]rpc.Endpoint
	PollInterval time.Duration
	Assets       assets.Config
	// HTTP is skipped when Port is empty.
	HTTP clienthttp.Config

	// Store and Nodes replace the configured ones when set.
	Store storage.Store
	Nodes assets.NodeSource
}

type App struct {
	Loop     *bus.Loop
	Queue    *storage.Queue
	Feed     *bus.Feed
	Store    storage.Store
	Wallets  *login.StoredWallets
	Networks *networks.Manager
	Session  *login.Session
	Registry *assets.Manager
	Poller   *poller.Poller
	Router   *router.Router
	Server   *clienthttp.Server

	service *rpc.Service
}

func Build(opts Options) (*App, error) {
	a := &App{
		Loop: bus.NewLoop(),
		Feed: bus.NewFeed(),
	}

	a.Store = opts.Store
	if a.Store == nil {
		s, err := storage.Open(opts.Storage)
		if err != nil {
			return nil, fmt.Errorf("app: open storage: %w", err)
		}
		a.Store = s
	}
	a.Queue = storage.NewQueue(a.Store)
	a.Wallets = login.NewStoredWallets(a.Store)

	nodes := opts.Nodes
	if nodes == nil {
		svc, err := rpc.NewService(rpc.ServiceConfig{Endpoints: opts.Endpoints})
		if err != nil {
			_ = a.Store.Close()
			return nil, err
		}
		a.service = svc
		nodes = svc
	}

	a.Networks = networks.NewManager(a.Loop, a.Queue, a.Feed)
	a.Session = login.NewSession(a.Loop, a.Wallets, a.Feed)
	a.Registry = assets.NewManager(a.Loop, a.Queue, a.Feed, a.Networks, a.Session, nodes, opts.Assets)
	a.Poller = poller.New(a.Loop, a.Registry, opts.PollInterval)

	a.Networks.AttachSession(a.Session)
	a.Session.OnLogout(a.Registry.ResetForScopeChange)
	a.Session.OnLogout(a.Poller.Stop)
	a.Session.OnLogin(func(shared.Account) {
		a.Registry.InitForScope(a.Poller.Start)
	})

	a.Router = router.New(a.Loop)
	a.Router.Register(router.Sync(a.Networks.Handle), a.Networks.Types()...)
	a.Router.Register(a.Session, a.Session.Types()...)
	a.Router.Register(router.Sync(a.Registry.Handle), a.Registry.Types()...)

	if opts.HTTP.Port != "" {
		a.Server = clienthttp.NewServer(opts.HTTP, clienthttp.NewHandler(a.Router, a.Feed))
	}
	return a, nil
}

// Run loads the persisted network and serves until ctx is cancelled. Writes queued
// before shutdown are flushed before Run returns.
func (a *App) Run(ctx context.Context) error {
	a.Loop.Post(func() {
		a.Networks.Init(func() {
			log.Info("app: ready", "network", a.Networks.ActiveName())
		})
	})

	queueCtx, stopQueue := context.WithCancel(context.Background())
	queueDone := make(chan error, 1)
	go func() { queueDone <- a.Queue.Run(queueCtx) }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Loop.Run(gctx) })
	if a.Server != nil {
		g.Go(func() error { return a.Server.Run(gctx) })
	}
	err := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if ferr := a.Queue.Flush(flushCtx); ferr != nil {
		log.Warn("app: pending writes not flushed", "error", ferr)
	}
	stopQueue()
	if qerr := <-queueDone; qerr != nil {
		err = errors.Join(err, qerr)
	}
	return err
}

func (a *App) Close() error {
	if a.service != nil {
		a.service.Close()
	}
	return a.Store.Close()
}
