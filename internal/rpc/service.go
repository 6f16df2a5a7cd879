package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/quantumauth-io/quantum-go-utils/retry"

	"github.com/althash-leandro/altmask/internal/shared"
)

// ChainNode is a Node that can also identify its chain and be closed.
type ChainNode interface {
	Node
	ChainName(ctx context.Context) (string, error)
	Close()
}

type Dialer func(ctx context.Context, ep Endpoint) (ChainNode, error)

func DialQtumNode(ctx context.Context, ep Endpoint) (ChainNode, error) {
	return DialQtum(ctx, ep)
}

type ServiceConfig struct {
	Endpoints map[shared.NetworkName]Endpoint
	// HealthCheckTimeout bounds dial + getblockchaininfo retries for one network.
	HealthCheckTimeout time.Duration
	Dial               Dialer
}

// Service resolves and caches one node client per network.
type Service struct {
	cfg ServiceConfig

	mu    sync.Mutex
	nodes map[shared.NetworkName]ChainNode
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("rpc: no node endpoints configured")
	}
	if cfg.HealthCheckTimeout <= 0 {
		cfg.HealthCheckTimeout = 10 * time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = DialQtumNode
	}
	return &Service{cfg: cfg, nodes: make(map[shared.NetworkName]ChainNode)}, nil
}

// NodeFor returns the cached client for network, dialing and health-checking it on first use.
func (s *Service) NodeFor(ctx context.Context, network shared.Network) (Node, error) {
	s.mu.Lock()
	if existing := s.nodes[network.Name]; existing != nil {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	ep, ok := s.cfg.Endpoints[network.Name]
	if !ok {
		return nil, fmt.Errorf("rpc: no endpoint for network %q", network.Name)
	}

	// dial outside the lock
	node, err := s.dialChecked(ctx, network, ep)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.nodes[network.Name]; existing != nil {
		node.Close()
		return existing, nil
	}
	s.nodes[network.Name] = node
	return node, nil
}

func (s *Service) dialChecked(ctx context.Context, network shared.Network, ep Endpoint) (ChainNode, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.HealthCheckTimeout)
	defer cancel()

	node, err := s.cfg.Dial(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s node: %w", network.Name, err)
	}

	delay := s.cfg.HealthCheckTimeout / 5
	cfg := retry.DefaultConfig()
	cfg.MaxDelayBeforeRetrying = delay
	cfg.InitialDelayBeforeRetrying = delay / 10

	var chain string
	_, err = retry.Retry(ctx, cfg,
		func(ctx context.Context) ([]interface{}, error) {
			c, err := node.ChainName(ctx)
			if err != nil {
				return nil, err
			}
			chain = c
			return nil, nil
		},
		nil,
		"node health check")
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("rpc: %s node health check: %w", network.Name, err)
	}

	want := network.ChainParams.ChainName
	if want != "" && !strings.EqualFold(chain, want) {
		node.Close()
		return nil, fmt.Errorf("rpc: %s node serves chain %q, want %q", network.Name, chain, want)
	}

	log.Info("node ready", "network", network.Name, "url", ep.URL, "chain", chain)
	return node, nil
}

// Close closes all cached clients.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, n := range s.nodes {
		n.Close()
		delete(s.nodes, name)
	}
}
