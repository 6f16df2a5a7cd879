package networks

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/constants"
	"github.com/althash-leandro/altmask/internal/messages"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

var ErrUnknownNetwork = errors.New("networks: unknown network index")

// Manager owns the active network selection. All methods run on the loop.
type Manager struct {
	loop    *bus.Loop
	kv      KV
	events  messages.Broadcaster
	session LogoutTarget

	networks []shared.Network
	active   int
	ready    bool
	// changed is set once the user picks a network; a persisted index that
	// resolves later must not override that choice.
	changed bool
}

func NewManager(loop *bus.Loop, kv KV, events messages.Broadcaster) *Manager {
	return &Manager{
		loop:     loop,
		kv:       kv,
		events:   events,
		networks: Catalog(),
		active:   DefaultIndex,
	}
}

// AttachSession wires the session that a network change logs out.
func (m *Manager) AttachSession(s LogoutTarget) {
	m.session = s
}

// Init loads the persisted index. done runs on the loop once the load resolved,
// whether or not anything was stored.
func (m *Manager) Init(done func()) {
	pending := m.kv.Get(constants.StorageNetworkIndex)

	bus.Go(m.loop, func() loadResult {
		values, err := pending.Wait(context.Background())
		return loadResult{values: values, err: err}
	}, func(res loadResult) {
		m.adoptPersisted(res)
		m.ready = true
		if done != nil {
			done()
		}
	})
}

type loadResult struct {
	values map[string][]byte
	err    error
}

func (m *Manager) adoptPersisted(res loadResult) {
	if res.err != nil {
		log.Error("networks: load persisted index", "error", res.err)
		return
	}
	index, ok, err := storage.Decode[int](res.values, constants.StorageNetworkIndex)
	if err != nil {
		log.Error("networks: decode persisted index", "error", err)
		return
	}
	if !ok {
		return
	}
	if m.changed {
		log.Info("networks: keeping network chosen during load", "persisted", index, "active", m.active)
		return
	}
	if !m.valid(index) {
		log.Warn("networks: ignoring persisted index out of range", "index", index)
		return
	}

	m.active = index
	m.events.Publish(messages.NetworkChanged(index))
	log.Info("networks: restored active network", "index", index, "name", m.networks[index].Name)
}

func (m *Manager) Ready() bool { return m.ready }

func (m *Manager) Networks() []shared.Network {
	return append([]shared.Network(nil), m.networks...)
}

func (m *Manager) ActiveIndex() int { return m.active }

func (m *Manager) Active() shared.Network { return m.networks[m.active] }

func (m *Manager) ActiveName() shared.NetworkName { return m.Active().Name }

func (m *Manager) ExplorerURL() string { return m.Active().ExplorerURL }

func (m *Manager) IsMainNet() bool { return m.Active().Name == shared.MainNet }

// ChangeNetwork persists index, broadcasts it and logs the session out, in that order.
// Re-selecting the active network does nothing once Init has finished; before that it
// only pins the selection so the persisted index cannot replace it.
func (m *Manager) ChangeNetwork(index int) error {
	if !m.valid(index) {
		return fmt.Errorf("%w: %d", ErrUnknownNetwork, index)
	}
	if index == m.active {
		if !m.ready && !m.changed {
			m.changed = true
			m.kv.Set(map[string]any{constants.StorageNetworkIndex: index})
		}
		return nil
	}

	m.changed = true
	m.active = index
	m.kv.Set(map[string]any{constants.StorageNetworkIndex: index})
	m.events.Publish(messages.NetworkChanged(index))
	log.Info("networks: changed", "index", index, "name", m.networks[index].Name)

	if m.session != nil {
		m.session.Logout()
	}
	return nil
}

func (m *Manager) valid(index int) bool {
	return index >= 0 && index < len(m.networks)
}

// Handle answers the network message types.
func (m *Manager) Handle(req messages.Request) (any, error) {
	switch req.Type {
	case messages.ChangeNetwork:
		if req.NetworkIndex == nil {
			return nil, errors.New("networks: CHANGE_NETWORK without networkIndex")
		}
		return nil, m.ChangeNetwork(*req.NetworkIndex)
	case messages.GetNetworks:
		return m.Networks(), nil
	case messages.GetNetworkIndex:
		return m.ActiveIndex(), nil
	case messages.GetNetworkExplorerURL:
		return m.ExplorerURL(), nil
	case messages.IsMainNet:
		return m.IsMainNet(), nil
	default:
		return nil, nil
	}
}

// Types lists the message types Handle answers.
func (m *Manager) Types() []messages.Type {
	return []messages.Type{
		messages.ChangeNetwork,
		messages.GetNetworks,
		messages.GetNetworkIndex,
		messages.GetNetworkExplorerURL,
		messages.IsMainNet,
	}
}
