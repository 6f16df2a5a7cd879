package login

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/althash-leandro/altmask/internal/constants"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

var (
	ErrAccountNotFound = errors.New("login: no wallet with that name")
	ErrAccountExists   = errors.New("login: a wallet with that name already exists")
)

// Keyring resolves stored wallets by name.
type Keyring interface {
	Lookup(ctx context.Context, name string) (shared.Account, error)
	List(ctx context.Context) ([]shared.Account, error)
}

// StoredWallets keeps the wallet list under the "accounts" key.
type StoredWallets struct {
	store storage.Store
}

func NewStoredWallets(store storage.Store) *StoredWallets {
	return &StoredWallets{store: store}
}

func (w *StoredWallets) List(ctx context.Context) ([]shared.Account, error) {
	values, err := w.store.Get(ctx, constants.StorageAccounts)
	if err != nil {
		return nil, fmt.Errorf("login: read accounts: %w", err)
	}
	accounts, _, err := storage.Decode[[]shared.Account](values, constants.StorageAccounts)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []shared.Account{}
	}
	return accounts, nil
}

func (w *StoredWallets) Lookup(ctx context.Context, name string) (shared.Account, error) {
	accounts, err := w.List(ctx)
	if err != nil {
		return shared.Account{}, err
	}
	for _, a := range accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return shared.Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
}

// Add appends a wallet. Names are unique.
func (w *StoredWallets) Add(ctx context.Context, account shared.Account) error {
	account.Name = strings.TrimSpace(account.Name)
	account.Address = strings.TrimSpace(account.Address)
	if account.Name == "" {
		return errors.New("login: wallet name is required")
	}
	if account.Address == "" {
		return errors.New("login: wallet address is required")
	}

	accounts, err := w.List(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Name == account.Name {
			return fmt.Errorf("%w: %q", ErrAccountExists, account.Name)
		}
	}

	b, err := json.Marshal(append(accounts, account))
	if err != nil {
		return fmt.Errorf("login: marshal accounts: %w", err)
	}
	if err := w.store.Set(ctx, map[string][]byte{constants.StorageAccounts: b}); err != nil {
		return fmt.Errorf("login: write accounts: %w", err)
	}
	return nil
}
