// Package login owns the logged-in account. Logging out, explicitly or because the
// network changed, runs the registered logout hooks in order before returning.
package login

import (
	"context"
	"errors"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/messages"
	"github.com/althash-leandro/altmask/internal/shared"
)

const lookupTimeout = 10 * time.Second

// Session methods run on the loop.
type Session struct {
	loop    *bus.Loop
	keyring Keyring
	events  messages.Broadcaster

	active     *shared.Account
	generation uint64

	onLogin  []func(shared.Account)
	onLogout []func()
}

func NewSession(loop *bus.Loop, keyring Keyring, events messages.Broadcaster) *Session {
	return &Session{loop: loop, keyring: keyring, events: events}
}

func (s *Session) OnLogin(fn func(shared.Account)) { s.onLogin = append(s.onLogin, fn) }

func (s *Session) OnLogout(fn func()) { s.onLogout = append(s.onLogout, fn) }

// Account returns the logged-in account, if any.
func (s *Session) Account() (shared.Account, bool) {
	if s.active == nil {
		return shared.Account{}, false
	}
	return *s.active, true
}

type lookupResult struct {
	account shared.Account
	err     error
}

// Login resolves name in the keyring and, on success, makes it the active account.
// A logout issued while the lookup is in flight cancels the login.
func (s *Session) Login(name string) {
	gen := s.generation

	bus.Go(s.loop, func() lookupResult {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		a, err := s.keyring.Lookup(ctx, name)
		return lookupResult{account: a, err: err}
	}, func(res lookupResult) {
		if gen != s.generation {
			log.Info("login: discarding login superseded by logout", "account", name)
			return
		}
		if res.err != nil {
			log.Warn("login: failed", "account", name, "error", res.err)
			s.events.Publish(messages.LoginFailed(res.err))
			return
		}
		if s.active != nil {
			if s.active.Name == res.account.Name {
				s.events.Publish(messages.LoginSucceeded(res.account))
				return
			}
			s.Logout()
		}

		acc := res.account
		s.active = &acc
		log.Info("login: logged in", "account", acc.Name)
		s.events.Publish(messages.LoginSucceeded(acc))
		for _, fn := range s.onLogin {
			fn(acc)
		}
	})
}

// Logout clears the active account and runs the logout hooks. It reports whether an
// account was active; the hooks run either way.
func (s *Session) Logout() bool {
	wasActive := s.active != nil
	if wasActive {
		log.Info("login: logged out", "account", s.active.Name)
	}
	s.active = nil
	s.generation++

	for _, fn := range s.onLogout {
		fn()
	}
	return wasActive
}

type accountsResult struct {
	accounts []shared.Account
	err      error
}

// Handle answers the account message types. GET_ACCOUNTS needs the keyring, so it is
// answered through respond from a later loop turn.
func (s *Session) Handle(req messages.Request, respond func(any)) error {
	switch req.Type {
	case messages.AccountLogin:
		if req.AccountName == "" {
			err := errors.New("login: ACCOUNT_LOGIN without accountName")
			s.events.Publish(messages.LoginFailed(err))
			return err
		}
		s.Login(req.AccountName)
	case messages.Logout:
		if s.Logout() {
			s.events.Publish(messages.LoggedOut())
		}
	case messages.GetLoggedInAccount:
		if a, ok := s.Account(); ok {
			respond(a)
		} else {
			respond(nil)
		}
	case messages.GetAccounts:
		bus.Go(s.loop, func() accountsResult {
			ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
			defer cancel()
			a, err := s.keyring.List(ctx)
			return accountsResult{accounts: a, err: err}
		}, func(res accountsResult) {
			if res.err != nil {
				log.Error("login: list accounts", "error", res.err)
				respond([]shared.Account{})
				return
			}
			respond(res.accounts)
		})
	}
	return nil
}

func (s *Session) Types() []messages.Type {
	return []messages.Type{
		messages.AccountLogin,
		messages.Logout,
		messages.GetLoggedInAccount,
		messages.GetAccounts,
	}
}
