package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Verifier is the backend authentication service the store delegates
// credential checks to. A non-accept answer (false, nil) is a rejection,
// not a fault; errors are reserved for infrastructure failures.
type Verifier interface {
	// VerifyCredentials reports whether the email/password pair matches
	// an existing account.
	VerifyCredentials(ctx context.Context, email, password string) (bool, error)

	// CreateAccount provisions a new account. Returns false when the
	// service declines (e.g. the email is already taken).
	CreateAccount(ctx context.Context, name, email, password string) (bool, error)
}

// Navigator is the navigation collaborator the store invokes when a state
// change requires the UI to move somewhere else. The store only requests
// navigation; it never renders.
type Navigator func(route string)

// Store is the single source of truth for "who, if anyone, is logged in".
// It owns the in-memory session and is the only writer of the durable
// slot. One Store lives for the process lifetime; consumers receive it by
// injection, never through package-level state.
//
// The mutex makes each operation's read-modify-write of the in-memory
// session and the slot a single indivisible step, so overlapping calls
// resolve last-write-wins without interleaving partial writes.
type Store struct {
	mu       sync.Mutex
	current  Session
	slot     Slot
	verifier Verifier

	navigate   Navigator
	loginRoute string
}

// NewStore creates a store that starts Unauthenticated. Call Restore once
// at startup to seed it from the durable slot. navigate may be nil when
// no navigation collaborator exists (tests, CLI tools).
func NewStore(slot Slot, verifier Verifier, navigate Navigator, loginRoute string) *Store {
	return &Store{
		current:    Unauthenticated(),
		slot:       slot,
		verifier:   verifier,
		navigate:   navigate,
		loginRoute: loginRoute,
	}
}

// Current returns the in-memory session. Never blocks on the slot or the
// verifier.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsAuthenticated reports whether the current session is authenticated.
func (s *Store) IsAuthenticated() bool {
	return s.Current().IsAuthenticated()
}

// Restore seeds the in-memory session from the durable slot. Invoked once
// at process start, before any route decision is made. A malformed record
// is treated as corruption: the slot is cleared and the store stays
// Unauthenticated -- corruption never fails startup and never resurrects
// a broken session. Only slot infrastructure failures return an error.
func (s *Store) Restore(ctx context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.slot.Read(ctx)
	if err == ErrSlotEmpty {
		s.current = Unauthenticated()
		return s.current, nil
	}
	if err != nil {
		s.current = Unauthenticated()
		return s.current, fmt.Errorf("restoring session: %w", err)
	}

	var id Identity
	if jsonErr := json.Unmarshal(record, &id); jsonErr != nil || id.Email == "" {
		slog.Warn("discarding corrupt session record",
			slog.Any("error", jsonErr),
		)
		if delErr := s.slot.Delete(ctx); delErr != nil {
			slog.Warn("failed to clear corrupt session record",
				slog.Any("error", delErr),
			)
		}
		s.current = Unauthenticated()
		return s.current, nil
	}

	s.current = Authenticated(id)
	slog.Info("session restored",
		slog.String("email", id.Email),
	)
	return s.current, nil
}

// Login establishes a session for the given credentials. The declined
// outcome (false, nil) covers empty input and credential rejection alike
// and leaves the session untouched. A non-nil error means infrastructure
// failed (verifier or durable write); the session is also untouched then,
// so a reported success always implies a persisted record.
func (s *Store) Login(ctx context.Context, email, password string) (Session, bool, error) {
	if email == "" || password == "" {
		return s.Current(), false, nil
	}

	ok, err := s.verifier.VerifyCredentials(ctx, email, password)
	if err != nil {
		return s.Current(), false, fmt.Errorf("verifying credentials: %w", err)
	}
	if !ok {
		return s.Current(), false, nil
	}

	return s.establish(ctx, Identity{Email: email})
}

// Register creates an account and establishes a session for it. Same
// outcome shape as Login, with the added precondition that name is
// non-empty; on success the identity carries the display name.
func (s *Store) Register(ctx context.Context, name, email, password string) (Session, bool, error) {
	if name == "" || email == "" || password == "" {
		return s.Current(), false, nil
	}

	ok, err := s.verifier.CreateAccount(ctx, name, email, password)
	if err != nil {
		return s.Current(), false, fmt.Errorf("creating account: %w", err)
	}
	if !ok {
		return s.Current(), false, nil
	}

	return s.establish(ctx, Identity{Email: email, DisplayName: name})
}

// Logout unconditionally clears the session, deletes the durable record,
// and asks the navigation collaborator to move to the login surface.
// Idempotent: calling it while already unauthenticated re-clears the slot
// and still requests navigation. A slot delete failure is surfaced but the
// in-memory session is cleared regardless -- logging out must never leave
// the operator logged in.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	delErr := s.slot.Delete(ctx)
	s.current = Unauthenticated()
	s.mu.Unlock()

	slog.Info("session cleared")

	if s.navigate != nil {
		s.navigate(s.loginRoute)
	}

	if delErr != nil {
		return fmt.Errorf("clearing session record: %w", delErr)
	}
	return nil
}

// establish persists the identity and swaps it in as the current session.
// The durable write happens first: if it fails, the in-memory session is
// left unchanged and the fault is surfaced, keeping memory and slot from
// diverging.
func (s *Store) establish(ctx context.Context, id Identity) (Session, bool, error) {
	record, err := json.Marshal(id)
	if err != nil {
		return s.Current(), false, fmt.Errorf("encoding session record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Write(ctx, record); err != nil {
		return s.current, false, fmt.Errorf("persisting session record: %w", err)
	}

	s.current = Authenticated(id)
	slog.Info("session established",
		slog.String("email", id.Email),
	)
	return s.current, true, nil
}
