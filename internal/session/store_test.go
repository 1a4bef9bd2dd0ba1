package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// --- Mock Verifier ---

// mockVerifier implements Verifier for testing.
type mockVerifier struct {
	verifyCredentialsFn func(ctx context.Context, email, password string) (bool, error)
	createAccountFn     func(ctx context.Context, name, email, password string) (bool, error)
}

func (m *mockVerifier) VerifyCredentials(ctx context.Context, email, password string) (bool, error) {
	if m.verifyCredentialsFn != nil {
		return m.verifyCredentialsFn(ctx, email, password)
	}
	return true, nil
}

func (m *mockVerifier) CreateAccount(ctx context.Context, name, email, password string) (bool, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(ctx, name, email, password)
	}
	return true, nil
}

// --- Faulty Slot ---

// faultySlot wraps a MemorySlot and fails selected operations, for
// testing how the store behaves when the durable layer misbehaves.
type faultySlot struct {
	inner     *MemorySlot
	readErr   error
	writeErr  error
	deleteErr error
}

func (f *faultySlot) Read(ctx context.Context) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.inner.Read(ctx)
}

func (f *faultySlot) Write(ctx context.Context, record []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.inner.Write(ctx, record)
}

func (f *faultySlot) Delete(ctx context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.inner.Delete(ctx)
}

// --- Navigation Recorder ---

// navRecorder captures navigation requests for assertions.
type navRecorder struct {
	routes []string
}

func (n *navRecorder) record(route string) {
	n.routes = append(n.routes, route)
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	slot := NewMemorySlot()
	store := NewStore(slot, &mockVerifier{}, nil, "/login")

	sess, ok, err := store.Login(context.Background(), "alice@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected login to be accepted")
	}
	if !sess.IsAuthenticated() {
		t.Error("expected returned session to be authenticated")
	}
	if !store.IsAuthenticated() {
		t.Error("expected store to report authenticated")
	}

	id, bound := store.Current().Identity()
	if !bound {
		t.Fatal("expected current session to carry an identity")
	}
	if id.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", id.Email)
	}

	// The durable record must round-trip back to the same identity.
	record, err := slot.Read(context.Background())
	if err != nil {
		t.Fatalf("expected slot to hold a record: %v", err)
	}
	var stored Identity
	if err := json.Unmarshal(record, &stored); err != nil {
		t.Fatalf("stored record is not valid JSON: %v", err)
	}
	if stored.Email != "alice@example.com" {
		t.Errorf("expected stored email alice@example.com, got %s", stored.Email)
	}
}

func TestLogin_EmptyFieldsDeclined(t *testing.T) {
	verifierCalled := false
	verifier := &mockVerifier{
		verifyCredentialsFn: func(ctx context.Context, email, password string) (bool, error) {
			verifierCalled = true
			return true, nil
		},
	}
	slot := NewMemorySlot()
	store := NewStore(slot, verifier, nil, "/login")

	for _, tc := range []struct {
		name            string
		email, password string
	}{
		{"empty email", "", "hunter2secret"},
		{"empty password", "alice@example.com", ""},
		{"both empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, ok, err := store.Login(context.Background(), tc.email, tc.password)
			if err != nil {
				t.Fatalf("empty input must decline, not fail: %v", err)
			}
			if ok {
				t.Error("expected login to be declined")
			}
		})
	}

	if verifierCalled {
		t.Error("verifier must not be consulted for empty input")
	}
	if store.IsAuthenticated() {
		t.Error("declined login must leave the session unauthenticated")
	}
	if _, err := slot.Read(context.Background()); err != ErrSlotEmpty {
		t.Errorf("declined login must not touch the slot, got %v", err)
	}
}

func TestLogin_WrongCredentialsDeclined(t *testing.T) {
	verifier := &mockVerifier{
		verifyCredentialsFn: func(ctx context.Context, email, password string) (bool, error) {
			return false, nil
		},
	}
	slot := NewMemorySlot()
	store := NewStore(slot, verifier, nil, "/login")

	_, ok, err := store.Login(context.Background(), "alice@example.com", "wrong")
	if err != nil {
		t.Fatalf("credential rejection must decline, not fail: %v", err)
	}
	if ok {
		t.Error("expected login to be declined")
	}
	if store.IsAuthenticated() {
		t.Error("declined login must leave the session unauthenticated")
	}
}

func TestLogin_VerifierFault(t *testing.T) {
	verifier := &mockVerifier{
		verifyCredentialsFn: func(ctx context.Context, email, password string) (bool, error) {
			return false, errors.New("database unreachable")
		},
	}
	store := NewStore(NewMemorySlot(), verifier, nil, "/login")

	_, ok, err := store.Login(context.Background(), "alice@example.com", "hunter2secret")
	if err == nil {
		t.Fatal("expected a fault when the verifier fails")
	}
	if ok {
		t.Error("a fault must not report acceptance")
	}
	if store.IsAuthenticated() {
		t.Error("a fault must leave the session unauthenticated")
	}
}

func TestLogin_SlotWriteFailureLeavesStateUnchanged(t *testing.T) {
	slot := &faultySlot{
		inner:    NewMemorySlot(),
		writeErr: errors.New("redis connection refused"),
	}
	store := NewStore(slot, &mockVerifier{}, nil, "/login")

	_, ok, err := store.Login(context.Background(), "alice@example.com", "hunter2secret")
	if err == nil {
		t.Fatal("expected a fault when the durable write fails")
	}
	if ok {
		t.Error("a failed durable write must not report acceptance")
	}
	if store.IsAuthenticated() {
		t.Error("the in-memory session must stay unauthenticated when the write fails")
	}
}

func TestLogin_ReloginReplacesIdentity(t *testing.T) {
	slot := NewMemorySlot()
	store := NewStore(slot, &mockVerifier{}, nil, "/login")

	ctx := context.Background()
	if _, ok, err := store.Login(ctx, "alice@example.com", "hunter2secret"); err != nil || !ok {
		t.Fatalf("first login failed: ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Login(ctx, "bob@example.com", "correcthorse"); err != nil || !ok {
		t.Fatalf("second login failed: ok=%v err=%v", ok, err)
	}

	id, _ := store.Current().Identity()
	if id.Email != "bob@example.com" {
		t.Errorf("expected identity replaced by bob@example.com, got %s", id.Email)
	}

	record, _ := slot.Read(ctx)
	var stored Identity
	if err := json.Unmarshal(record, &stored); err != nil {
		t.Fatalf("stored record is not valid JSON: %v", err)
	}
	if stored.Email != "bob@example.com" {
		t.Errorf("expected slot to hold bob@example.com, got %s", stored.Email)
	}
}

// --- Register Tests ---

func TestRegister_SuccessCarriesDisplayName(t *testing.T) {
	verifier := &mockVerifier{
		createAccountFn: func(ctx context.Context, name, email, password string) (bool, error) {
			if name != "Alice" {
				t.Errorf("expected name Alice, got %s", name)
			}
			return true, nil
		},
	}
	store := NewStore(NewMemorySlot(), verifier, nil, "/login")

	sess, ok, err := store.Register(context.Background(), "Alice", "alice@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected registration to be accepted")
	}

	id, bound := sess.Identity()
	if !bound {
		t.Fatal("expected an identity after registration")
	}
	if id.DisplayName != "Alice" {
		t.Errorf("expected display name Alice, got %s", id.DisplayName)
	}
	if id.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", id.Email)
	}
}

func TestRegister_DuplicateEmailDeclined(t *testing.T) {
	verifier := &mockVerifier{
		createAccountFn: func(ctx context.Context, name, email, password string) (bool, error) {
			return false, nil
		},
	}
	store := NewStore(NewMemorySlot(), verifier, nil, "/login")

	_, ok, err := store.Register(context.Background(), "Alice", "alice@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("a duplicate email must decline, not fail: %v", err)
	}
	if ok {
		t.Error("expected registration to be declined")
	}
	if store.IsAuthenticated() {
		t.Error("declined registration must leave the session unauthenticated")
	}
}

func TestRegister_EmptyFieldsDeclined(t *testing.T) {
	store := NewStore(NewMemorySlot(), &mockVerifier{}, nil, "/login")

	_, ok, err := store.Register(context.Background(), "", "alice@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("empty name must decline, not fail: %v", err)
	}
	if ok {
		t.Error("expected registration with empty name to be declined")
	}
}

// --- Logout Tests ---

func TestLogout_ClearsSessionAndSlot(t *testing.T) {
	slot := NewMemorySlot()
	nav := &navRecorder{}
	store := NewStore(slot, &mockVerifier{}, nav.record, "/login")

	ctx := context.Background()
	if _, ok, err := store.Login(ctx, "alice@example.com", "hunter2secret"); err != nil || !ok {
		t.Fatalf("login failed: ok=%v err=%v", ok, err)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.IsAuthenticated() {
		t.Error("expected session cleared after logout")
	}
	if _, err := slot.Read(ctx); err != ErrSlotEmpty {
		t.Errorf("expected slot cleared after logout, got %v", err)
	}
	if len(nav.routes) != 1 || nav.routes[0] != "/login" {
		t.Errorf("expected exactly one navigation to /login, got %v", nav.routes)
	}
}

func TestLogout_IdempotentWhenUnauthenticated(t *testing.T) {
	nav := &navRecorder{}
	store := NewStore(NewMemorySlot(), &mockVerifier{}, nav.record, "/login")

	ctx := context.Background()
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout while unauthenticated must succeed: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("repeated logout must succeed: %v", err)
	}

	// Each call requests navigation exactly once.
	if len(nav.routes) != 2 {
		t.Errorf("expected one navigation per logout call, got %v", nav.routes)
	}
}

func TestLogout_SlotDeleteFailureStillClearsMemory(t *testing.T) {
	slot := &faultySlot{
		inner:     NewMemorySlot(),
		deleteErr: errors.New("redis connection refused"),
	}
	nav := &navRecorder{}
	store := NewStore(slot, &mockVerifier{}, nav.record, "/login")

	ctx := context.Background()
	if _, ok, err := store.Login(ctx, "alice@example.com", "hunter2secret"); err != nil || !ok {
		t.Fatalf("login failed: ok=%v err=%v", ok, err)
	}

	err := store.Logout(ctx)
	if err == nil {
		t.Error("expected the delete failure to be surfaced")
	}
	if store.IsAuthenticated() {
		t.Error("logout must clear the in-memory session even when the slot delete fails")
	}
	if len(nav.routes) != 1 {
		t.Errorf("expected navigation to still be requested, got %v", nav.routes)
	}
}

// --- Restore Tests ---

func TestRestore_EmptySlot(t *testing.T) {
	store := NewStore(NewMemorySlot(), &mockVerifier{}, nil, "/login")

	sess, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("expected unauthenticated session from an empty slot")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	record, _ := json.Marshal(Identity{Email: "alice@example.com", DisplayName: "Alice"})
	if err := slot.Write(ctx, record); err != nil {
		t.Fatalf("seeding slot: %v", err)
	}

	store := NewStore(slot, &mockVerifier{}, nil, "/login")
	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, bound := sess.Identity()
	if !bound {
		t.Fatal("expected restored session to carry an identity")
	}
	if id.Email != "alice@example.com" || id.DisplayName != "Alice" {
		t.Errorf("restored identity mismatch: %+v", id)
	}
}

func TestRestore_CorruptRecordSelfHeals(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	if err := slot.Write(ctx, []byte("{not json")); err != nil {
		t.Fatalf("seeding slot: %v", err)
	}

	store := NewStore(slot, &mockVerifier{}, nil, "/login")
	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("corruption must not fail startup: %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("a corrupt record must not resurrect a session")
	}

	// The corrupt record must have been cleared, not left to fail again.
	if _, err := slot.Read(ctx); err != ErrSlotEmpty {
		t.Errorf("expected corrupt record cleared, got %v", err)
	}
}

func TestRestore_RecordWithoutEmailIsCorrupt(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	// Valid JSON, but not a usable identity.
	if err := slot.Write(ctx, []byte(`{"display_name":"Alice"}`)); err != nil {
		t.Fatalf("seeding slot: %v", err)
	}

	store := NewStore(slot, &mockVerifier{}, nil, "/login")
	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("an identity without an email must be treated as corrupt")
	}
	if _, err := slot.Read(ctx); err != ErrSlotEmpty {
		t.Errorf("expected record cleared, got %v", err)
	}
}

func TestRestore_SlotReadFault(t *testing.T) {
	slot := &faultySlot{
		inner:   NewMemorySlot(),
		readErr: errors.New("redis connection refused"),
	}
	store := NewStore(slot, &mockVerifier{}, nil, "/login")

	sess, err := store.Restore(context.Background())
	if err == nil {
		t.Error("expected an infrastructure fault to be surfaced")
	}
	if sess.IsAuthenticated() {
		t.Error("a failed restore must leave the session unauthenticated")
	}
}
