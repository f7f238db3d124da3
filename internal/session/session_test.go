package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/store"
)

type fakeVerifier struct {
	admin models.Admin
	err   error
	calls int
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (models.Admin, error) {
	f.calls++
	return f.admin, f.err
}

func TestContextLoadsFromStore(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(store.KeyAuthToken, "tok"))
	require.NoError(t, s.Set(store.KeyAdminData, `{"username":"root"}`))

	c := NewContext(s)
	assert.Equal(t, "tok", c.Token())
	require.NotNil(t, c.Admin())
	assert.Equal(t, "root", c.Admin().Username)
}

func TestContextSaveAndClear(t *testing.T) {
	s := store.NewMemoryStore()
	c := NewContext(s)
	assert.False(t, c.HasToken())

	require.NoError(t, c.Save("tok", models.Admin{Username: "admin"}))
	v, ok := s.Get(store.KeyAuthToken)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, c.Clear())
	assert.False(t, c.HasToken())
	assert.Nil(t, c.Admin())
	_, ok = s.Get(store.KeyAdminData)
	assert.False(t, ok)
}

func TestGateWithoutTokenSkipsNetwork(t *testing.T) {
	gate := NewGate(NewContext(store.NewMemoryStore()))
	assert.Equal(t, Unchecked, gate.State())

	v := &fakeVerifier{}
	var seen []State
	gate.OnChange(func(s State) { seen = append(seen, s) })

	assert.Equal(t, Unauthenticated, gate.Check(context.Background(), v))
	assert.Equal(t, 0, v.calls)
	assert.Equal(t, []State{Unauthenticated}, seen)
}

func TestGateVerifySuccess(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(store.KeyAuthToken, "tok"))
	sess := NewContext(s)
	gate := NewGate(sess)

	var seen []State
	gate.OnChange(func(s State) { seen = append(seen, s) })

	v := &fakeVerifier{admin: models.Admin{Username: "boss"}}
	assert.Equal(t, Authenticated, gate.Check(context.Background(), v))
	assert.Equal(t, []State{Checking, Authenticated}, seen)
	assert.Equal(t, "boss", sess.Admin().Username)
	assert.True(t, gate.State().Resolved())
}

func TestGateVerifyFailureClearsCredentials(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(store.KeyAuthToken, "expired"))
	require.NoError(t, s.Set(store.KeyAdminData, `{"username":"old"}`))
	sess := NewContext(s)
	gate := NewGate(sess)

	v := &fakeVerifier{err: errors.New("connection refused")}
	assert.Equal(t, Unauthenticated, gate.Check(context.Background(), v))
	assert.Equal(t, 1, v.calls)
	assert.False(t, sess.HasToken())
	assert.Nil(t, sess.Admin())
	_, ok := s.Get(store.KeyAuthToken)
	assert.False(t, ok)
}

func TestGateSignOut(t *testing.T) {
	s := store.NewMemoryStore()
	sess := NewContext(s)
	require.NoError(t, sess.Save("tok", models.Admin{Username: "a"}))

	gate := NewGate(sess)
	gate.SignedIn()
	assert.Equal(t, Authenticated, gate.State())

	gate.SignOut()
	assert.Equal(t, Unauthenticated, gate.State())
	assert.False(t, sess.HasToken())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "checking", Checking.String())
	assert.False(t, Checking.Resolved())
	assert.False(t, Unchecked.Resolved())
}

func TestPreferences(t *testing.T) {
	s := store.NewMemoryStore()
	p := NewPreferences(s)
	assert.Equal(t, ThemeLight, p.ThemeMode())

	mode, err := p.ToggleThemeMode()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, mode)

	reloaded := NewPreferences(s)
	assert.Equal(t, ThemeDark, reloaded.ThemeMode())

	require.NoError(t, s.Set(store.KeyThemeMode, "purple"))
	assert.Equal(t, ThemeLight, NewPreferences(s).ThemeMode())
}
