package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_StartsUninitialized(t *testing.T) {
	s := New()
	assert.Equal(t, Uninitialized, s.Phase())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, "", s.Email())
	assert.True(t, s.SignedInAt().IsZero())
}

func TestState_Lifecycle(t *testing.T) {
	s := New()
	u := User{ID: 7, Name: "Ada", Email: "a@b.com"}

	s.SignIn(u)
	assert.Equal(t, Authenticated, s.Phase())
	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, u, got)
	assert.Equal(t, "a@b.com", s.Email())
	assert.False(t, s.SignedInAt().IsZero())

	out, ok := s.SignOut()
	require.True(t, ok)
	assert.Equal(t, u, out)
	assert.Equal(t, Uninitialized, s.Phase())
	assert.True(t, s.SignedInAt().IsZero())
}

func TestState_SignOutWhenEmpty(t *testing.T) {
	s := New()
	_, ok := s.SignOut()
	assert.False(t, ok)
}

func TestState_Require(t *testing.T) {
	s := New()
	_, err := s.Require()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	s.SignIn(User{Email: "x@y.z"})
	u, err := s.Require()
	require.NoError(t, err)
	assert.Equal(t, "x@y.z", u.Email)
}

func TestState_SignInReplaces(t *testing.T) {
	s := New()
	s.SignIn(User{Email: "first@x.io"})
	s.SignIn(User{Email: "second@x.io"})
	assert.Equal(t, "second@x.io", s.Email())
}

func TestState_CurrentReturnsCopy(t *testing.T) {
	s := New()
	s.SignIn(User{Email: "a@b.com"})
	u, _ := s.Current()
	u.Email = "changed"
	assert.Equal(t, "a@b.com", s.Email())
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SignIn(User{Email: "a@b.com"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Email()
			_ = s.Phase()
		}()
	}
	wg.Wait()
	assert.Equal(t, "a@b.com", s.Email())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
