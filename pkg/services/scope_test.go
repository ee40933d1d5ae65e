package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock interface{ Now() string }

type fixedClock string

func (c fixedClock) Now() string { return string(c) }

type session struct {
	log    *[]string
	name   string
	closed bool
}

func (s *session) Close() error {
	*s.log = append(*s.log, "close "+s.name)
	s.closed = true
	return nil
}

type repo struct {
	session *session
}

func (r *repo) Close() error {
	*r.session.log = append(*r.session.log, "close repo")
	return errors.New("repo close failed")
}

type controller struct {
	Clock clock `inject:""`
	Repo  *repo `inject:""`
	plain int
}

func newProvider(log *[]string) *services.Provider {
	p := services.NewProvider()
	services.Singleton[clock](p, fixedClock("noon"))
	p.MustAddScoped(func(ctx context.Context) *session {
		name, _ := ctx.Value(nameKey{}).(string)
		return &session{log: log, name: name}
	})
	p.MustAddScoped(func(s *session) (*repo, error) {
		return &repo{session: s}, nil
	})
	return p
}

type nameKey struct{}

func TestScope_ResolvesOncePerScope(t *testing.T) {
	var log []string
	p := newProvider(&log)
	ctx := context.WithValue(context.Background(), nameKey{}, "a")

	scope := p.NewScope(ctx)
	first, err := services.Get[*repo](scope)
	require.NoError(t, err)
	second, err := services.Get[*repo](scope)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "a", first.session.name)

	other := p.NewScope(ctx)
	third, err := services.Get[*repo](other)
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	assert.Same(t, scope, must(services.Get[*services.Scope](scope)))
	assert.Equal(t, ctx, must(services.Get[context.Context](scope)))
	assert.Equal(t, "noon", must(services.Get[clock](scope)).Now())
}

func TestScope_CloseReverseOrderAndJoinErrors(t *testing.T) {
	var log []string
	scope := newProvider(&log).NewScope(context.WithValue(context.Background(), nameKey{}, "b"))

	_, err := services.Get[*repo](scope)
	require.NoError(t, err)

	err = scope.Close()
	assert.EqualError(t, err, "repo close failed")
	assert.Equal(t, []string{"close repo", "close b"}, log)

	require.NoError(t, scope.Close(), "second close is a no-op")
	_, err = services.Get[*repo](scope)
	assert.Error(t, err)
}

func TestScope_ConstructInjectsTaggedFields(t *testing.T) {
	var log []string
	scope := newProvider(&log).NewScope(context.Background())
	defer scope.Close()

	v, err := scope.Construct(reflect.TypeFor[*controller]())
	require.NoError(t, err)

	c := v.Interface().(*controller)
	assert.Equal(t, "noon", c.Clock.Now())
	require.NotNil(t, c.Repo)
	assert.Zero(t, c.plain)

	_, err = scope.Construct(reflect.TypeFor[int]())
	assert.ErrorIs(t, err, domain.ErrUnknownService)
}

func TestScope_Errors(t *testing.T) {
	p := services.NewProvider()
	scope := p.NewScope(context.Background())

	_, err := services.Get[*repo](scope)
	assert.ErrorIs(t, err, domain.ErrUnknownService)

	boom := errors.New("boom")
	p.MustAddScoped(func() (*session, error) { return nil, boom })
	_, err = services.Get[*session](scope)
	assert.ErrorIs(t, err, boom)

	type a struct{}
	type b struct{}
	p.MustAddScoped(func(*b) *a { return &a{} })
	p.MustAddScoped(func(*a) *b { return &b{} })
	_, err = services.Get[*a](scope)
	assert.ErrorIs(t, err, services.ErrCircularDependency)

	assert.Error(t, p.AddScoped(42))
	assert.Error(t, p.AddScoped(func() error { return nil }))
}

func TestProviderContext(t *testing.T) {
	_, ok := services.FromContext(context.Background())
	assert.False(t, ok)

	p := services.NewProvider()
	got, ok := services.FromContext(services.WithProvider(context.Background(), p))
	assert.True(t, ok)
	assert.Same(t, p, got)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
