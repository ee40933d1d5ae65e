// Package services resolves handler dependencies.
//
// A Provider holds singletons and scoped constructors. Constructors are plain
// functions whose parameters are resolved from the scope:
//
//	p := services.NewProvider()
//	p.AddSingleton(store)
//	p.MustAddScoped(func(ctx context.Context, s weather.Store) *weather.Controller { ... })
//
// Each call opens a Scope with NewScope and must Close it. Scoped instances are
// created at most once per scope, and those implementing io.Closer are closed
// in reverse creation order when the scope ends.
package services
