// Package container provides the IoC (Inversion of Control) container:
// a registry of component definitions, a resolver that turns them into a
// live object graph, and a concurrent store for the resulting instances.
//
// # Overview
//
// Components are described by a Definition: a type identity, a display
// name, a Scope and a Factory that declares the types it depends on. There
// is no reflection-based constructor injection and no link-time discovery;
// definitions are registered explicitly, usually by service providers, and
// resolved in one pass by Initialize.
//
// # Container Lifecycle
//
//  1. Create: reg := container.NewRegistry(); c := container.New(container.WithRegistry(reg))
//  2. Register providers: providers := container.NewProviderRegistry(c); providers.Register(&MyProvider{})
//  3. Initialize: c.Initialize()   builds every singleton, dependencies first
//  4. Boot: providers.Boot()       safe to resolve everything after this
//
// # Definitions
//
//	// Singleton: created once by Initialize and kept in the store
//	container.Singleton(reg, func(d container.Dependencies) (*Cache, error) {
//	    cfg, err := container.Dep[*config.Manager](d)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewCache(cfg), nil
//	}, container.KeyOf[*config.Manager]())
//
//	// Prototype: a new instance per resolution, never stored
//	container.Prototype(reg, func(d container.Dependencies) (*Request, error) {
//	    return &Request{}, nil
//	})
//
//	// Pre-built value: Initialize never re-creates it
//	c.Register(myConfig)
//
// # Resolving
//
//	// Stored instance, never panics; ok is false on absence or type mismatch
//	cache, ok := container.Get[*Cache](c)
//
//	// Stored singleton or a fresh prototype
//	req, err := container.Resolve[*Request](c)
//
// # Qualified slots
//
//	c.Qualify("replica").Give(replicaDB)
//	db, ok := container.GetQualified[*sql.DB](c, "replica")
//
// # Errors
//
// Every failure is a *Error whose Kind is one of NotFound,
// CircularDependency, CreationFailed, TypeCastFailed, Configuration or
// Other. Match with errors.Is against ErrNotFound, ErrCircularDependency and
// friends. Initialize stops at the first error and keeps the singletons it
// had already stored.
package container
