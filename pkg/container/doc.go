// Package container provides a small dependency container that maps service
// names to factories.
//
// Two lifetimes are supported. A singleton binding runs its factory on the
// first resolution and returns the cached instance afterwards. A transient
// binding runs its factory on every resolution.
//
//	c := container.New()
//	c.Singleton("db", func(*container.Container) (any, error) {
//	    return sql.Open("pgx", dsn)
//	})
//	c.Bind("users", func(c *container.Container) (any, error) {
//	    db, err := container.Resolve[*sql.DB](c, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewUserService(db), nil
//	})
//
//	users := container.MustResolve[*UserService](c, "users")
//
// Registering a name that already exists replaces the binding and drops any
// cached singleton. Resolving an unknown name returns a [NotFoundError].
//
// Concurrent first resolutions of the same singleton share one factory call.
// A factory error is returned to every waiting caller and is not cached, so
// the next resolution retries.
//
// A factory that resolves a name already being built on its own call path,
// directly or through other bindings, gets a [*CycleError] instead of
// waiting on itself.
//
// [Container.Close] releases cached singletons that implement io.Closer or
// Shutdown(context.Context) error, newest first.
package container
