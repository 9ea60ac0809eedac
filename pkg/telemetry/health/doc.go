// Package health provides liveness, readiness and version endpoints for the
// paramengine query server.
//
// Liveness reports that the process is up. Readiness runs every registered
// check concurrently, each bounded by the checker's timeout, and answers 503
// when any check fails. The server registers a "repository" check that lists
// the rule-table source and a "warm" check that passes once the configured
// warm-up list has been compiled.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("repository", func(ctx context.Context) error {
//	    _, err := repo.List(ctx)
//	    return err
//	})
//	health.Register(mux, checker, health.VersionInfo{Version: "0.1.0"})
package health
