// Package bootstrap runs a finite task inside a component lifecycle:
// validate config, initialize logging, start components, run the task,
// stop components in reverse order. SIGINT and SIGTERM cancel the task.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(registry)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return probe(ctx, registry)
//	})
package bootstrap
