// Package app wires a consuming application together from its config
// file: logger, discovery backend, connector, and one lazy consumer per
// declared service, all lifecycle-managed through a component registry.
//
// Typical usage:
//
//	var file config.File
//	if err := config.Load("billing-worker", &file); err != nil {
//	    log.Fatal(err)
//	}
//	a, err := app.New("billing-worker", &file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a.Run(context.Background())
package app
