// Package server runs the accept loop that feeds connections to the worker pool.
//
// # Basic Usage
//
//	srv := server.New(server.DefaultConfig())
//	go func() {
//	    <-ctx.Done()
//	    srv.Shutdown()
//	}()
//	if err := srv.ListenAndServe(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Accept Loop
//
// The loop has two states, accepting and stopped. Every iteration first
// checks the shutdown flag, then waits for a connection for at most one poll
// interval. An accepted connection becomes one job on the pool; an expired
// wait just starts the next iteration; any other accept error stops the loop
// and is returned.
//
// # Shutdown
//
// Shutdown only sets a flag, so it takes effect within one poll interval.
// Before ListenAndServe returns, the listener is closed and the pool is
// stopped, which waits for every connection job already handed to a worker.
// Delayed /async tasks are not waited for.
package server
