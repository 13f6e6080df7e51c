// Package shutdown coordinates graceful process termination.
//
//	h := shutdown.NewHandler(15*time.Second, logger)
//	h.OnShutdown("store", store.Close)
//	h.OnShutdown("http", srv.Shutdown)
//	return h.Wait(ctx)
package shutdown
