// Package api serves the optional admin HTTP interface of the static server.
//
// Endpoints:
//
//	GET /api/status   pool state, request statistics, result count
//	GET /api/results  the job store snapshot
//	GET /metrics      Prometheus exposition
//	    /ws           websocket stream of server events and periodic status
//
// Every status interval the request statistics' window is reset, so "rps"
// and the latency percentiles cover the last interval while the totals and
// "overall_rps" cover the whole run.
//
// The admin server listens on its own address and never shares the raw
// request-line protocol of the static server.
package api
