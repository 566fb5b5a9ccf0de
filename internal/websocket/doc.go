// Package websocket serves live dashboard sessions over gorilla/websocket.
//
// A client connects to /ws and receives a connection frame holding the
// filter controls. Every filter frame it sends afterwards,
//
//	{"type":"filter","year_min":2008,"year_max":2014,"sectors":["Software"]}
//
// is answered by exactly one dashboard or error frame carrying the same
// sequence number, in arrival order. Omitted filter fields keep the
// dashboard defaults.
//
// The Hub tracks open sessions for readiness reporting and closes them on
// shutdown.
package websocket
