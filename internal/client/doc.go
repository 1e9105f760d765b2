// Package client implements the terminal-side streaming presenter.
//
// The server answers a chat turn with one complete JSON response; the
// Presenter replays that response as a stream of fixed-size chunks so the
// reply appears to type itself out. The state machine is
//
//	idle -> connecting -> streaming -> complete
//	                 \-> error       (request failed)
//	                  \-> cancelled  (Cancel or context cancellation)
//
// A new Send supersedes any in-flight send: the old attempt's context is
// cancelled and its remaining transitions are discarded, so callbacks only
// ever describe the latest attempt. Concatenating the emitted chunks of a
// completed stream yields the response text exactly; a cancelled stream
// leaves a strict prefix.
package client
