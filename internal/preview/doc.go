// Package preview owns the single audible sound preview of a process.
//
// A Controller drives an injected Player through the Idle -> Loading -> Playing -> Idle
// lifecycle. Starting a preview while another is loading or playing fully stops and
// releases the previous one before the next source is loaded, so at most one player
// handle is held at any time. Natural completion, explicit stop and replacement all
// funnel through the same mutual-exclusion region; a completion that arrives for a
// session that is no longer current is ignored.
package preview
