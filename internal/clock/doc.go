// Package clock provides the cooperative timer queue that drives toast
// animations. Callbacks run one at a time in deadline order, ties in
// registration order, on either a real-time Loop or a Manual clock.
package clock
