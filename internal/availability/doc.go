// Package availability fetches the appointment calendar of the monitored
// JotForm form and reduces it to the slots that can actually be booked.
//
// The endpoint answers with a nested object keyed by date. Each date maps
// either to an object of time label -> availability flag, or to an empty
// list when the calendar has no data for that day. Both "no data" shapes
// normalize to "date absent".
package availability
