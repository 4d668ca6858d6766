// Package notifier formats the slot summary and pushes it to the operator.
//
// # Providers
//
// Delivery is delegated to a Sender. Three providers are built in:
//   - pushover: user key + app token pair (form POST)
//   - prowl: single API key (form POST)
//   - telegram: bot token + chat id (Bot API via telebot)
//
// # Failure model
//
// Notify never returns an error to the caller: a push is either delivered
// (true) or not (false). The caller keeps its dedup state unchanged on false
// so the same content is pushed again on the next tick.
package notifier
