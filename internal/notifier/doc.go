// Package notifier delivers status-change messages to the single configured chat.
//
// # Transport
//
// Delivery goes through a transport.Sender (the Telegram adapter in production),
// throttled by a token bucket (telegram.rate_per_sec).
//
// # Failures
//
// Every failed delivery is returned as a *DeliveryError. The caller decides
// whether that is fatal; the poll loop only logs it.
package notifier
