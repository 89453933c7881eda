// Package realtime pushes notification messages to a user's live websocket
// sessions. Delivery is best effort: messages for users without a session,
// or for sessions whose buffer is full, are not retried. The durable
// notification history is the record for offline users.
package realtime
