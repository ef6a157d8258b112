// Package event defines the topics published on the process-local event bus.
// Stores publish after every durable write; the websocket layer publishes
// node events; the sync engine and HTTP consumers subscribe.
package event

import "github.com/asaskevich/EventBus"

const (
	// Store topics. Payload: *model.Wallet / *model.Contact (a copy, safe to
	// hold), except the removed topics which carry the removed ID.
	TopicWalletAdded    = "wallet:added"
	TopicWalletUpdated  = "wallet:updated"
	TopicWalletRemoved  = "wallet:removed"
	TopicContactAdded   = "contact:added"
	TopicContactUpdated = "contact:updated"
	TopicContactRemoved = "contact:removed"

	// Node topics, published by the websocket layer. Payload: the
	// corresponding model type.
	TopicBlock       = "node:block"
	TopicTransaction = "node:transaction"
	TopicName        = "node:name"
	TopicMOTD        = "node:motd"
)

// New returns a fresh bus. A thin wrapper so callers do not import the
// EventBus package directly everywhere.
func New() EventBus.Bus {
	return EventBus.New()
}
