package message

// NetworkID, ClientID and ChannelID identify the network session, client
// connection and channel a message belongs to. They are opaque to this
// package: the session layer owns the objects and resolves the identifiers.
type (
	NetworkID string
	ClientID  string
	ChannelID string
)
