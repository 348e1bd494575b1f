package pdu

import "context"

// Client is the query and command surface of a PDU management card.
// Every method returns an error wrapping ErrDevice on network or protocol
// failure.
type Client interface {
	// Receptacles lists every receptacle the card knows about, in the
	// card's own order.
	Receptacles(ctx context.Context) ([]Address, error)

	PDUInfo(ctx context.Context, pdu uint8) (PDUInfo, error)
	BranchInfo(ctx context.Context, pdu, branch uint8) (BranchInfo, error)
	ReceptacleInfo(ctx context.Context, addr Address) (ReceptacleInfo, error)

	ReceptacleCommand(ctx context.Context, addr Address, cmd ReceptacleCommand) error
	ReceptacleSettings(ctx context.Context, addr Address) (ReceptacleSettings, error)
	SetReceptacleSettings(ctx context.Context, addr Address, settings ReceptacleSettings) error

	// Events returns the currently active event list.
	Events(ctx context.Context) ([]Event, error)
}
