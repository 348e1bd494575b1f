package mpx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Receptacles lists every receptacle on the card.
func (c *Client) Receptacles(ctx context.Context) ([]pdu.Address, error) {
	var out []pdu.Address
	if err := c.do(ctx, http.MethodGet, "/api/receptacles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PDUInfo fetches the record of one power entry module.
func (c *Client) PDUInfo(ctx context.Context, p uint8) (pdu.PDUInfo, error) {
	var out pdu.PDUInfo
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pdu/%d", p), nil, &out)
	return out, err
}

// BranchInfo fetches the record of one branch.
func (c *Client) BranchInfo(ctx context.Context, p, branch uint8) (pdu.BranchInfo, error) {
	var out pdu.BranchInfo
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pdu/%d/branch/%d", p, branch), nil, &out)
	return out, err
}

// ReceptacleInfo fetches the record of one receptacle.
func (c *Client) ReceptacleInfo(ctx context.Context, addr pdu.Address) (pdu.ReceptacleInfo, error) {
	var out pdu.ReceptacleInfo
	err := c.do(ctx, http.MethodGet, receptaclePath(addr), nil, &out)
	return out, err
}

// ReceptacleCommand switches or identifies a receptacle.
func (c *Client) ReceptacleCommand(ctx context.Context, addr pdu.Address, cmd pdu.ReceptacleCommand) error {
	body := struct {
		Command string `json:"command"`
	}{Command: cmd.String()}
	return c.do(ctx, http.MethodPost, receptaclePath(addr)+"/control", body, nil)
}

// ReceptacleSettings fetches the current settings of a receptacle.
func (c *Client) ReceptacleSettings(ctx context.Context, addr pdu.Address) (pdu.ReceptacleSettings, error) {
	var out pdu.ReceptacleSettings
	err := c.do(ctx, http.MethodGet, receptaclePath(addr)+"/settings", nil, &out)
	return out, err
}

// SetReceptacleSettings replaces the settings of a receptacle.
func (c *Client) SetReceptacleSettings(ctx context.Context, addr pdu.Address, settings pdu.ReceptacleSettings) error {
	return c.do(ctx, http.MethodPut, receptaclePath(addr)+"/settings", settings, nil)
}

// Events returns the active event list.
func (c *Client) Events(ctx context.Context) ([]pdu.Event, error) {
	var out []pdu.Event
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func receptaclePath(addr pdu.Address) string {
	return fmt.Sprintf("/api/pdu/%d/branch/%d/receptacle/%d", addr.PDU, addr.Branch, addr.Receptacle)
}

var _ pdu.Client = (*Client)(nil)
