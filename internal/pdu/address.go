package pdu

import "fmt"

// Address identifies a point in the PDU hierarchy.
type Address struct {
	PDU        uint8 `json:"pdu"`
	Branch     uint8 `json:"branch"`
	Receptacle uint8 `json:"receptacle"`
}

// PDUAddress returns the PDU-level address containing a.
func (a Address) PDUAddress() Address {
	return Address{PDU: a.PDU}
}

// BranchAddress returns the branch-level address containing a.
func (a Address) BranchAddress() Address {
	return Address{PDU: a.PDU, Branch: a.Branch}
}

// IsZero reports whether a is the 0/0/0 address used by maintenance work.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Path returns the topic path segment for the address, e.g.
// "/pdu-1/branch-2/receptacle-3". Trailing zero levels are omitted.
func (a Address) Path() string {
	switch {
	case a.Branch == 0:
		return fmt.Sprintf("/pdu-%d", a.PDU)
	case a.Receptacle == 0:
		return fmt.Sprintf("/pdu-%d/branch-%d", a.PDU, a.Branch)
	default:
		return fmt.Sprintf("/pdu-%d/branch-%d/receptacle-%d", a.PDU, a.Branch, a.Receptacle)
	}
}

// String returns the dotted form used in logs, e.g. "1.2.3".
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d", a.PDU, a.Branch, a.Receptacle)
}
