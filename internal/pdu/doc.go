// Package pdu defines the data model of a Liebert MPX power distribution unit
// as seen by the bridge: device addresses, the information records returned
// for each level of the PDU → branch → receptacle hierarchy, the event feed,
// and the Client interface implemented by concrete transports.
//
// Addresses use zero to mean "not this level": (1, 0, 0) is the PDU itself,
// (1, 2, 0) is branch 2 of PDU 1, and (1, 2, 3) is a single receptacle.
package pdu
