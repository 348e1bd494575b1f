// Package mpx implements pdu.Client against the JSON API of a Liebert MPX
// rack PDU management card.
//
// The card's web server is fragile with keep-alive, so every request is sent
// with Connection: close. Requests can optionally be throttled with a token
// bucket so a fast poll loop cannot overwhelm the card.
package mpx
