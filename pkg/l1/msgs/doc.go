// Package msgs provides L1 protocol support and all message schemas.
package msgs

// L1 protocol is communicated between the Bean controller (beand) and
// its clients (beancli or any L2 program), and uses board-agnostic
// primitives.
//
// Producer: beand
// Consumer: L2 clients
