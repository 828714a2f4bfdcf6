// Package radio simulates the addressed packet radio a funkboot device
// listens on.
//
// An Air connects device-side Nodes, which implement bootloader.Transport,
// and host-side Endpoints. A Node behaves like the single-buffer radio
// driver of the reference board: one transmit slot, a short receive queue,
// and transmissions that wait until the channel has been quiet for the
// number of ticks passed to Tick. Packet loss can be injected with WithLoss
// to exercise retransmissions.
//
// Example:
//
//	air := radio.NewAir(radio.WithLoss(radio.DropEvery(5)))
//	node := air.Node(0x11)
//	host := air.Endpoint(0x01)
//
//	bl := bootloader.New(node, flash, eeprom)
//	client := hostpkg.New(host, node.Address())
package radio
