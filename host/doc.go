// Package host provides the programming side of the funkboot protocol.
//
// # Overview
//
// A Client sends requests to one device over a Link and waits for the
// matching response. Each request gets a new sequence number. When no
// response arrives in time the identical request is sent again; the device
// recognises the repetition and answers from its cache, so writes are never
// executed twice.
//
// On top of the single requests, Program writes a complete firmware image:
//   - Reading the chip descriptor and checking the signature
//   - Splitting the image into erase pages below the bootloader section
//   - Writing every page front to back in 32-byte chunks
//   - Reading every page back for verification
//   - Switching the device to the application
//
// # Basic Usage
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := host.New(link, 0x11)
//	if err := client.Program(context.Background(), img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// Track programming progress with a callback:
//
//	client := host.New(link, 0x11,
//	    host.WithProgressCallback(func(p host.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
//
// # Configuration Options
//
//	client := host.New(link, 0x11,
//	    host.WithLogger(myLogger),
//	    host.WithTimeout(500*time.Millisecond),
//	    host.WithRetries(10),
//	    host.WithExpectedSignature([3]byte{0x1E, 0x94, 0x06}),
//	    host.WithVerifyAfterProgram(true),
//	)
//
// # Error Handling
//
// The package provides structured error types:
//   - DeviceMismatchError: chip signature doesn't match
//   - VerifyError: read-back data differs from the image
//   - TimeoutError: no response after all retransmissions
//   - protocol.CauseError: the device answered with a failure cause
//
// # Links
//
// The package does not implement a radio. A Link sends and receives
// addressed packets; radio.Endpoint provides one for simulations and tests.
package host
