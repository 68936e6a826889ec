// Command dsmcflash reads and writes NAND flash through the DSMC programmer
// library and prints the expected first-stage bootloader digest.
//
// Usage:
//
//	dsmcflash read  -f nand.bin [-o offset] [-l length]
//	dsmcflash write -f image.bin [-o offset] [--pad]
//	dsmcflash digest
//
// Global flags select safe transfer mode (-s), the programmer port, a device
// profile file (--config, --profile) and the in-memory simulator (--simulate).
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newApp(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
