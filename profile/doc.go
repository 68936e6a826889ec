// Package profile loads device profiles for the NAND programmer.
//
// A profile file names one or more device models and, for each, the vendor
// library to load, the programmer port, safe transfer mode and the NAND
// geometry:
//
//	default: xbox
//	profiles:
//	  xbox:
//	    library: dsmcdll.dll
//	    port: 0
//	    safe: false
//	    geometry: {block_size: 512, chunk_sectors: 8, capacity_mib: 5056}
//	  dev-board:
//	    port: 1
//	    geometry: {total_sectors: 65536}
//
// Omitted fields take the values of Builtin. Unknown keys are an error.
package profile
