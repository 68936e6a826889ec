package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moffa90/go-dsmc/dsmc"
	"github.com/moffa90/go-dsmc/nand"
)

// testApp returns an app whose --simulate device is sim.
func testApp(sim *dsmc.Simulator) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.simulator = func(g nand.Geometry) dsmc.Object { return sim }
	a.openLibrary = func(name string) (dsmc.Object, error) {
		return nil, &dsmc.LoadError{Library: name, Step: "load library", Err: dsmc.ErrUnsupportedPlatform}
	}
	return a, &stdout, &stderr
}

func TestDigest(t *testing.T) {
	sim := dsmc.NewSimulator()
	a, stdout, stderr := testApp(sim)

	code := a.execute(context.Background(), []string{"--simulate", "digest"})
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	out := stdout.String()
	if !strings.Contains(out, "dsmcdll version: 3\n") {
		t.Errorf("missing version line in %q", out)
	}
	if !strings.Contains(out, "Expected 1SMCBL digest: a0a1a2a3a4a5a6a7a8a9aaabacadaeaf\n") {
		t.Errorf("missing digest line in %q", out)
	}
	if sim.Releases() != 1 {
		t.Errorf("Releases() = %d, want 1", sim.Releases())
	}
}

func TestRead(t *testing.T) {
	sim := dsmc.NewSimulator()
	a, _, stderr := testApp(sim)
	path := filepath.Join(t.TempDir(), "nand.bin")

	code := a.execute(context.Background(), []string{"--simulate", "read", "-f", path, "-o", "4096", "-l", "5000"})
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 10*512 {
		t.Errorf("file size = %d, want %d", len(data), 10*512)
	}
	if !bytes.Equal(data, bytes.Repeat([]byte{0xFF}, len(data))) {
		t.Error("erased sectors should read back as 0xFF")
	}

	transfers := sim.Transfers()
	if len(transfers) != 2 || transfers[0].StartSector != 8 || transfers[1].SectorCount != 2 {
		t.Errorf("transfers = %+v", transfers)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "image.bin")
	if err := os.WriteFile(image, []byte("bootloader"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("padded", func(t *testing.T) {
		sim := dsmc.NewSimulator()
		a, _, stderr := testApp(sim)

		code := a.execute(context.Background(), []string{"--simulate", "-s", "write", "-f", image, "-o", "1024", "--pad"})
		if code != exitOK {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr)
		}

		sector := sim.Sector(2)
		if !bytes.HasPrefix(sector, []byte("bootloader")) {
			t.Errorf("sector 2 = %q...", sector[:16])
		}
		if !sim.SafeTransferMode() {
			t.Error("safe transfer mode was not enabled")
		}
	})

	t.Run("unaligned length", func(t *testing.T) {
		sim := dsmc.NewSimulator()
		a, _, stderr := testApp(sim)

		code := a.execute(context.Background(), []string{"--simulate", "write", "-f", image})
		if code != exitUsage {
			t.Fatalf("exit code = %d, want %d", code, exitUsage)
		}
		if !strings.Contains(stderr.String(), "--pad") {
			t.Errorf("stderr %q does not suggest --pad", stderr)
		}
		if sim.TotalCalls() != 0 {
			t.Errorf("native calls = %d, want 0", sim.TotalCalls())
		}
	})

	t.Run("unaligned offset", func(t *testing.T) {
		sim := dsmc.NewSimulator()
		a, _, _ := testApp(sim)

		code := a.execute(context.Background(), []string{"--simulate", "write", "-f", image, "-o", "100", "--pad"})
		if code != exitUsage {
			t.Fatalf("exit code = %d, want %d", code, exitUsage)
		}
	})
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--simulate", "digest", "--bogus"}, "unknown flag"},
		{"missing file", []string{"--simulate", "read"}, "--file is required"},
		{"read past end", []string{"--simulate", "read", "-f", "x", "-o", "5301600256", "-l", "1"}, "exceeds NAND size"},
		{"bad log format", []string{"--simulate", "--log-format", "xml", "digest"}, "invalid --log-format"},
		{"profile without config", []string{"--simulate", "--profile", "xbox", "digest"}, "requires --config"},
		{"negative port", []string{"--simulate", "--port", "-1", "digest"}, "port must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := dsmc.NewSimulator()
			a, _, stderr := testApp(sim)

			code := a.execute(context.Background(), tt.args)
			if code != exitUsage {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, exitUsage, stderr)
			}
			if !strings.HasPrefix(stderr.String(), "Error: ") || !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want Error: ...%s", stderr, tt.want)
			}
			if sim.TotalCalls() != 0 {
				t.Errorf("native calls = %d, want 0", sim.TotalCalls())
			}
		})
	}
}

func TestFailures(t *testing.T) {
	t.Run("library not loaded", func(t *testing.T) {
		a, _, stderr := testApp(dsmc.NewSimulator())

		code := a.execute(context.Background(), []string{"digest"})
		if code != exitFailure {
			t.Fatalf("exit code = %d, want %d", code, exitFailure)
		}
		if !strings.HasPrefix(stderr.String(), "[ERR] ") {
			t.Errorf("stderr = %q, want [ERR] prefix", stderr)
		}
		if !strings.Contains(stderr.String(), "drivers installed") {
			t.Errorf("stderr = %q, want driver hint", stderr)
		}
	})

	t.Run("native read failure", func(t *testing.T) {
		sim := dsmc.NewSimulator()
		sim.FailAfter(dsmc.EntryBlockRead, 1, dsmc.StatusFail)
		a, _, stderr := testApp(sim)
		path := filepath.Join(t.TempDir(), "nand.bin")

		code := a.execute(context.Background(), []string{"--simulate", "read", "-f", path, "-l", "65536"})
		if code != exitFailure {
			t.Fatalf("exit code = %d, want %d", code, exitFailure)
		}
		if !strings.Contains(stderr.String(), "block read failed") {
			t.Errorf("stderr = %q", stderr)
		}
		if sim.Releases() != 1 || sim.Calls(dsmc.EntryEndProgramming) != 1 {
			t.Errorf("releases = %d, end calls = %d, want 1 and 1",
				sim.Releases(), sim.Calls(dsmc.EntryEndProgramming))
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		sim := dsmc.NewSimulator()
		a, _, _ := testApp(sim)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		code := a.execute(ctx, []string{"--simulate", "digest"})
		if code != exitFailure {
			t.Fatalf("exit code = %d, want %d", code, exitFailure)
		}
	})
}

func TestConfigProfile(t *testing.T) {
	config := filepath.Join(t.TempDir(), "dsmc.yaml")
	content := "default: small\nprofiles:\n  small:\n    port: 3\n    geometry: {total_sectors: 64}\n"
	if err := os.WriteFile(config, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("profile values", func(t *testing.T) {
		sim := dsmc.NewSimulator(dsmc.WithSectors(512, 64))
		var got nand.Geometry
		a, _, stderr := testApp(sim)
		a.simulator = func(g nand.Geometry) dsmc.Object {
			got = g
			return sim
		}

		code := a.execute(context.Background(), []string{"--simulate", "--config", config, "digest"})
		if code != exitOK {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr)
		}
		if sim.Port() != 3 {
			t.Errorf("Port() = %d, want 3", sim.Port())
		}
		if got.TotalSectors != 64 {
			t.Errorf("simulated geometry = %+v", got)
		}
	})

	t.Run("flag overrides port", func(t *testing.T) {
		sim := dsmc.NewSimulator(dsmc.WithSectors(512, 64))
		a, _, stderr := testApp(sim)

		code := a.execute(context.Background(), []string{"--simulate", "--config", config, "--port", "1", "digest"})
		if code != exitOK {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr)
		}
		if sim.Port() != 1 {
			t.Errorf("Port() = %d, want 1", sim.Port())
		}
	})

	t.Run("range checked against profile", func(t *testing.T) {
		sim := dsmc.NewSimulator(dsmc.WithSectors(512, 64))
		a, _, _ := testApp(sim)

		code := a.execute(context.Background(), []string{"--simulate", "--config", config, "read", "-f", "x", "-o", "32768"})
		if code != exitUsage {
			t.Fatalf("exit code = %d, want %d", code, exitUsage)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		a, _, stderr := testApp(dsmc.NewSimulator())

		code := a.execute(context.Background(), []string{"--simulate", "--config", config, "--profile", "big", "digest"})
		if code != exitUsage {
			t.Fatalf("exit code = %d, want %d (stderr %q)", code, exitUsage, stderr)
		}
	})
}

func TestVerboseTracesNativeCalls(t *testing.T) {
	sim := dsmc.NewSimulator()
	a, _, stderr := testApp(sim)

	code := a.execute(context.Background(), []string{"--simulate", "-v", "--log-format", "json", "digest"})
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stderr.String(), `"msg":"dsmc GetExpDigest1SMCBL"`) {
		t.Errorf("stderr does not trace the digest call: %s", stderr)
	}
}

func TestUsageErrorUnwrap(t *testing.T) {
	inner := errors.New("bad flag")
	err := &usageError{err: inner}
	if !errors.Is(err, inner) {
		t.Error("usageError does not unwrap")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format  string
		path    string
		want    string
		wantErr bool
	}{
		{formatAuto, "nand.bin", formatBin, false},
		{formatAuto, "image.HEX", formatHex, false},
		{formatAuto, "image.ihex", formatHex, false},
		{"", "dump", formatBin, false},
		{formatHex, "dump.bin", formatHex, false},
		{"srec", "image.srec", "", true},
	}

	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q, %q) error = %v, wantErr %v", tt.format, tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.format, tt.path, got, tt.want)
		}
	}
}

func TestWriteIntelHex(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5A, 0xA5}, 256)
	path := filepath.Join(t.TempDir(), "image.hex")

	var buf bytes.Buffer
	if err := saveHex(&buf, 0x400, payload); err != nil {
		t.Fatalf("saveHex() error: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	sim := dsmc.NewSimulator()
	a, _, stderr := testApp(sim)

	code := a.execute(context.Background(), []string{"--simulate", "write", "-f", path, "-o", "512"})
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	// record address 0x400 plus --offset 512
	if !bytes.Equal(sim.Sector(3), payload) {
		t.Error("sector 3 does not hold the Intel HEX payload")
	}
	if sim.Sector(2) != nil {
		t.Error("sector 2 was written")
	}
}

func TestReadIntelHex(t *testing.T) {
	sim := dsmc.NewSimulator()
	a, _, stderr := testApp(sim)
	path := filepath.Join(t.TempDir(), "dump.hex")

	code := a.execute(context.Background(), []string{"--simulate", "read", "-f", path, "-o", "1024", "-l", "1024"})
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	data, base, err := loadImage(path, formatHex)
	if err != nil {
		t.Fatalf("loadImage() error: %v", err)
	}
	if base != 1024 {
		t.Errorf("base = %d, want 1024", base)
	}
	if !bytes.Equal(data, bytes.Repeat([]byte{0xFF}, 1024)) {
		t.Errorf("decoded %d bytes, want 1024 erased bytes", len(data))
	}
}

func TestReadIntelHexLimit(t *testing.T) {
	sim := dsmc.NewSimulator()
	a, _, _ := testApp(sim)

	code := a.execute(context.Background(), []string{"--simulate", "read", "-f", "dump.hex", "-o", "4294966784", "-l", "1024"})
	if code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if sim.TotalCalls() != 0 {
		t.Errorf("native calls = %d, want 0", sim.TotalCalls())
	}
}

func TestProgressFlag(t *testing.T) {
	image := filepath.Join(t.TempDir(), "image.bin")
	if err := os.WriteFile(image, make([]byte, 16*512), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, show := range []bool{false, true} {
		a, _, stderr := testApp(dsmc.NewSimulator())
		args := []string{"--simulate", "write", "-f", image}
		if show {
			args = append([]string{"--progress"}, args...)
		}

		if code := a.execute(context.Background(), args); code != exitOK {
			t.Fatalf("progress=%v: exit code = %d, stderr: %s", show, code, stderr)
		}
		if got := stderr.Len() > 0; got != show {
			t.Errorf("progress=%v: stderr output = %q", show, stderr)
		}
	}
}
