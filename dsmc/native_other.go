//go:build !windows

package dsmc

// OpenLibrary always fails outside Windows: the vendor ships the
// programming library as a DLL only. Use a Simulator for dry runs.
func OpenLibrary(name string) (Object, error) {
	return nil, &LoadError{Library: name, Step: "load library", Err: ErrUnsupportedPlatform}
}
