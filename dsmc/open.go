package dsmc

// Open loads LibraryName and creates a device object through its factory.
// At most one object should be opened per process; the library keeps
// process-wide state.
//
// Example:
//
//	obj, err := dsmc.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obj.Release()
func Open() (Object, error) {
	return OpenLibrary(LibraryName)
}
