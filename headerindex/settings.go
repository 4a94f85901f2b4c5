package headerindex

// Settings controls a single Load run. It is passed explicitly so that the
// indexer never consults ambient editor or process state.
type Settings struct {
	// SelectConfigIndex forces a configuration entry. Nil or negative means unset.
	SelectConfigIndex *int
	// OnlyWorkspaceHeaders drops search paths that do not reference the workspace root.
	OnlyWorkspaceHeaders bool
	WorkspaceRoots       []string
	// HeaderExtensions defaults to DefaultHeaderExtensions when empty.
	HeaderExtensions []string
}

func (s Settings) configOverride() *int {
	if s.SelectConfigIndex == nil || *s.SelectConfigIndex < 0 {
		return nil
	}
	return s.SelectConfigIndex
}

func (s Settings) headerExtensions() []string {
	if len(s.HeaderExtensions) == 0 {
		return DefaultHeaderExtensions
	}
	return s.HeaderExtensions
}
