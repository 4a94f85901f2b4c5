// Package lsp exposes the header index to editors over the Language Server
// Protocol.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/LegacyCodeHQ/includesense/fswatch"
	"github.com/LegacyCodeHQ/includesense/headerindex"
)

const serverName = "includesense"

// ReloadCommand is the workspace command that rebuilds the index.
const ReloadCommand = "includesense.reload"

// Options configures a Server.
type Options struct {
	// Settings are used until the client sends its own. Workspace roots sent
	// by the client replace Settings.WorkspaceRoots.
	Settings headerindex.Settings
	// Watch runs an fsnotify watcher over the workspace roots.
	Watch   bool
	Version string
	Logger  *slog.Logger
}

// Server adapts a headerindex.Indexer to LSP requests.
type Server struct {
	indexer *headerindex.Indexer
	logger  *slog.Logger
	docs    *documentStore
	handler protocol.Handler
	watch   bool
	version string

	mu           sync.Mutex
	settings     headerindex.Settings
	stopWatching context.CancelFunc

	// triggerReload schedules a reload; tests replace it to observe triggers.
	triggerReload func(reason string)
}

// New returns a Server backed by indexer.
func New(indexer *headerindex.Indexer, opts Options) *Server {
	s := &Server{
		indexer:  indexer,
		logger:   opts.Logger,
		docs:     newDocumentStore(),
		watch:    opts.Watch,
		version:  opts.Version,
		settings: opts.Settings,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.triggerReload = func(reason string) {
		go s.reloadAndLog(reason)
	}

	s.handler = protocol.Handler{
		Initialize:                         s.initialize,
		Initialized:                        s.initialized,
		Shutdown:                           s.shutdown,
		SetTrace:                           s.setTrace,
		TextDocumentDidOpen:                s.didOpen,
		TextDocumentDidChange:              s.didChange,
		TextDocumentDidClose:               s.didClose,
		TextDocumentCompletion:             s.completion,
		WorkspaceDidChangeWatchedFiles:     s.didChangeWatchedFiles,
		WorkspaceDidChangeConfiguration:    s.didChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: s.didChangeWorkspaceFolders,
		WorkspaceExecuteCommand:            s.executeCommand,
	}
	return s
}

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *Server) RunStdio() error {
	srv := server.NewServer(&s.handler, serverName, false)
	return srv.RunStdio()
}

// Reload rebuilds the index with the current settings.
func (s *Server) Reload(ctx context.Context) (*headerindex.Snapshot, error) {
	return s.indexer.Load(ctx, s.currentSettings())
}

func (s *Server) reloadAndLog(reason string) {
	snap, err := s.Reload(context.Background())
	if err != nil {
		s.logger.Warn("header index reload failed", "reason", reason, "error", err)
		return
	}
	s.logger.Info("header index reloaded", "reason", reason, "headers", len(snap.Entries))
}

func (s *Server) currentSettings() headerindex.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.settings
	settings.WorkspaceRoots = append([]string(nil), s.settings.WorkspaceRoots...)
	return settings
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	roots := workspaceRoots(params)

	clientSettings, err := decodeClientSettings(params.InitializationOptions)
	if err != nil {
		s.logger.Warn("ignoring invalid initialization options", "error", err)
	}

	s.mu.Lock()
	if len(roots) > 0 {
		s.settings.WorkspaceRoots = roots
	}
	s.settings = clientSettings.apply(s.settings)
	s.mu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"<", "\""},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{ReloadCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func workspaceRoots(params *protocol.InitializeParams) []string {
	var roots []string
	for _, folder := range params.WorkspaceFolders {
		if p, ok := uriToPath(folder.URI); ok {
			roots = append(roots, p)
		}
	}
	if len(roots) > 0 {
		return roots
	}
	if params.RootURI != nil {
		if p, ok := uriToPath(*params.RootURI); ok {
			return []string{p}
		}
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return []string{*params.RootPath}
	}
	return nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.triggerReload("initialized")
	if s.watch {
		s.restartWatcher()
	}
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.mu.Lock()
	if s.stopWatching != nil {
		s.stopWatching()
		s.stopWatching = nil
	}
	s.mu.Unlock()

	s.indexer.Stop()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.set(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			s.docs.set(params.TextDocument.URI, c.Text)
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				s.docs.set(params.TextDocument.URI, c.Text)
				continue
			}
			text, _ := s.docs.get(params.TextDocument.URI)
			s.docs.set(params.TextDocument.URI, applyRangeChange(text, *c.Range, c.Text))
		}
	}
	return nil
}

func (s *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.remove(params.TextDocument.URI)
	return nil
}

func (s *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	line, ok := s.docs.line(params.TextDocument.URI, int(params.Position.Line))
	if !ok {
		return nil, nil
	}

	cursor := offsetAt(line, protocol.Position{Character: params.Position.Character})
	labels := s.indexer.Complete(line, utf8.RuneCountInString(line[:cursor]))
	if labels == nil {
		return nil, nil
	}

	kind := protocol.CompletionItemKindFile
	items := make([]protocol.CompletionItem, 0, len(labels))
	for _, label := range labels {
		items = append(items, protocol.CompletionItem{
			Label: label,
			Kind:  &kind,
		})
	}
	return items, nil
}

func (s *Server) didChangeWatchedFiles(_ *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	classifier := fswatch.NewClassifier(s.currentSettings().HeaderExtensions)
	for _, event := range params.Changes {
		path, ok := uriToPath(event.URI)
		if !ok {
			continue
		}
		change, ok := changeFromFileEvent(event)
		if !ok {
			continue
		}
		if classifier.ShouldReload(path, change) {
			s.triggerReload(fmt.Sprintf("%s %s", path, change))
			return nil
		}
	}
	return nil
}

func changeFromFileEvent(event protocol.FileEvent) (fswatch.Change, bool) {
	switch event.Type {
	case protocol.FileChangeTypeCreated:
		return fswatch.Created, true
	case protocol.FileChangeTypeChanged:
		return fswatch.Changed, true
	case protocol.FileChangeTypeDeleted:
		return fswatch.Deleted, true
	default:
		return 0, false
	}
}

func (s *Server) didChangeConfiguration(_ *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	clientSettings, err := decodeClientSettings(params.Settings)
	if err != nil {
		s.logger.Warn("ignoring invalid configuration", "error", err)
		return nil
	}

	s.mu.Lock()
	s.settings = clientSettings.apply(s.settings)
	s.mu.Unlock()

	s.triggerReload("configuration changed")
	return nil
}

func (s *Server) didChangeWorkspaceFolders(_ *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	removed := make(map[string]bool)
	for _, folder := range params.Event.Removed {
		if p, ok := uriToPath(folder.URI); ok {
			removed[p] = true
		}
	}

	s.mu.Lock()
	var roots []string
	for _, root := range s.settings.WorkspaceRoots {
		if !removed[root] {
			roots = append(roots, root)
		}
	}
	for _, folder := range params.Event.Added {
		if p, ok := uriToPath(folder.URI); ok {
			roots = append(roots, p)
		}
	}
	s.settings.WorkspaceRoots = roots
	s.mu.Unlock()

	if s.watch {
		s.restartWatcher()
	}
	s.triggerReload("workspace folders changed")
	return nil
}

func (s *Server) executeCommand(_ *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != ReloadCommand {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}

	snap, err := s.Reload(context.Background())
	if err != nil {
		return nil, err
	}
	return map[string]int{"headers": len(snap.Entries)}, nil
}

func (s *Server) restartWatcher() {
	settings := s.currentSettings()
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.stopWatching != nil {
		s.stopWatching()
	}
	s.stopWatching = cancel
	s.mu.Unlock()

	w := fswatch.New(settings.WorkspaceRoots, fswatch.NewClassifier(settings.HeaderExtensions),
		fswatch.WithLogger(s.logger))
	go func() {
		if err := w.Run(ctx, s.reloadAndLog); err != nil {
			s.logger.Warn("file watcher stopped", "error", err)
		}
	}()
}
