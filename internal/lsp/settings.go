package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warnw("invalid configuration", "error", err)
		return nil
	}
	if len(params.Settings) == 0 {
		return nil
	}
	var settings lspSettings
	if err := json.Unmarshal(params.Settings, &settings); err != nil {
		s.log.Warnw("invalid configuration", "error", err)
		return nil
	}
	if !s.applySettings(settings.Sclint) {
		return nil
	}
	// новые настройки меняют вид диагностик всех открытых документов
	for _, uri := range s.openURIs() {
		s.scheduleLint(uri, s.debounce)
	}
	return nil
}

// applySettings reports whether anything changed.
func (s *Server) applySettings(settings sclintSettings) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	if settings.WithNotes != nil && *settings.WithNotes != s.withNotes {
		s.withNotes = *settings.WithNotes
		changed = true
	}
	if settings.MaxDiagnostics != nil && *settings.MaxDiagnostics > 0 && *settings.MaxDiagnostics != s.maxDiagnostics {
		s.maxDiagnostics = *settings.MaxDiagnostics
		changed = true
	}
	return changed
}
