package lsp

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/includesense/headerindex"
)

// settingsSection is the key client settings are nested under.
const settingsSection = "includesense"

type clientSettings struct {
	SelectConfigIndex    *int     `json:"selectConfigIndex"`
	OnlyWorkspaceHeaders *bool    `json:"onlyWorkspaceHeaders"`
	HeaderExtensions     []string `json:"headerExtensions"`
}

// decodeClientSettings reads settings sent by the client, either at the top
// level or nested under the includesense section.
func decodeClientSettings(raw any) (clientSettings, error) {
	var settings clientSettings
	if raw == nil {
		return settings, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return settings, err
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err == nil {
		if nested, ok := sections[settingsSection]; ok {
			data = nested
		}
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return clientSettings{}, err
	}
	return settings, nil
}

// apply overlays the values the client sent onto base.
func (c clientSettings) apply(base headerindex.Settings) headerindex.Settings {
	if c.SelectConfigIndex != nil {
		v := *c.SelectConfigIndex
		base.SelectConfigIndex = &v
	}
	if c.OnlyWorkspaceHeaders != nil {
		base.OnlyWorkspaceHeaders = *c.OnlyWorkspaceHeaders
	}
	if c.HeaderExtensions != nil {
		base.HeaderExtensions = c.HeaderExtensions
	}
	return base
}
