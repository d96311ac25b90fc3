package gamecontrol

import "strings"

// ChannelLookup returns the channel currently assigned to an action.
type ChannelLookup func(action string) InputChannel

// formatMappings renders "action:CHANNEL" pairs, comma separated, for every
// action whose channel has the expected type.
func formatMappings(actions []string, expected ChannelType, lookup ChannelLookup) string {
	var b strings.Builder
	for _, action := range actions {
		channel := lookup(action)
		if channel.Type != expected {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(action)
		b.WriteByte(':')
		b.WriteString(channel.LocalName())
	}
	return b.String()
}

// parseMappings applies a string produced by formatMappings. Every action in
// actions is updated: missing, malformed or wrongly typed entries map to
// NONE.
func parseMappings(mappings string, actions []string, expected ChannelType, update func(action string, channel InputChannel)) {
	pairs := map[string]string{}
	for _, entry := range strings.Split(mappings, ",") {
		pos := strings.IndexByte(entry, ':')
		if pos > 0 {
			pairs[entry[:pos]] = entry[pos+1:]
		}
	}

	for _, action := range actions {
		if name, ok := pairs[action]; ok {
			channel := ChannelByName(name)
			if channel.IsNone() || channel.Type == expected {
				update(action, channel)
				continue
			}
		}
		update(action, InputChannel{})
	}
}

// AnalogMappings serializes the analog action mappings.
func (m *Manager) AnalogMappings() string {
	return StringifyAnalogMappings(func(action string) InputChannel {
		return m.translator.ChannelByAction(action + "+")
	})
}

// BinaryMappings serializes the binary action mappings.
func (m *Manager) BinaryMappings() string {
	return StringifyBinaryMappings(m.translator.ChannelByAction)
}

// FlycamMappings serializes the flycam channel table.
func (m *Manager) FlycamMappings() string {
	return StringifyFlycamMappings(m.FlycamChannelByAction)
}

// SetAnalogMappings replaces the analog action mappings.
func (m *Manager) SetAnalogMappings(mappings string) {
	parseMappings(mappings, AnalogActions, ChannelAxis, m.translator.UpdateMap)
}

// SetBinaryMappings replaces the binary action mappings.
func (m *Manager) SetBinaryMappings(mappings string) {
	parseMappings(mappings, BinaryActions, ChannelButton, m.translator.UpdateMap)
}

// SetFlycamMappings replaces the flycam channel table.
func (m *Manager) SetFlycamMappings(mappings string) {
	parseMappings(mappings, FlycamActions, ChannelAxis, m.updateFlycamMap)
}

// StringifyAnalogMappings renders analog mappings from an arbitrary lookup,
// keyed by base action name.
func StringifyAnalogMappings(lookup ChannelLookup) string {
	return formatMappings(AnalogActions, ChannelAxis, lookup)
}

// StringifyBinaryMappings renders binary mappings from an arbitrary lookup.
func StringifyBinaryMappings(lookup ChannelLookup) string {
	return formatMappings(BinaryActions, ChannelButton, lookup)
}

// StringifyFlycamMappings renders flycam mappings from an arbitrary lookup.
func StringifyFlycamMappings(lookup ChannelLookup) string {
	return formatMappings(FlycamActions, ChannelAxis, lookup)
}
