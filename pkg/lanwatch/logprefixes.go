// Package lanwatch: Log prefix constants for consistent log tagging.
// These constants are exported so consumers can use them for consistent logging,
// but they are not required - consumers can use their own prefixes via SetDebugLogger.
package lanwatch

// Log prefix constants for library components.
// Format follows [Component] or [Component:Subcomponent] pattern.
const (
	// Main prefix
	LogPrefixLANWatch = "[LANWatch]"

	LogPrefixEngine    = "[LANWatch:Engine]"
	LogPrefixInterface = "[LANWatch:Iface]"
	LogPrefixCommand   = "[LANWatch:Exec]"
	LogPrefixPing      = "[LANWatch:Ping]"
	LogPrefixARP       = "[LANWatch:ARP]"
	LogPrefixDNS       = "[LANWatch:DNS]"
	LogPrefixSSDP      = "[LANWatch:SSDP]"
	LogPrefixOUI       = "[LANWatch:OUI]"

	// Debug prefix - use as "[DEBUG][LANWatch:*]" format
	LogPrefixDebug = "[DEBUG]"
)

// ComponentToPrefix returns the log prefix for a given component.
func ComponentToPrefix(component Component) string {
	switch component {
	case ComponentEngine:
		return LogPrefixEngine
	case ComponentInterface:
		return LogPrefixInterface
	case ComponentCommand:
		return LogPrefixCommand
	case ComponentPing:
		return LogPrefixPing
	case ComponentARP:
		return LogPrefixARP
	case ComponentDNS:
		return LogPrefixDNS
	case ComponentSSDP:
		return LogPrefixSSDP
	case ComponentVendor:
		return LogPrefixOUI
	default:
		return LogPrefixLANWatch
	}
}
