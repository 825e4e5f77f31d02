package lanwatch

import (
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/arp"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/command"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/dns"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/oui"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/ping"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/ssdp"
)

// init routes every subpackage's debug hook through debugLog.
func init() {
	iface.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentInterface, format, args...)
	}
	command.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentCommand, format, args...)
	}
	ping.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentPing, format, args...)
	}
	arp.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentARP, format, args...)
	}
	dns.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentDNS, format, args...)
	}
	ssdp.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentSSDP, format, args...)
	}
	oui.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentVendor, format, args...)
	}
}

// ListInterfaces returns the system's interfaces in OS order.
func ListInterfaces() ([]iface.Interface, error) {
	return iface.System{}.Interfaces()
}
