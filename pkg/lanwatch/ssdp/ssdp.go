// Package ssdp names UPnP devices found with an SSDP M-SEARCH.
//
// Smart TVs, media players, printers, NAS boxes and routers usually answer
// SSDP even when they have no reverse DNS entry, so a single search can fill
// in names the PTR lookups left empty.
//
// This implementation uses github.com/koron/go-ssdp for robust SSDP handling.
package ssdp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gossdp "github.com/koron/go-ssdp"
)

// DebugLogger is the callback function for debug logging.
// Set this to enable debug output for SSDP operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

const (
	// DefaultTimeout is the default timeout for SSDP discovery
	DefaultTimeout = 3 * time.Second
)

// Common SSDP search targets
const (
	// All searches for all devices and services
	All = gossdp.All // "ssdp:all"

	// RootDevice searches for UPnP root devices only
	RootDevice = gossdp.RootDevice // "upnp:rootdevice"
)

// Device is one SSDP responder.
type Device struct {
	IP           string
	Location     string // URL to device description XML
	Server       string // Server header (OS/device info)
	USN          string // Unique Service Name
	FriendlyName string // from the device description, when fetched
	Manufacturer string
	ModelName    string
}

// Name returns the most descriptive label known for the device.
func (d *Device) Name() string {
	if d.FriendlyName != "" {
		return d.FriendlyName
	}
	return d.Server
}

// Discovery performs SSDP-based device discovery using koron/go-ssdp.
type Discovery struct {
	Timeout    time.Duration
	Interfaces []net.Interface // Specific interfaces to use (nil = all)
	// FetchDescriptions downloads each device description to read its
	// friendlyName. Without it the Server header is used as the name.
	FetchDescriptions bool

	search func(searchType string, waitSec int) ([]gossdp.Service, error)
}

// NewDiscovery creates a new SSDP discovery helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout, FetchDescriptions: true}
}

// gossdp keeps its interface list in a package variable.
var interfacesMu sync.Mutex

// Discover performs one M-SEARCH for searchTarget ("" means All) and
// returns one Device per responding IP.
func (s *Discovery) Discover(ctx context.Context, searchTarget string) ([]*Device, error) {
	if searchTarget == "" {
		searchTarget = All
	}
	debugLog("SSDP Discover target=%s timeout=%v", searchTarget, s.Timeout)

	// Calculate wait time in seconds (minimum 1)
	waitSec := int(s.Timeout.Seconds())
	if waitSec < 1 {
		waitSec = 1
	}

	search := s.search
	if search == nil {
		search = func(st string, wait int) ([]gossdp.Service, error) {
			interfacesMu.Lock()
			defer interfacesMu.Unlock()
			if len(s.Interfaces) > 0 {
				gossdp.Interfaces = s.Interfaces
				defer func() { gossdp.Interfaces = nil }()
			}
			return gossdp.Search(st, wait, "")
		}
	}

	type searchResult struct {
		services []gossdp.Service
		err      error
	}
	resultCh := make(chan searchResult, 1)
	go func() {
		services, err := search(searchTarget, waitSec)
		resultCh <- searchResult{services, err}
	}()

	var services []gossdp.Service
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, fmt.Errorf("SSDP search: %w", r.err)
		}
		services = r.services
	}

	devices := convertServices(services)
	if s.FetchDescriptions {
		s.enrich(ctx, devices)
	}
	debugLog("SSDP Discover found %d devices", len(devices))
	return devices, nil
}

// Names runs one search and maps each responding IP to its device name.
func (s *Discovery) Names(ctx context.Context) (map[string]string, error) {
	devices, err := s.Discover(ctx, All)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(devices))
	for _, d := range devices {
		if n := d.Name(); n != "" {
			names[d.IP] = n
		}
	}
	return names, nil
}

// GetDeviceInfo fetches and parses the device description XML from the Location URL.
func (s *Discovery) GetDeviceInfo(ctx context.Context, locationURL string) (*Device, error) {
	if locationURL == "" {
		return nil, fmt.Errorf("no location URL")
	}

	client := &http.Client{Timeout: s.Timeout}
	req, err := http.NewRequestWithContext(ctx, "GET", locationURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device description: %s", resp.Status)
	}

	result := &Device{Location: locationURL}

	// Simple XML parsing: look for key elements
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()

		if name := extractXMLValue(line, "friendlyName"); name != "" && result.FriendlyName == "" {
			result.FriendlyName = name
		}
		if mfr := extractXMLValue(line, "manufacturer"); mfr != "" && result.Manufacturer == "" {
			result.Manufacturer = mfr
		}
		if model := extractXMLValue(line, "modelName"); model != "" && result.ModelName == "" {
			result.ModelName = model
		}
	}

	return result, nil
}

// enrich fetches device info for each device's Location URL.
func (s *Discovery) enrich(ctx context.Context, devices []*Device) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, 5) // Limit concurrent requests

	for _, d := range devices {
		if d.Location == "" {
			continue
		}

		wg.Add(1)
		go func(dev *Device) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			info, err := s.GetDeviceInfo(ctx, dev.Location)
			if err != nil {
				debugLog("%s: description: %v", dev.IP, err)
				return
			}
			dev.FriendlyName = info.FriendlyName
			dev.Manufacturer = info.Manufacturer
			dev.ModelName = info.ModelName
		}(d)
	}

	wg.Wait()
}

// convertServices keeps the first service seen for every IP.
func convertServices(services []gossdp.Service) []*Device {
	seen := make(map[string]bool, len(services))
	devices := make([]*Device, 0, len(services))

	for _, svc := range services {
		ip := extractIPFromURL(svc.Location)
		if ip == "" || seen[ip] {
			continue
		}
		seen[ip] = true
		devices = append(devices, &Device{
			IP:       ip,
			Location: svc.Location,
			Server:   svc.Server,
			USN:      svc.USN,
		})
	}

	return devices
}

// extractIPFromURL extracts the IP address from a URL like "http://192.168.1.1:8080/desc.xml"
func extractIPFromURL(url string) string {
	// Remove scheme
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	// Get host:port part
	if idx := strings.Index(url, "/"); idx > 0 {
		url = url[:idx]
	}

	// Remove port
	host, _, err := net.SplitHostPort(url)
	if err != nil {
		// No port, try as-is
		host = url
	}

	// Validate it's an IP
	if ip := net.ParseIP(host); ip != nil {
		return host
	}

	return ""
}

// extractXMLValue extracts the value from a simple XML tag like <tagName>value</tagName>
func extractXMLValue(line, tagName string) string {
	openTag := "<" + tagName + ">"
	closeTag := "</" + tagName + ">"

	start := strings.Index(line, openTag)
	if start < 0 {
		return ""
	}
	start += len(openTag)

	end := strings.Index(line, closeTag)
	if end < 0 || end <= start {
		return ""
	}

	return strings.TrimSpace(line[start:end])
}
