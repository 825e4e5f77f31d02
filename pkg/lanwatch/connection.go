package lanwatch

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
)

// Connection returns the current connection, or nil when disconnected.
func (e *Engine) Connection() *Connection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.device.Connection == nil {
		return nil
	}
	c := *e.device.Connection
	return &c
}

// Device returns a snapshot of this machine's attachment.
func (e *Engine) Device() Device {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d := e.device
	if d.Connection != nil {
		c := *d.Connection
		d.Connection = &c
	}
	return d
}

// OnConnect registers fn to run when a connection appears.
func (e *Engine) OnConnect(fn func(Connection)) {
	e.mu.Lock()
	e.onConnect = append(e.onConnect, fn)
	e.mu.Unlock()
}

// OnDisconnect registers fn to run when the connection is lost.
func (e *Engine) OnDisconnect(fn func()) {
	e.mu.Lock()
	e.onDisconnect = append(e.onDisconnect, fn)
	e.mu.Unlock()
}

// SelectConnection picks the first interface address accepted by filters,
// in the order the platform lists interfaces, and makes it the engine's
// connection. OnConnect callbacks run when a connection appears,
// OnDisconnect callbacks run before a lost connection is cleared; a change
// between two connections is silent. Callbacks run synchronously and must
// not call SelectConnection.
func (e *Engine) SelectConnection(filters InterfaceFilters) (*Connection, error) {
	ifs, err := e.opts.Interfaces.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("select connection: %w", err)
	}
	next := matchConnection(ifs, filters)

	e.selectMu.Lock()
	defer e.selectMu.Unlock()

	e.mu.RLock()
	prev := e.device.Connection
	onConnect := append(([]func(Connection))(nil), e.onConnect...)
	onDisconnect := append(([]func())(nil), e.onDisconnect...)
	e.mu.RUnlock()

	switch {
	case next == nil && prev != nil:
		e.log.Info("connection lost", zap.String("interface", prev.Name), zap.String("address", prev.Address))
		for _, fn := range onDisconnect {
			fn()
		}
		e.setConnection(nil)
		return nil, nil

	case next != nil && prev == nil:
		e.setConnection(next)
		e.log.Info("connection established",
			zap.String("interface", next.Name),
			zap.String("cidr", next.CIDR),
			zap.String("mac", next.MAC))
		for _, fn := range onConnect {
			fn(*next)
		}

	case next != nil:
		if *next != *prev {
			e.log.Debug("connection changed", zap.String("interface", next.Name), zap.String("cidr", next.CIDR))
		}
		e.setConnection(next)

	default:
		e.setConnection(nil)
	}

	if next == nil {
		return nil, nil
	}
	c := *next
	return &c, nil
}

func (e *Engine) setConnection(c *Connection) {
	vendor := ""
	if c != nil {
		vendor, _ = e.opts.Vendors.Vendor(c.MAC)
	}
	e.mu.Lock()
	e.device.Connection = c
	e.device.VendorType = vendor
	e.mu.Unlock()
}

// matchConnection returns the first address passing filters.
func matchConnection(ifs []iface.Interface, filters InterfaceFilters) *Connection {
	for _, ifc := range ifs {
		if !filters.acceptName(ifc.Name) {
			continue
		}
		for _, a := range ifc.Addrs {
			family := Family(a.Family)
			if !filters.acceptInternal(a.Internal) || !filters.acceptFamily(family) {
				continue
			}
			return &Connection{
				Name:     ifc.Name,
				Internal: a.Internal,
				Family:   family,
				Address:  a.Address,
				Netmask:  a.Netmask,
				MAC:      a.MAC,
				CIDR:     a.CIDR,
			}
		}
	}
	return nil
}

func (e *Engine) watch(interval time.Duration) {
	defer close(e.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			if _, err := e.SelectConnection(e.opts.Filters); err != nil {
				e.log.Warn("connection check failed", zap.Error(err))
			}
		}
	}
}
