package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
)

// render writes v as JSON or YAML, or calls table for the table format.
func render(v interface{}, table func() error) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "table", "":
		return table()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	}
}

func hostsTable(hosts []lanwatch.Host) pterm.TableData {
	data := pterm.TableData{{"IP Address", "MAC Address", "Vendor", "Name", ""}}
	for _, h := range hosts {
		self := ""
		if h.IsSelf {
			self = "self"
		}
		data = append(data, []string{h.IP, h.MAC, h.VendorType, h.Name, self})
	}
	return data
}

func renderHosts(hosts []lanwatch.Host) error {
	return render(hosts, func() error {
		if len(hosts) == 0 {
			pterm.Info.Println("No hosts found on that network.")
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(hostsTable(hosts)).Render()
	})
}

func renderResult(res *lanwatch.Result) error {
	return render(res, func() error {
		if len(res.Hosts) == 0 {
			pterm.Info.Println("No hosts found.")
		} else {
			data := hostsTable(res.Hosts)
			data[0] = append(data[0], "Matched")
			for i, h := range res.Hosts {
				data[i+1] = append(data[i+1], strings.Join(h.Matched, ", "))
			}
			if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
				return err
			}
		}
		renderMissing(res.Missing)
		return nil
	})
}

func renderPing(res *lanwatch.PingResult) error {
	return render(res, func() error {
		if len(res.Hosts) == 0 {
			pterm.Info.Println("No host answered.")
		} else {
			data := pterm.TableData{{"Responsive"}}
			for _, ip := range res.Hosts {
				data = append(data, []string{ip})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
		}
		renderMissing(res.Missing)
		return nil
	})
}

func renderMissing(missing []string) {
	if len(missing) == 0 {
		return
	}
	if len(missing) > 16 {
		pterm.Warning.Printfln("%d addresses missing", len(missing))
		return
	}
	pterm.Warning.Printfln("Missing: %s", strings.Join(missing, ", "))
}

func renderInterfaces(ifs []iface.Interface) error {
	return render(ifs, func() error {
		data := pterm.TableData{{"Interface", "Address", "Family", "Netmask", "MAC", "Internal"}}
		for _, ifc := range ifs {
			for _, a := range ifc.Addrs {
				internal := ""
				if a.Internal {
					internal = "yes"
				}
				data = append(data, []string{ifc.Name, a.CIDR, a.Family, a.Netmask, a.MAC, internal})
			}
		}
		return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
	})
}

func renderDevice(d lanwatch.Device) error {
	return render(d, func() error {
		if d.Connection == nil {
			pterm.Warning.Println("No active connection matches the interface filters.")
			return nil
		}
		c := d.Connection
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"OS", d.OS},
			{"Interface", c.Name},
			{"Address", c.CIDR},
			{"Netmask", c.Netmask},
			{"MAC", c.MAC},
			{"Vendor", d.VendorType},
		}).Render()
	})
}
