package system

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
)

// LoadAverage contains the 1, 5 and 15 minute load averages
type LoadAverage struct {
	One     float32 `json:"one"`
	Five    float32 `json:"five"`
	Fifteen float32 `json:"fifteen"`
}

// NetworkResult wraps the interface list returned by /system/networks
type NetworkResult struct {
	Networks []NetworkDetails `json:"networks"`
}

// NetworkDetails describes a single network interface and its addresses
type NetworkDetails struct {
	Name  string        `json:"name"`
	Addrs []NetworkAddr `json:"addrs"`
}

// NetworkAddr is a single address bound to an interface
type NetworkAddr struct {
	Addr IPAddr `json:"addr"`
}

// IPAddrKind discriminates the variants of IPAddr
type IPAddrKind uint8

const (
	IPAddrEmpty IPAddrKind = iota
	IPAddrUnsupported
	IPAddrV4
	IPAddrV6
)

func (k IPAddrKind) String() string {
	switch k {
	case IPAddrEmpty:
		return "Empty"
	case IPAddrUnsupported:
		return "Unsupported"
	case IPAddrV4:
		return "V4"
	case IPAddrV6:
		return "V6"
	}
	return fmt.Sprintf("IPAddrKind(%d)", uint8(k))
}

// IPAddr is exactly one of Empty, Unsupported, V4 or V6.
//
// The JSON form is "Empty", "Unsupported", {"V4":[4 octets]} or
// {"V6":[16 octets]}.
type IPAddr struct {
	Kind IPAddrKind
	Addr netip.Addr
}

// EmptyAddr returns the Empty variant
func EmptyAddr() IPAddr { return IPAddr{Kind: IPAddrEmpty} }

// UnsupportedAddr returns the Unsupported variant
func UnsupportedAddr() IPAddr { return IPAddr{Kind: IPAddrUnsupported} }

// V4Addr returns the V4 variant carrying the given octets
func V4Addr(octets [4]byte) IPAddr {
	return IPAddr{Kind: IPAddrV4, Addr: netip.AddrFrom4(octets)}
}

// V6Addr returns the V6 variant carrying the given octets
func V6Addr(octets [16]byte) IPAddr {
	return IPAddr{Kind: IPAddrV6, Addr: netip.AddrFrom16(octets)}
}

// ParseIPAddr maps a provider address such as "192.168.1.1/24" or "fe80::1"
// into an IPAddr variant.
func ParseIPAddr(s string) IPAddr {
	if s == "" {
		return EmptyAddr()
	}

	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return UnsupportedAddr()
	}

	if addr.Is4() {
		return V4Addr(addr.As4())
	}
	if addr.Is4In6() {
		return V4Addr(addr.Unmap().As4())
	}
	// Zones are dropped so the variant carries only the raw octets.
	return V6Addr(addr.WithZone("").As16())
}

func (a IPAddr) String() string {
	switch a.Kind {
	case IPAddrV4, IPAddrV6:
		return a.Addr.String()
	}
	return a.Kind.String()
}

// MarshalJSON implements json.Marshaler
func (a IPAddr) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case IPAddrEmpty, IPAddrUnsupported:
		return json.Marshal(a.Kind.String())
	case IPAddrV4:
		return json.Marshal(map[string][4]byte{"V4": a.Addr.As4()})
	case IPAddrV6:
		return json.Marshal(map[string][16]byte{"V6": a.Addr.As16()})
	}
	return nil, fmt.Errorf("unknown address kind %d", a.Kind)
}

// UnmarshalJSON implements json.Unmarshaler
func (a *IPAddr) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "Empty":
			*a = EmptyAddr()
		case "Unsupported":
			*a = UnsupportedAddr()
		default:
			return fmt.Errorf("unknown address variant %q", tag)
		}
		return nil
	}

	var tagged struct {
		V4 *[4]byte  `json:"V4"`
		V6 *[16]byte `json:"V6"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	switch {
	case tagged.V4 != nil && tagged.V6 == nil:
		*a = V4Addr(*tagged.V4)
	case tagged.V6 != nil && tagged.V4 == nil:
		*a = V6Addr(*tagged.V6)
	default:
		return fmt.Errorf("address must carry exactly one of V4 or V6")
	}
	return nil
}

// NetworkStats contains cumulative counters for one interface
type NetworkStats struct {
	Name      string `json:"name"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
	RxErrors  uint64 `json:"rx_errors"`
	TxErrors  uint64 `json:"tx_errors"`
}

// Memory contains physical memory totals in bytes
type Memory struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
	Used  uint64 `json:"used"`
}

// Filesystem describes one mounted filesystem
type Filesystem struct {
	MountedFrom string `json:"fs_mounted_from"`
	Type        string `json:"fs_type"`
	MountedOn   string `json:"fs_mounted_on"`
	Free        uint64 `json:"free"`
	Avail       uint64 `json:"avail"`
	Total       uint64 `json:"total"`
	NameMax     uint64 `json:"name_max"`
	Files       uint64 `json:"files"`
	FilesTotal  uint64 `json:"files_total"`
	FilesAvail  uint64 `json:"files_avail"`
}

// CPULoad holds CPU time fractions averaged over a sampling window
type CPULoad struct {
	User      float32 `json:"user"`
	Nice      float32 `json:"nice"`
	System    float32 `json:"system"`
	Interrupt float32 `json:"interrupt"`
	Idle      float32 `json:"idle"`
}

// HealthCheckResponse is served by /system/health
type HealthCheckResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    *string `json:"uptime,omitempty"`
	Hostname  *string `json:"hostname,omitempty"`
}

// SystemAllResponse is served by /system/all. Optional fields are nil when
// their query failed and are left out of the JSON.
type SystemAllResponse struct {
	Timestamp   string          `json:"timestamp"`
	Hostname    string          `json:"hostname"`
	Uptime      string          `json:"uptime"`
	CPUTemp     *float32        `json:"cpu_temp,omitempty"`
	LoadAverage *LoadAverage    `json:"load_average,omitempty"`
	Networks    *NetworkResult  `json:"networks,omitempty"`
	NetStats    *[]NetworkStats `json:"net_stats,omitempty"`
}
